package schema

import (
	"errors"
	"fmt"
)

// ErrIncompatibleSchema is wrapped by every compatibility failure
// CompatibleWith reports.
var ErrIncompatibleSchema = errors.New("schema: incompatible with prior version")

// CompatibleWith checks that s may be registered as a new version following
// prior: any storage id prior assigned to an object type or field must mean
// the same thing in s (same name, same structural kind, same scalar
// encoding) if s reuses it at all. A storage id prior used that s drops
// entirely is fine -- objects already written under it are upgraded by the
// translator's on-read path, not rewritten in place -- but a storage id
// s repurposes for a different name or shape would make every row already
// on disk unreadable.
func (s *Schema) CompatibleWith(prior *Schema) error {
	if !s.locked || !prior.locked {
		return fmt.Errorf("%w: CompatibleWith requires both schemas to be locked", ErrIncompatibleSchema)
	}

	priorTypes := make(map[uint64]*ObjectType, len(prior.objectTypes))
	for _, ot := range prior.objectTypes {
		priorTypes[ot.StorageID] = ot
	}

	for _, ot := range s.objectTypes {
		priorOT, existed := priorTypes[ot.StorageID]
		if !existed {
			continue
		}
		if priorOT.Name != ot.Name {
			return fmt.Errorf("%w: storage id %d renamed from object type %q to %q",
				ErrIncompatibleSchema, ot.StorageID, priorOT.Name, ot.Name)
		}
		if err := compatibleFields(ot, priorOT); err != nil {
			return err
		}
	}
	return nil
}

func compatibleFields(ot, priorOT *ObjectType) error {
	priorFields := make(map[uint64]*Field, len(priorOT.Fields))
	for _, f := range priorOT.Fields {
		priorFields[f.StorageID] = f
	}
	for _, f := range ot.Fields {
		priorField, existed := priorFields[f.StorageID]
		if !existed {
			continue
		}
		if priorField.Name != f.Name {
			return fmt.Errorf("%w: object type %q storage id %d renamed from field %q to %q",
				ErrIncompatibleSchema, ot.Name, f.StorageID, priorField.Name, f.Name)
		}
		if priorField.Kind != f.Kind {
			return fmt.Errorf("%w: object type %q field %q changed structural kind from %s to %s",
				ErrIncompatibleSchema, ot.Name, f.Name, priorField.Kind, f.Kind)
		}
		priorSlots := scalarEncodingsOf(priorField)
		newSlots := scalarEncodingsOf(f)
		for i, slot := range priorSlots {
			if i >= len(newSlots) {
				break
			}
			if slot.encoding != newSlots[i].encoding {
				return fmt.Errorf("%w: object type %q field %q changed %s encoding from %s to %s",
					ErrIncompatibleSchema, ot.Name, f.Name, slot.label, slot.encoding, newSlots[i].encoding)
			}
		}
	}
	return nil
}

// encodingSlot names one scalar-typed position within a field: a simple
// field or collection element has one, a map field has two, since its key
// and value are independently typed and independently able to be a
// reference.
type encodingSlot struct {
	label    string
	encoding Kind
}

func scalarEncodingsOf(f *Field) []encodingSlot {
	switch f.Kind {
	case FieldSimple:
		return []encodingSlot{{"value", f.Simple.Encoding}}
	case FieldList:
		return []encodingSlot{{"element", f.List.Element.Encoding}}
	case FieldSet:
		return []encodingSlot{{"element", f.Set.Element.Encoding}}
	case FieldMap:
		return []encodingSlot{{"key", f.Map.Key.Encoding}, {"value", f.Map.Value.Encoding}}
	default:
		return nil
	}
}
