package txn

import (
	"fmt"

	"objectdb/codec"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/translator"
)

// CreateObject brings a new object of the named type into existence with
// the given initial field state. It returns objdberrs.ErrObjectAlreadyExists
// if id already has a primary key in this transaction's view.
func (t *Transaction) CreateObject(typeName string, id codec.ObjID, fields map[string]translator.FieldState) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	ot, err := t.findObjectType(typeName)
	if err != nil {
		return err
	}
	if _, exists, err := t.readObject(ot, id); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: %s", objdberrs.ErrObjectAlreadyExists, id)
	}

	initial := translator.ObjectState{ID: id, SchemaVersion: t.version, Fields: fields}
	if err := t.validateReferenceTargets(ot, initial.Fields); err != nil {
		return err
	}

	writes, err := t.tr.CreateObject(ot, id, initial)
	if err != nil {
		return err
	}
	t.queueWrites(writes)
	t.notify(Change{Kind: ChangeCreated, ObjectType: typeName, ID: id})
	return nil
}

// SetFields applies a batch of field mutations to an existing object.
func (t *Transaction) SetFields(typeName string, id codec.ObjID, mutations []translator.FieldMutation) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	ot, err := t.findObjectType(typeName)
	if err != nil {
		return err
	}
	before, exists, err := t.readObject(ot, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", objdberrs.ErrDeletedObject, id)
	}

	after, writes, err := t.tr.ApplyFieldMutations(ot, id, before, mutations)
	if err != nil {
		return err
	}

	mutatedFields := make(map[string]translator.FieldState, len(mutations))
	for _, m := range mutations {
		mutatedFields[m.FieldName] = after.Fields[m.FieldName]
	}
	if err := t.validateReferenceTargets(ot, mutatedFields); err != nil {
		return err
	}

	t.queueWrites(writes)
	t.notify(Change{Kind: ChangeUpdated, ObjectType: typeName, ID: id})
	return nil
}

// validateReferenceTargets checks every reference-valued field being set
// against its AllowedTypes restriction and dangling-reference policy.
func (t *Transaction) validateReferenceTargets(ot *schema.ObjectType, newFields map[string]translator.FieldState) error {
	for name, fs := range newFields {
		f := ot.FindField(name)
		if f == nil || !f.IsReference() {
			continue
		}
		for _, entry := range referenceEntries(f, fs) {
			if entry.Value.Null {
				continue
			}
			if err := t.checkReferenceTarget(f, entry.Scalar, entry.Value.ObjID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Transaction) checkReferenceTarget(f *schema.Field, scalar schema.Scalar, target codec.ObjID) error {
	ref := scalar.Reference
	targetOT := t.schema.ObjectTypeByStorageID(uint64(target.TypeID()))
	exists := false
	if targetOT != nil {
		if len(ref.AllowedTypes) > 0 && !containsName(ref.AllowedTypes, targetOT.Name) {
			return fmt.Errorf("%w: field %q: object type %q is not in the allowed target types", objdberrs.ErrInvalidReference, f.Name, targetOT.Name)
		}
		_, exists, _ = t.readObject(targetOT, target)
	}
	if !exists && !ref.AllowDangling {
		return fmt.Errorf("%w: field %q: target %s does not exist", objdberrs.ErrInvalidReference, f.Name, target)
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// referenceEntry pairs a single reference value with the scalar describing
// how it is encoded, since a map field's key and value may each
// independently be a reference with its own ReferenceOptions.
type referenceEntry struct {
	Value  translator.Value
	Scalar schema.Scalar
}

// referenceEntries extracts every reference value a field state currently
// holds, one entry per value.
func referenceEntries(f *schema.Field, fs translator.FieldState) []referenceEntry {
	switch f.Kind {
	case schema.FieldSimple:
		if f.Simple.Encoding != schema.KindReference || fs.Simple == nil {
			return nil
		}
		return []referenceEntry{{Value: *fs.Simple, Scalar: f.Simple.Scalar}}
	case schema.FieldList:
		if f.List.Element.Encoding != schema.KindReference {
			return nil
		}
		out := make([]referenceEntry, len(fs.List))
		for i, v := range fs.List {
			out[i] = referenceEntry{Value: v, Scalar: f.List.Element}
		}
		return out
	case schema.FieldSet:
		if f.Set.Element.Encoding != schema.KindReference {
			return nil
		}
		out := make([]referenceEntry, len(fs.Set))
		for i, v := range fs.Set {
			out[i] = referenceEntry{Value: v, Scalar: f.Set.Element}
		}
		return out
	case schema.FieldMap:
		var out []referenceEntry
		if f.Map.Key.Encoding == schema.KindReference {
			for _, e := range fs.Map {
				out = append(out, referenceEntry{Value: e.Key, Scalar: f.Map.Key})
			}
		}
		if f.Map.Value.Encoding == schema.KindReference {
			for _, e := range fs.Map {
				out = append(out, referenceEntry{Value: e.Value, Scalar: f.Map.Value})
			}
		}
		return out
	default:
		return nil
	}
}
