package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is wrapped by every validation failure LockDown reports.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// validate runs the full validation cascade, structural checks first so
// that later, more expensive semantic checks (which assume well-formed
// fields and indexes) never run against malformed input.
func (s *Schema) validate() error {
	if err := s.validateObjectTypes(); err != nil {
		return err
	}
	if err := s.validateFields(); err != nil {
		return err
	}
	if err := s.validateCompositeIndexes(); err != nil {
		return err
	}
	if err := s.validateReferences(); err != nil {
		return err
	}
	if err := s.validateStorageIDUniqueness(); err != nil {
		return err
	}
	return nil
}

func (s *Schema) validateObjectTypes() error {
	if len(s.objectTypes) == 0 {
		return fmt.Errorf("%w: schema has no object types", ErrInvalidSchema)
	}
	for _, ot := range s.objectTypes {
		if ot.Name == "" {
			return fmt.Errorf("%w: object type with empty name", ErrInvalidSchema)
		}
		if ot.StorageID == 0 {
			return fmt.Errorf("%w: object type %q: storage id 0 is reserved for meta keys", ErrInvalidSchema, ot.Name)
		}
		if ot.StorageID > maxObjectTypeStorageID {
			return fmt.Errorf("%w: object type %q: storage id %d exceeds the 16-bit object-type id space", ErrInvalidSchema, ot.Name, ot.StorageID)
		}
	}
	return nil
}

// maxObjectTypeStorageID is the largest storage id an object type may take:
// ObjID packs the type into a fixed 16-bit field (codec.ObjID), so object
// types specifically are capped at 16 bits even though storage ids in
// general are arbitrary-width varints.
const maxObjectTypeStorageID = 1<<16 - 1

func (s *Schema) validateFields() error {
	for _, ot := range s.objectTypes {
		seenName := make(map[string]bool, len(ot.Fields))
		for _, f := range ot.Fields {
			if f.Name == "" {
				return fmt.Errorf("%w: object type %q: field with empty name", ErrInvalidSchema, ot.Name)
			}
			if seenName[f.Name] {
				return fmt.Errorf("%w: object type %q: duplicate field name %q", ErrInvalidSchema, ot.Name, f.Name)
			}
			seenName[f.Name] = true
			if f.StorageID == 0 {
				return fmt.Errorf("%w: object type %q field %q: storage id 0 is reserved", ErrInvalidSchema, ot.Name, f.Name)
			}
			if err := validateFieldShape(ot, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFieldShape(ot *ObjectType, f *Field) error {
	payloads := 0
	if f.Simple != nil {
		payloads++
	}
	if f.Counter != nil {
		payloads++
	}
	if f.List != nil {
		payloads++
	}
	if f.Set != nil {
		payloads++
	}
	if f.Map != nil {
		payloads++
	}
	if payloads != 1 {
		return fmt.Errorf("%w: object type %q field %q: exactly one payload must be set for kind %s, found %d",
			ErrInvalidSchema, ot.Name, f.Name, f.Kind, payloads)
	}

	switch f.Kind {
	case FieldSimple:
		if f.Simple == nil {
			return mismatchedPayloadErr(ot, f)
		}
		return validateScalar(ot, f.Name, f.Simple.Scalar)
	case FieldCounter:
		if f.Counter == nil {
			return mismatchedPayloadErr(ot, f)
		}
	case FieldList:
		if f.List == nil {
			return mismatchedPayloadErr(ot, f)
		}
		return validateScalar(ot, f.Name, f.List.Element)
	case FieldSet:
		if f.Set == nil {
			return mismatchedPayloadErr(ot, f)
		}
		return validateScalar(ot, f.Name, f.Set.Element)
	case FieldMap:
		if f.Map == nil {
			return mismatchedPayloadErr(ot, f)
		}
		if err := validateScalar(ot, f.Name, f.Map.Key); err != nil {
			return err
		}
		if f.Map.Key.Nullable {
			return fmt.Errorf("%w: object type %q field %q: map keys may not be nullable", ErrInvalidSchema, ot.Name, f.Name)
		}
		return validateScalar(ot, f.Name, f.Map.Value)
	default:
		return fmt.Errorf("%w: object type %q field %q: unknown field kind %d", ErrInvalidSchema, ot.Name, f.Name, f.Kind)
	}
	return nil
}

func mismatchedPayloadErr(ot *ObjectType, f *Field) error {
	return fmt.Errorf("%w: object type %q field %q: payload does not match kind %s", ErrInvalidSchema, ot.Name, f.Name, f.Kind)
}

func validateScalar(ot *ObjectType, fieldName string, sc Scalar) error {
	switch sc.Encoding {
	case KindInt64, KindFloat64, KindBool, KindString, KindBytes, KindUUID:
		if len(sc.EnumIdentifiers) != 0 {
			return fmt.Errorf("%w: object type %q field %q: enum identifiers set for non-enum encoding %s", ErrInvalidSchema, ot.Name, fieldName, sc.Encoding)
		}
		if sc.Reference != nil {
			return fmt.Errorf("%w: object type %q field %q: reference options set for non-reference encoding %s", ErrInvalidSchema, ot.Name, fieldName, sc.Encoding)
		}
	case KindEnum:
		if len(sc.EnumIdentifiers) == 0 {
			return fmt.Errorf("%w: object type %q field %q: enum field has no identifiers", ErrInvalidSchema, ot.Name, fieldName)
		}
		seen := make(map[string]bool, len(sc.EnumIdentifiers))
		for _, id := range sc.EnumIdentifiers {
			if id == "" {
				return fmt.Errorf("%w: object type %q field %q: empty enum identifier", ErrInvalidSchema, ot.Name, fieldName)
			}
			if seen[id] {
				return fmt.Errorf("%w: object type %q field %q: duplicate enum identifier %q", ErrInvalidSchema, ot.Name, fieldName, id)
			}
			seen[id] = true
		}
	case KindReference:
		if sc.Reference == nil {
			return fmt.Errorf("%w: object type %q field %q: reference encoding with no reference options", ErrInvalidSchema, ot.Name, fieldName)
		}
		if sc.Reference.InverseDelete == InverseDeleteNone && !sc.Reference.AllowDangling {
			return fmt.Errorf("%w: object type %q field %q: inverse delete policy none requires AllowDangling", ErrInvalidSchema, ot.Name, fieldName)
		}
	default:
		return fmt.Errorf("%w: object type %q field %q: unknown scalar encoding %d", ErrInvalidSchema, ot.Name, fieldName, sc.Encoding)
	}
	return nil
}
