package schema

import "fmt"

func (s *Schema) validateCompositeIndexes() error {
	for _, ot := range s.objectTypes {
		seenName := make(map[string]bool, len(ot.CompositeIndexes))
		for _, ci := range ot.CompositeIndexes {
			if ci.Name == "" {
				return fmt.Errorf("%w: object type %q: composite index with empty name", ErrInvalidSchema, ot.Name)
			}
			if seenName[ci.Name] {
				return fmt.Errorf("%w: object type %q: duplicate composite index name %q", ErrInvalidSchema, ot.Name, ci.Name)
			}
			seenName[ci.Name] = true
			if ci.StorageID == 0 {
				return fmt.Errorf("%w: object type %q composite index %q: storage id 0 is reserved", ErrInvalidSchema, ot.Name, ci.Name)
			}
			if len(ci.Fields) < 2 {
				return fmt.Errorf("%w: object type %q composite index %q: needs at least two component fields, has %d", ErrInvalidSchema, ot.Name, ci.Name, len(ci.Fields))
			}
			seenField := make(map[string]bool, len(ci.Fields))
			for _, fname := range ci.Fields {
				if seenField[fname] {
					return fmt.Errorf("%w: object type %q composite index %q: field %q repeated", ErrInvalidSchema, ot.Name, ci.Name, fname)
				}
				seenField[fname] = true
				f := ot.FindField(fname)
				if f == nil {
					return fmt.Errorf("%w: object type %q composite index %q: unknown field %q", ErrInvalidSchema, ot.Name, ci.Name, fname)
				}
				if f.Kind != FieldSimple {
					return fmt.Errorf("%w: object type %q composite index %q: field %q is not a simple field", ErrInvalidSchema, ot.Name, ci.Name, fname)
				}
			}
		}
	}
	return nil
}
