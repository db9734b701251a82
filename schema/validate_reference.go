package schema

import "fmt"

// validateReferences is the semantic pass: it runs after every object type
// and field is known to be individually well-formed, so it can freely cross
//-reference other object types by name.
func (s *Schema) validateReferences() error {
	names := make(map[string]bool, len(s.objectTypes))
	for _, ot := range s.objectTypes {
		names[ot.Name] = true
	}

	for _, ot := range s.objectTypes {
		for _, f := range ot.Fields {
			for _, ref := range referenceOptionsOf(f) {
				for _, allowed := range ref.AllowedTypes {
					if !names[allowed] {
						return fmt.Errorf("%w: object type %q field %q: references unknown object type %q",
							ErrInvalidSchema, ot.Name, f.Name, allowed)
					}
				}
				if ref.ForwardDelete && len(ref.AllowedTypes) == 0 {
					return fmt.Errorf("%w: object type %q field %q: forward-delete requires a constrained AllowedTypes list",
						ErrInvalidSchema, ot.Name, f.Name)
				}

				// Enforcing an inverse-delete policy other than "none" requires
				// finding every referrer of a deleted object, which only a
				// simple-index entry makes possible. Reference elements inside
				// a list/set/map have no index-entry mechanism, so they are
				// restricted to the no-op policy with dangling references
				// allowed.
				if f.Kind == FieldSimple {
					if ref.InverseDelete != InverseDeleteNone && !f.Simple.Indexed {
						return fmt.Errorf("%w: object type %q field %q: inverse delete policy %s requires the field to be indexed",
							ErrInvalidSchema, ot.Name, f.Name, ref.InverseDelete)
					}
				} else if ref.InverseDelete != InverseDeleteNone {
					return fmt.Errorf("%w: object type %q field %q: collection-held references only support inverse delete policy none",
						ErrInvalidSchema, ot.Name, f.Name)
				}
			}
		}
	}
	return nil
}

// referenceOptionsOf returns the ReferenceOptions for every KindReference
// scalar slot f has: none for a non-reference field, one for a reference
// simple/list/set field, and up to two for a map field, since its key and
// value are independently typed and may independently be a reference.
func referenceOptionsOf(f *Field) []*ReferenceOptions {
	var opts []*ReferenceOptions
	switch f.Kind {
	case FieldSimple:
		if f.Simple.Encoding == KindReference {
			opts = append(opts, f.Simple.Reference)
		}
	case FieldList:
		if f.List.Element.Encoding == KindReference {
			opts = append(opts, f.List.Element.Reference)
		}
	case FieldSet:
		if f.Set.Element.Encoding == KindReference {
			opts = append(opts, f.Set.Element.Reference)
		}
	case FieldMap:
		if f.Map.Key.Encoding == KindReference {
			opts = append(opts, f.Map.Key.Reference)
		}
		if f.Map.Value.Encoding == KindReference {
			opts = append(opts, f.Map.Value.Reference)
		}
	}
	return opts
}

// validateStorageIDUniqueness enforces that every storage id in the schema
// -- across object types, fields, and composite indexes alike -- is drawn
// from a single global space, since a KV key's namespace is determined by
// its leading storage id alone.
func (s *Schema) validateStorageIDUniqueness() error {
	seen := make(map[uint64]string, 64)
	claim := func(id uint64, owner string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: storage id %d used by both %s and %s", ErrInvalidSchema, id, prev, owner)
		}
		seen[id] = owner
		return nil
	}

	for _, ot := range s.objectTypes {
		if err := claim(ot.StorageID, fmt.Sprintf("object type %q", ot.Name)); err != nil {
			return err
		}
	}
	for _, ot := range s.objectTypes {
		for _, f := range ot.Fields {
			if err := claim(f.StorageID, fmt.Sprintf("object type %q field %q", ot.Name, f.Name)); err != nil {
				return err
			}
		}
		for _, ci := range ot.CompositeIndexes {
			if err := claim(ci.StorageID, fmt.Sprintf("object type %q composite index %q", ot.Name, ci.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}
