package schema

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// computeSchemaID hashes a canonical textual traversal of s: object types
// sorted by storage id, each field and composite index sorted by storage
// id within its owner. Sorting by storage id rather than walking
// definition order means two schemas that define the same types and fields
// in a different source order still fingerprint identically, while the
// schema's assigned version number never enters the hash at all.
func computeSchemaID(s *Schema) [32]byte {
	h := sha256.New()

	types := append([]*ObjectType(nil), s.objectTypes...)
	sort.Slice(types, func(i, j int) bool { return types[i].StorageID < types[j].StorageID })

	for _, ot := range types {
		fmt.Fprintf(h, "objecttype %d %q\n", ot.StorageID, ot.Name)

		fields := append([]*Field(nil), ot.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].StorageID < fields[j].StorageID })
		for _, f := range fields {
			hashField(h, f)
		}

		indexes := append([]*CompositeIndex(nil), ot.CompositeIndexes...)
		sort.Slice(indexes, func(i, j int) bool { return indexes[i].StorageID < indexes[j].StorageID })
		for _, ci := range indexes {
			fmt.Fprintf(h, "compositeindex %d %q %v\n", ci.StorageID, ci.Name, ci.Fields)
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashField(h interface{ Write([]byte) (int, error) }, f *Field) {
	fmt.Fprintf(h, "field %d %q %s\n", f.StorageID, f.Name, f.Kind)
	switch f.Kind {
	case FieldSimple:
		hashScalar(h, f.Simple.Scalar)
		fmt.Fprintf(h, "indexed %v\n", f.Simple.Indexed)
	case FieldCounter:
	case FieldList:
		hashScalar(h, f.List.Element)
	case FieldSet:
		hashScalar(h, f.Set.Element)
	case FieldMap:
		hashScalar(h, f.Map.Key)
		hashScalar(h, f.Map.Value)
	}
}

func hashScalar(h interface{ Write([]byte) (int, error) }, sc Scalar) {
	fmt.Fprintf(h, "scalar %s nullable=%v enum=%v\n", sc.Encoding, sc.Nullable, sc.EnumIdentifiers)
	if sc.Reference != nil {
		fmt.Fprintf(h, "reference allowed=%v forward=%v inverse=%s dangling=%v\n",
			sc.Reference.AllowedTypes, sc.Reference.ForwardDelete, sc.Reference.InverseDelete, sc.Reference.AllowDangling)
	}
}
