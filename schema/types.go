package schema

// Kind identifies the scalar encoding a simple field, list/set element, or
// map key/value uses. It maps directly onto a codec encode/decode pair.
type Kind uint8

const (
	KindInt64 Kind = iota + 1
	KindFloat64
	KindBool
	KindString
	KindBytes
	KindUUID
	KindEnum
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindUUID:
		return "uuid"
	case KindEnum:
		return "enum"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// FieldKind identifies a field's structural kind: a scalar, a counter, or
// one of the three collection shapes. Each Field carries exactly one
// non-nil payload matching its Kind.
type FieldKind uint8

const (
	FieldSimple FieldKind = iota + 1
	FieldCounter
	FieldList
	FieldSet
	FieldMap
)

func (k FieldKind) String() string {
	switch k {
	case FieldSimple:
		return "simple"
	case FieldCounter:
		return "counter"
	case FieldList:
		return "list"
	case FieldSet:
		return "set"
	case FieldMap:
		return "map"
	default:
		return "unknown"
	}
}

// InverseDeletePolicy governs what happens to a referring field when the
// object it points at is deleted.
type InverseDeletePolicy uint8

const (
	// InverseDeleteNone leaves the reference in place, pointing at a
	// deleted object's id. Only legal when the field allows dangling
	// references.
	InverseDeleteNone InverseDeletePolicy = iota + 1
	// InverseDeleteUnreference clears the reference by nulling the value of
	// a nullable simple field. Schema validation accepts it on simple fields
	// only; references held in a list, set, or map accept InverseDeleteNone
	// alone.
	InverseDeleteUnreference
	// InverseDeleteDeleteReferrer cascades the delete to the referring
	// object.
	InverseDeleteDeleteReferrer
	// InverseDeleteException aborts the transaction that attempts the
	// delete, reporting ErrReferencedObject.
	InverseDeleteException
)

func (p InverseDeletePolicy) String() string {
	switch p {
	case InverseDeleteNone:
		return "none"
	case InverseDeleteUnreference:
		return "unreference"
	case InverseDeleteDeleteReferrer:
		return "delete-referrer"
	case InverseDeleteException:
		return "exception"
	default:
		return "unknown"
	}
}

// ReferenceOptions further constrains a KindReference scalar. It is nil for
// every other Kind.
type ReferenceOptions struct {
	// AllowedTypes lists the object type names a reference may point at.
	// Empty means unconstrained.
	AllowedTypes []string
	// ForwardDelete: deleting the referring object also deletes the
	// referenced object(s), whether or not anything else still refers to
	// them; their own referrers' InverseDelete policies then apply.
	ForwardDelete bool
	// InverseDelete governs what happens to this field when the object it
	// points at is deleted.
	InverseDelete InverseDeletePolicy
	// AllowDangling permits InverseDeleteNone and permits the reference to
	// be set to an id with no corresponding object.
	AllowDangling bool
}

func (r *ReferenceOptions) clone() *ReferenceOptions {
	if r == nil {
		return nil
	}
	out := *r
	out.AllowedTypes = append([]string(nil), r.AllowedTypes...)
	return &out
}

// Scalar describes the encoding of a single scalar value: a simple field's
// own value, or a list/set element, or a map's key or value.
type Scalar struct {
	Encoding        Kind
	Nullable        bool
	EnumIdentifiers []string          // populated iff Encoding == KindEnum
	Reference       *ReferenceOptions // populated iff Encoding == KindReference
}

func (s Scalar) clone() Scalar {
	s.EnumIdentifiers = append([]string(nil), s.EnumIdentifiers...)
	s.Reference = s.Reference.clone()
	return s
}

// SimpleField is the payload of a Field whose Kind is FieldSimple: a single
// scalar value, optionally indexed.
type SimpleField struct {
	Scalar
	Indexed bool
}

// CounterField is the payload of a Field whose Kind is FieldCounter: a
// signed 64-bit value mutated only by relative adjustment, never indexed.
type CounterField struct{}

// ListField is the payload of a Field whose Kind is FieldList: an ordered,
// duplicate-permitting sequence of scalars.
type ListField struct {
	Element Scalar
}

// SetField is the payload of a Field whose Kind is FieldSet: an unordered,
// duplicate-free collection of scalars.
type SetField struct {
	Element Scalar
}

// MapField is the payload of a Field whose Kind is FieldMap: a collection of
// scalar-keyed scalar values.
type MapField struct {
	Key   Scalar
	Value Scalar
}

// Field is one field of an ObjectType. Exactly one of Simple, Counter, List,
// Set, or Map is non-nil, selected by Kind.
type Field struct {
	Name      string
	StorageID uint64
	Kind      FieldKind

	Simple  *SimpleField
	Counter *CounterField
	List    *ListField
	Set     *SetField
	Map     *MapField
}

func (f *Field) clone() *Field {
	out := &Field{Name: f.Name, StorageID: f.StorageID, Kind: f.Kind}
	if f.Simple != nil {
		s := *f.Simple
		s.Scalar = s.Scalar.clone()
		out.Simple = &s
	}
	if f.Counter != nil {
		c := *f.Counter
		out.Counter = &c
	}
	if f.List != nil {
		l := ListField{Element: f.List.Element.clone()}
		out.List = &l
	}
	if f.Set != nil {
		s := SetField{Element: f.Set.Element.clone()}
		out.Set = &s
	}
	if f.Map != nil {
		m := MapField{Key: f.Map.Key.clone(), Value: f.Map.Value.clone()}
		out.Map = &m
	}
	return out
}

// IsReference reports whether f can hold or contain references to other
// objects, for any of its structural shapes.
func (f *Field) IsReference() bool {
	switch f.Kind {
	case FieldSimple:
		return f.Simple.Encoding == KindReference
	case FieldList:
		return f.List.Element.Encoding == KindReference
	case FieldSet:
		return f.Set.Element.Encoding == KindReference
	case FieldMap:
		return f.Map.Key.Encoding == KindReference || f.Map.Value.Encoding == KindReference
	default:
		return false
	}
}

// CompositeIndex is a tuple index over two or more simple fields of the same
// object type, named in tuple order.
type CompositeIndex struct {
	Name      string
	StorageID uint64
	Fields    []string
}

func (c *CompositeIndex) clone() *CompositeIndex {
	return &CompositeIndex{Name: c.Name, StorageID: c.StorageID, Fields: append([]string(nil), c.Fields...)}
}

// ObjectType is one object type of a Schema: a storage id, and the fields
// and composite indexes belonging to objects of that type.
type ObjectType struct {
	Name             string
	StorageID        uint64
	Fields           []*Field
	CompositeIndexes []*CompositeIndex
}

func (o *ObjectType) clone() *ObjectType {
	out := &ObjectType{Name: o.Name, StorageID: o.StorageID}
	for _, f := range o.Fields {
		out.Fields = append(out.Fields, f.clone())
	}
	for _, c := range o.CompositeIndexes {
		out.CompositeIndexes = append(out.CompositeIndexes, c.clone())
	}
	return out
}

// FindField returns the field named name, or nil if ObjectType has none.
func (o *ObjectType) FindField(name string) *Field {
	for _, f := range o.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindCompositeIndex returns the composite index named name, or nil.
func (o *ObjectType) FindCompositeIndex(name string) *CompositeIndex {
	for _, c := range o.CompositeIndexes {
		if c.Name == name {
			return c
		}
	}
	return nil
}
