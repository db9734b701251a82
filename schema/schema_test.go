package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personType() *ObjectType {
	return &ObjectType{
		Name:      "Person",
		StorageID: 1,
		Fields: []*Field{
			{
				Name:      "name",
				StorageID: 2,
				Kind:      FieldSimple,
				Simple:    &SimpleField{Scalar: Scalar{Encoding: KindString}, Indexed: true},
			},
			{
				Name:      "age",
				StorageID: 3,
				Kind:      FieldSimple,
				Simple:    &SimpleField{Scalar: Scalar{Encoding: KindInt64}},
			},
			{
				Name:      "visits",
				StorageID: 4,
				Kind:      FieldCounter,
				Counter:   &CounterField{},
			},
			{
				Name:      "tags",
				StorageID: 5,
				Kind:      FieldSet,
				Set:       &SetField{Element: Scalar{Encoding: KindString}},
			},
		},
		CompositeIndexes: []*CompositeIndex{
			{Name: "name_age", StorageID: 6, Fields: []string{"name", "age"}},
		},
	}
}

func buildValidSchema(t *testing.T) *Schema {
	t.Helper()
	s := New()
	s.AddObjectType(personType())
	require.NoError(t, s.LockDown())
	return s
}

func TestLockDownAcceptsWellFormedSchema(t *testing.T) {
	s := buildValidSchema(t)
	assert.True(t, s.Locked())
	assert.NotNil(t, s.FindObjectType("Person"))
	assert.Equal(t, s.FindObjectType("Person"), s.ObjectTypeByStorageID(1))
}

func TestLockDownIsIdempotent(t *testing.T) {
	s := buildValidSchema(t)
	id := s.SchemaID()
	require.NoError(t, s.LockDown())
	assert.Equal(t, id, s.SchemaID())
}

func TestAddObjectTypePanicsAfterLockDown(t *testing.T) {
	s := buildValidSchema(t)
	assert.Panics(t, func() {
		s.AddObjectType(&ObjectType{Name: "Other", StorageID: 100})
	})
}

func TestLockDownRejectsEmptySchema(t *testing.T) {
	s := New()
	err := s.LockDown()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLockDownRejectsDuplicateStorageID(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "dup", StorageID: 2, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{Encoding: KindBool}},
	})
	s.AddObjectType(ot)
	err := s.LockDown()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLockDownRejectsCompositeIndexOverUnknownField(t *testing.T) {
	s := New()
	ot := personType()
	ot.CompositeIndexes = append(ot.CompositeIndexes, &CompositeIndex{
		Name: "bogus", StorageID: 7, Fields: []string{"name", "ghost"},
	})
	s.AddObjectType(ot)
	err := s.LockDown()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLockDownRejectsCompositeIndexOverNonSimpleField(t *testing.T) {
	s := New()
	ot := personType()
	ot.CompositeIndexes = append(ot.CompositeIndexes, &CompositeIndex{
		Name: "bogus", StorageID: 7, Fields: []string{"name", "visits"},
	})
	s.AddObjectType(ot)
	err := s.LockDown()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLockDownRejectsReferenceToUnknownType(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "friend", StorageID: 7, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{
			Encoding: KindReference,
			Reference: &ReferenceOptions{
				AllowedTypes:  []string{"Ghost"},
				InverseDelete: InverseDeleteUnreference,
			},
		}},
	})
	s.AddObjectType(ot)
	err := s.LockDown()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLockDownAcceptsValidReference(t *testing.T) {
	s := New()
	s.AddObjectType(personType())
	ot := s.objectTypes[0]
	ot.Fields = append(ot.Fields, &Field{
		Name: "friend", StorageID: 7, Kind: FieldSimple,
		Simple: &SimpleField{
			Indexed: true,
			Scalar: Scalar{
				Encoding: KindReference,
				Nullable: true,
				Reference: &ReferenceOptions{
					AllowedTypes:  []string{"Person"},
					InverseDelete: InverseDeleteUnreference,
				},
			},
		},
	})
	require.NoError(t, s.LockDown())
}

func TestSchemaIDIsOrderIndependent(t *testing.T) {
	a := New()
	pa := personType()
	a.AddObjectType(pa)
	require.NoError(t, a.LockDown())

	b := New()
	pb := personType()
	// Reverse field definition order; storage ids (and therefore the
	// canonical hash order) are unchanged.
	for i, j := 0, len(pb.Fields)-1; i < j; i, j = i+1, j-1 {
		pb.Fields[i], pb.Fields[j] = pb.Fields[j], pb.Fields[i]
	}
	b.AddObjectType(pb)
	require.NoError(t, b.LockDown())

	assert.Equal(t, a.SchemaID(), b.SchemaID())
}

func TestSchemaIDChangesWithFieldRename(t *testing.T) {
	a := buildValidSchema(t)

	b := New()
	pb := personType()
	pb.Fields[0].Name = "full_name"
	b.AddObjectType(pb)
	require.NoError(t, b.LockDown())

	assert.NotEqual(t, a.SchemaID(), b.SchemaID())
}

func TestCloneProducesUnlockedDeepCopy(t *testing.T) {
	s := buildValidSchema(t)
	clone := s.Clone()
	assert.False(t, clone.Locked())

	clone.FindObjectType("Person")
	ot := clone.objectTypes[0]
	ot.Fields[0].Name = "changed"
	assert.Equal(t, "name", s.FindObjectType("Person").Fields[0].Name)
}

func TestCompatibleWithDetectsFieldRename(t *testing.T) {
	prior := buildValidSchema(t)

	next := New()
	p := personType()
	p.Fields[0].Name = "full_name" // reuses storage id 2 under a new name
	next.AddObjectType(p)
	require.NoError(t, next.LockDown())

	err := next.CompatibleWith(prior)
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestCompatibleWithDetectsEncodingChange(t *testing.T) {
	prior := buildValidSchema(t)

	next := New()
	p := personType()
	p.Fields[1].Simple.Encoding = KindString // age: int64 -> string, same storage id
	next.AddObjectType(p)
	require.NoError(t, next.LockDown())

	err := next.CompatibleWith(prior)
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestCompatibleWithAllowsAddingNewFields(t *testing.T) {
	prior := buildValidSchema(t)

	next := New()
	p := personType()
	p.Fields = append(p.Fields, &Field{
		Name: "nickname", StorageID: 8, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{Encoding: KindString, Nullable: true}},
	})
	next.AddObjectType(p)
	require.NoError(t, next.LockDown())

	assert.NoError(t, next.CompatibleWith(prior))
}

func TestCompatibleWithAllowsDroppingAStorageID(t *testing.T) {
	prior := buildValidSchema(t)

	next := New()
	p := personType()
	p.Fields = p.Fields[:1] // drop age, visits, tags entirely
	p.CompositeIndexes = nil
	next.AddObjectType(p)
	require.NoError(t, next.LockDown())

	assert.NoError(t, next.CompatibleWith(prior))
}
