package schemaregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/objdberrs"
	"objectdb/schema"
)

func lockedSchema(t *testing.T, mutate func(*schema.ObjectType)) *schema.Schema {
	t.Helper()
	s := schema.New()
	ot := &schema.ObjectType{
		Name:      "Person",
		StorageID: 1,
		Fields: []*schema.Field{
			{
				Name:      "name",
				StorageID: 2,
				Kind:      schema.FieldSimple,
				Simple:    &schema.SimpleField{Scalar: schema.Scalar{Encoding: schema.KindString}},
			},
		},
	}
	if mutate != nil {
		mutate(ot)
	}
	s.AddObjectType(ot)
	require.NoError(t, s.LockDown())
	return s
}

func TestRegisterAssignsSequentialVersions(t *testing.T) {
	r := New()
	s1 := lockedSchema(t, nil)

	v1, err := r.Register(s1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1)

	s2 := lockedSchema(t, func(ot *schema.ObjectType) {
		ot.Fields = append(ot.Fields, &schema.Field{
			Name: "age", StorageID: 3, Kind: schema.FieldSimple,
			Simple: &schema.SimpleField{Scalar: schema.Scalar{Encoding: schema.KindInt64}},
		})
	})
	v2, err := r.Register(s2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v2)

	latestV, latestS, err := r.Latest()
	require.NoError(t, err)
	assert.Equal(t, v2, latestV)
	assert.Equal(t, s2.SchemaID(), latestS.SchemaID())
	assert.Equal(t, []uint64{1, 2}, r.Versions())
}

func TestRegisterReusesVersionForMatchingSchemaID(t *testing.T) {
	r := New()
	s1 := lockedSchema(t, nil)
	v1, err := r.Register(s1)
	require.NoError(t, err)

	s2 := lockedSchema(t, nil) // distinct *schema.Schema, identical structure
	v2, err := r.Register(s2)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, []uint64{1}, r.Versions())
}

func TestResolveUnknownVersionErrors(t *testing.T) {
	r := New()
	_, err := r.Resolve(99)
	assert.ErrorIs(t, err, objdberrs.ErrUnknownSchemaVersion)
}

func TestLatestOnEmptyRegistryErrors(t *testing.T) {
	r := New()
	_, _, err := r.Latest()
	assert.ErrorIs(t, err, objdberrs.ErrUnknownSchemaVersion)
}

func TestRegisterRejectsIncompatibleReuse(t *testing.T) {
	r := New()
	s1 := lockedSchema(t, nil)
	_, err := r.Register(s1)
	require.NoError(t, err)

	s2 := lockedSchema(t, func(ot *schema.ObjectType) {
		ot.Fields[0].Simple.Encoding = schema.KindInt64 // storage id 2 reused, type changed
	})
	_, err = r.Register(s2)
	assert.ErrorIs(t, err, objdberrs.ErrSchemaMismatch)
}

func TestRegisterRejectsUnlockedSchema(t *testing.T) {
	r := New()
	_, err := r.Register(schema.New())
	assert.Error(t, err)
}

func TestResolveReturnsRegisteredSchema(t *testing.T) {
	r := New()
	s1 := lockedSchema(t, nil)
	v1, err := r.Register(s1)
	require.NoError(t, err)

	got, err := r.Resolve(v1)
	require.NoError(t, err)
	assert.Equal(t, s1.SchemaID(), got.SchemaID())
}
