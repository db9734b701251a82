package schemafixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/schema"
)

const personFixture = `
[[object_types]]
name = "Person"
storage_id = 1

  [[object_types.fields]]
  name = "name"
  storage_id = 2
  kind = "simple"
  encoding = "string"
  indexed = true

  [[object_types.fields]]
  name = "age"
  storage_id = 3
  kind = "simple"
  encoding = "int64"

  [[object_types.fields]]
  name = "visits"
  storage_id = 4
  kind = "counter"

  [[object_types.fields]]
  name = "tags"
  storage_id = 5
  kind = "set"
    [object_types.fields.element]
    encoding = "string"

  [[object_types.composite_indexes]]
  name = "name_age"
  storage_id = 6
  fields = ["name", "age"]

[[object_types]]
name = "Pet"
storage_id = 7

  [[object_types.fields]]
  name = "owner"
  storage_id = 8
  kind = "simple"
  encoding = "reference"
  nullable = true
  indexed = true
    [object_types.fields.reference]
    allowed_types = ["Person"]
    inverse_delete = "unreference"
`

func TestLoadBuildsAValidLockableSchema(t *testing.T) {
	s, err := Load(strings.NewReader(personFixture))
	require.NoError(t, err)
	require.NoError(t, s.LockDown())

	person := s.FindObjectType("Person")
	require.NotNil(t, person)
	assert.Len(t, person.Fields, 4)
	assert.NotNil(t, person.FindCompositeIndex("name_age"))

	tags := person.FindField("tags")
	require.NotNil(t, tags)
	assert.Equal(t, schema.FieldSet, tags.Kind)
	assert.Equal(t, schema.KindString, tags.Set.Element.Encoding)
}

func TestLoadRejectsUnknownFieldKind(t *testing.T) {
	doc := `
[[object_types]]
name = "Broken"
storage_id = 1

  [[object_types.fields]]
  name = "x"
  storage_id = 2
  kind = "bogus"
`
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateObjectTypeName(t *testing.T) {
	doc := `
[[object_types]]
name = "Person"
storage_id = 1

[[object_types]]
name = "Person"
storage_id = 2
`
	_, err := Load(strings.NewReader(doc))
	assert.ErrorContains(t, err, "duplicate object type name")
}
