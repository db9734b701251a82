package layout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/codec"
)

func TestFormatVersionKeyIsStable(t *testing.T) {
	assert.Equal(t, FormatVersionKey(), FormatVersionKey())
	assert.True(t, IsMetaKey(FormatVersionKey()))
}

func TestSchemaKeyOrdersByVersion(t *testing.T) {
	k1 := SchemaKey(1)
	k2 := SchemaKey(2)
	k10 := SchemaKey(10)

	assert.True(t, bytes.HasPrefix(k1, SchemaRegistryPrefix()))
	assert.True(t, bytes.Compare(k1, k2) < 0)
	assert.True(t, bytes.Compare(k2, k10) < 0)
}

func TestVersionIndexKeyOrdersByVersionThenID(t *testing.T) {
	idA := codec.NewObjID(1, 1)
	idB := codec.NewObjID(1, 2)

	kv1a := VersionIndexKey(1, idA)
	kv1b := VersionIndexKey(1, idB)
	kv2a := VersionIndexKey(2, idA)

	assert.True(t, bytes.HasPrefix(kv1a, VersionIndexPrefix(1)))
	assert.True(t, bytes.HasPrefix(kv1b, VersionIndexPrefix(1)))
	assert.False(t, bytes.HasPrefix(kv2a, VersionIndexPrefix(1)))
	assert.True(t, bytes.Compare(kv1a, kv1b) < 0)
	assert.True(t, bytes.Compare(kv1a, kv2a) < 0)
}

func TestPrimaryKeyPrefixesMatchObjectType(t *testing.T) {
	id := codec.NewObjID(7, 42)

	key := PrimaryKey(id)
	assert.True(t, bytes.HasPrefix(key, ObjectTypePrefix(7)))
	assert.False(t, bytes.HasPrefix(key, ObjectTypePrefix(8)))
}

func TestFieldKeyExtendsPrimaryKey(t *testing.T) {
	id := codec.NewObjID(7, 42)

	primary := PrimaryKey(id)
	field := FieldKey(id, 10)
	assert.True(t, bytes.HasPrefix(field, primary))
	assert.NotEqual(t, primary, field)
}

func TestListElementKeyOrdersByPosition(t *testing.T) {
	id := codec.NewObjID(1, 1)

	k0 := ListElementKey(id, 5, 0)
	k1 := ListElementKey(id, 5, 1)
	k2 := ListElementKey(id, 5, 2)
	k10 := ListElementKey(id, 5, 10)

	assert.True(t, bytes.Compare(k0, k1) < 0)
	assert.True(t, bytes.Compare(k1, k2) < 0)
	assert.True(t, bytes.Compare(k2, k10) < 0)
}

func TestSimpleIndexKeyGroupsByValueThenID(t *testing.T) {
	idA := codec.NewObjID(1, 1)
	idB := codec.NewObjID(1, 2)
	valX := codec.EncodeString("x")
	valY := codec.EncodeString("y")

	kxA := SimpleIndexKey(11, valX, idA)
	kxB := SimpleIndexKey(11, valX, idB)
	kyA := SimpleIndexKey(11, valY, idA)

	assert.True(t, bytes.HasPrefix(kxA, SimpleIndexValuePrefix(11, valX)))
	assert.True(t, bytes.HasPrefix(kxB, SimpleIndexValuePrefix(11, valX)))
	assert.True(t, bytes.Compare(kxA, kxB) < 0)
	assert.True(t, bytes.Compare(kxB, kyA) < 0)
	assert.True(t, bytes.HasPrefix(kxA, SimpleIndexPrefix(11)))
}

func TestCompositeIndexKeyConcatenatesComponents(t *testing.T) {
	id := codec.NewObjID(1, 1)
	values := [][]byte{codec.EncodeString("smith"), codec.EncodeInt64(30)}

	key := CompositeIndexKey(20, values, id)
	assert.True(t, bytes.HasPrefix(key, CompositeIndexPrefix(20)))

	prefix, gotID, err := SplitIndexKeyObjID(key)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.True(t, bytes.HasPrefix(key, prefix))
}

func TestSplitIndexKeyObjIDRejectsShortKeys(t *testing.T) {
	_, _, err := SplitIndexKeyObjID([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestObjectNamespacesDoNotCollideWithMeta(t *testing.T) {
	id := codec.NewObjID(1, 1)
	assert.False(t, IsMetaKey(PrimaryKey(id)))
	assert.False(t, IsMetaKey(SimpleIndexKey(1, codec.EncodeString("x"), id)))
}
