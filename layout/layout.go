package layout

import (
	"fmt"

	"objectdb/codec"
)

// Meta sub-kind tags. All meta keys start with metaPrefix (storage id 0).
// The format-version key is that single byte; for every other meta key the
// second byte distinguishes which meta region it belongs to.
const (
	metaPrefix         byte = 0x00
	metaSchemaRegistry byte = 0x01
	metaVersionIndex   byte = 0x02
)

// tailBits is the width, in bits, of ObjID's random tail (see
// codec.NewObjID); tailBytes is that width rounded up to whole bytes.
const tailBits = 64 - 16
const tailBytes = (tailBits + 7) / 8

// FormatVersionKey is the single, fixed key holding the on-disk format
// version marker.
func FormatVersionKey() []byte {
	return []byte{metaPrefix}
}

// SchemaKey returns the key under which schema version v's persisted blob
// is stored.
func SchemaKey(version uint64) []byte {
	return append([]byte{metaPrefix, metaSchemaRegistry}, codec.EncodeUint64(version)...)
}

// SchemaRegistryPrefix returns the prefix shared by every SchemaKey, for
// range-scanning the whole registry on database open.
func SchemaRegistryPrefix() []byte {
	return []byte{metaPrefix, metaSchemaRegistry}
}

// VersionIndexKey returns the object-version-index key for an object of the
// given schema version and identity.
func VersionIndexKey(version uint64, id codec.ObjID) []byte {
	key := append([]byte{metaPrefix, metaVersionIndex}, codec.EncodeUint64(version)...)
	return append(key, id.Bytes()...)
}

// VersionIndexPrefix returns the prefix of every object-version-index entry
// for the given schema version, for jsck's rebuild pass and for the
// "find every object still on version v" migration scan.
func VersionIndexPrefix(version uint64) []byte {
	return append([]byte{metaPrefix, metaVersionIndex}, codec.EncodeUint64(version)...)
}

// typeIDTail splits an ObjID's fixed-width encoding into the varint-encoded
// storage id and the raw tail bytes that spec.md's primary-key layout calls
// for ("varint(type-storage-id) ‖ id-tail").
func typeIDTail(id codec.ObjID) (typeIDVarint []byte, tail []byte) {
	typeIDVarint = codec.EncodeUint64(uint64(id.TypeID()))
	full := id.Bytes()
	tail = full[len(full)-tailBytes:]
	return typeIDVarint, tail
}

// PrimaryKey returns the key holding an object's header.
func PrimaryKey(id codec.ObjID) []byte {
	typeIDVarint, tail := typeIDTail(id)
	return append(typeIDVarint, tail...)
}

// ObjectTypePrefix returns the key prefix shared by every object of the
// given type, for primary-scan and type-wide cascade checks.
func ObjectTypePrefix(typeStorageID uint16) []byte {
	return codec.EncodeUint64(uint64(typeStorageID))
}

// FieldKey returns the sub-key holding one simple or counter field's value.
func FieldKey(id codec.ObjID, fieldStorageID uint64) []byte {
	return append(PrimaryKey(id), codec.EncodeUint64(fieldStorageID)...)
}

// FieldPrefix returns the prefix shared by a field's sub-key and, for
// collection fields, every element sub-key beneath it.
func FieldPrefix(id codec.ObjID, fieldStorageID uint64) []byte {
	return FieldKey(id, fieldStorageID)
}

// ListElementKey returns the sub-key for one element of a list field at the
// given position. Positions are encoded with EncodeUint64 (spec.md leaves
// fixed- vs. variable-width open; this freezes variable-width, consistent
// with the rest of the codec) so that lexical key order equals list order.
func ListElementKey(id codec.ObjID, fieldStorageID uint64, position uint64) []byte {
	return append(FieldKey(id, fieldStorageID), codec.EncodeUint64(position)...)
}

// SetElementKey returns the sub-key for one element of a set field, keyed by
// the element's own order-preserving encoding so duplicates collapse onto
// the same key and membership is a point lookup.
func SetElementKey(id codec.ObjID, fieldStorageID uint64, encodedElement []byte) []byte {
	return append(FieldKey(id, fieldStorageID), encodedElement...)
}

// MapEntryKey returns the sub-key for one entry of a map field, keyed by the
// map key's own order-preserving encoding.
func MapEntryKey(id codec.ObjID, fieldStorageID uint64, encodedMapKey []byte) []byte {
	return append(FieldKey(id, fieldStorageID), encodedMapKey...)
}

// SimpleIndexKey returns a simple-field index entry's key: the index's
// storage id, the field's current encoded value, and the owning object's
// id, in that order, so that a prefix scan over (indexStorageID,
// encodedValue) realizes "every object currently holding this value".
func SimpleIndexKey(indexStorageID uint64, encodedValue []byte, id codec.ObjID) []byte {
	key := append(codec.EncodeUint64(indexStorageID), encodedValue...)
	return append(key, id.Bytes()...)
}

// SimpleIndexValuePrefix returns the prefix of every index entry for one
// value of a simple-field index, without the trailing object id.
func SimpleIndexValuePrefix(indexStorageID uint64, encodedValue []byte) []byte {
	return append(codec.EncodeUint64(indexStorageID), encodedValue...)
}

// SimpleIndexPrefix returns the prefix of every entry belonging to a
// simple-field index, for jsck's derived-key rebuild.
func SimpleIndexPrefix(indexStorageID uint64) []byte {
	return codec.EncodeUint64(indexStorageID)
}

// CompositeIndexKey returns a composite-index entry's key: the index's
// storage id, the concatenation of each component's current encoded value
// (in index-definition order), and the owning object's id.
func CompositeIndexKey(indexStorageID uint64, encodedValues [][]byte, id codec.ObjID) []byte {
	key := codec.EncodeUint64(indexStorageID)
	for _, v := range encodedValues {
		key = append(key, v...)
	}
	return append(key, id.Bytes()...)
}

// CompositeIndexPrefix returns the prefix of every entry belonging to a
// composite index, for jsck's derived-key rebuild.
func CompositeIndexPrefix(indexStorageID uint64) []byte {
	return codec.EncodeUint64(indexStorageID)
}

// SplitIndexKeyObjID strips and decodes the trailing ObjID from an index
// entry's key, returning the remaining prefix (storage id + encoded
// value(s)) unchanged.
func SplitIndexKeyObjID(key []byte) (prefix []byte, id codec.ObjID, err error) {
	if len(key) < codec.ObjIDSize {
		return nil, codec.ObjID{}, fmt.Errorf("layout: index key too short to hold an ObjID: %d bytes", len(key))
	}
	split := len(key) - codec.ObjIDSize
	id, _, err = codec.DecodeObjID(key[split:])
	if err != nil {
		return nil, codec.ObjID{}, err
	}
	return key[:split], id, nil
}

// IsMetaKey reports whether key falls in the reserved meta namespace
// (storage id 0), as opposed to an object-type or index namespace.
func IsMetaKey(key []byte) bool {
	return len(key) > 0 && key[0] == metaPrefix
}
