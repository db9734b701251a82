package codec

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// ObjIDSize is the fixed, on-disk width of an ObjID.
const ObjIDSize = 8

// typeIDBits is the number of high bits of an ObjID reserved for the
// object-type storage id. 16 bits allows up to 65535 object types per
// database, which comfortably exceeds any schema built by hand or by a
// generator; the remaining 48 bits are drawn at random on object creation.
// This freezes one of spec.md's open questions ("high byte or leading
// varint" for the type tag): a fixed 16-bit field, not a varint, so that
// ObjID stays a fixed-width, directly comparable 8-byte value.
const typeIDBits = 16

const tailMask = uint64(1)<<(64-typeIDBits) - 1

// ObjID is the 64-bit opaque object identity. Its high 16 bits encode the
// owning object type's storage id; the low 48 bits are an identity drawn
// uniformly at random within that type's namespace. Ordering and equality
// are plain raw byte comparison, which EncodeObjID/DecodeObjID preserve by
// construction (ObjID is already a fixed-width big-endian encoding of a
// single uint64).
type ObjID [ObjIDSize]byte

// NewObjID packs a type storage id and a 48-bit tail into an ObjID. It
// panics if tail does not fit in 48 bits or typeID does not fit in 16 bits,
// both of which indicate a programming error in a caller, not bad input.
func NewObjID(typeID uint16, tail uint64) ObjID {
	if tail > tailMask {
		panic(fmt.Sprintf("codec: ObjID tail %d exceeds %d bits", tail, 64-typeIDBits))
	}
	var id ObjID
	binary.BigEndian.PutUint64(id[:], uint64(typeID)<<(64-typeIDBits)|tail)
	return id
}

// RandomObjID draws a uniformly random tail for typeID. Collision detection
// against existing keys is the caller's responsibility (txn's CreateObject
// rejects an id that already exists), since only the caller's transaction
// snapshot can answer "does this id already exist".
func RandomObjID(typeID uint16) (ObjID, error) {
	var tailBytes [8]byte
	if _, err := rand.Read(tailBytes[:]); err != nil {
		return ObjID{}, fmt.Errorf("codec: draw random ObjID tail: %w", err)
	}
	tail := binary.BigEndian.Uint64(tailBytes[:]) & tailMask
	return NewObjID(typeID, tail), nil
}

// TypeID returns the object-type storage id encoded in the high bits of id.
func (id ObjID) TypeID() uint16 {
	return uint16(binary.BigEndian.Uint64(id[:]) >> (64 - typeIDBits))
}

// Tail returns the low, randomly-drawn bits of id.
func (id ObjID) Tail() uint64 {
	return binary.BigEndian.Uint64(id[:]) & tailMask
}

// Bytes returns the raw 8-byte encoding of id.
func (id ObjID) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

// Compare returns -1, 0, or 1 according to raw byte ordering of id and
// other, which is the ordering spec.md defines for ObjID.
func (id ObjID) Compare(other ObjID) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String renders id as hex, for logs and error messages.
func (id ObjID) String() string {
	return hex.EncodeToString(id[:])
}

// EncodeObjID returns the raw, fixed-width, self-delimiting encoding of id.
func EncodeObjID(id ObjID) []byte {
	return id.Bytes()
}

// DecodeObjID decodes a value produced by EncodeObjID.
func DecodeObjID(b []byte) (id ObjID, rest []byte, err error) {
	if len(b) < ObjIDSize {
		return ObjID{}, nil, fmt.Errorf("codec: decode ObjID: truncated input, need %d bytes have %d", ObjIDSize, len(b))
	}
	copy(id[:], b[:ObjIDSize])
	return id, b[ObjIDSize:], nil
}
