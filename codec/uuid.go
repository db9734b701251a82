package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDSize is the fixed on-disk width of a UUID value.
const UUIDSize = 16

// EncodeUUID returns the raw 16-byte encoding of v. UUID's canonical byte
// layout is already a fixed-width big-endian value, so raw bytes are both
// self-delimiting and order-preserving with no further transform needed.
func EncodeUUID(v uuid.UUID) []byte {
	return append([]byte(nil), v[:]...)
}

// DecodeUUID decodes a value produced by EncodeUUID.
func DecodeUUID(b []byte) (v uuid.UUID, rest []byte, err error) {
	if len(b) < UUIDSize {
		return uuid.UUID{}, nil, fmt.Errorf("codec: decode UUID: truncated input, need %d bytes have %d", UUIDSize, len(b))
	}
	copy(v[:], b[:UUIDSize])
	return v, b[UUIDSize:], nil
}
