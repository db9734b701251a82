package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeFloat64 applies the canonical monotonic bit transform (flip the sign
// bit of non-negative values, invert every bit of negative values) and emits
// the result as 8 fixed-width big-endian bytes. Fixed width makes the
// encoding self-delimiting without a length prefix.
func EncodeFloat64(v float64) []byte {
	bits := math.Float64bits(v)
	if bits&signBit != 0 {
		bits = ^bits
	} else {
		bits |= signBit
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

// DecodeFloat64 decodes a value produced by EncodeFloat64.
func DecodeFloat64(b []byte) (v float64, rest []byte, err error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("codec: decode float64: truncated input, need 8 bytes have %d", len(b))
	}
	bits := binary.BigEndian.Uint64(b[:8])
	if bits&signBit != 0 {
		bits &^= signBit
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), b[8:], nil
}
