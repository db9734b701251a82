package codec

// signBit flips the sign bit of a two's-complement int64 reinterpreted as
// uint64, so that the unsigned ordering of the flipped value matches the
// signed ordering of the original: negative numbers (high bit 1) map below
// non-negative numbers (high bit 0) once the bit is inverted.
const signBit = uint64(1) << 63

// EncodeInt64 encodes a signed integer so that unsigned, order-preserving
// comparison of the result matches signed comparison of the input.
func EncodeInt64(v int64) []byte {
	return EncodeUint64(uint64(v) ^ signBit)
}

// DecodeInt64 decodes a value produced by EncodeInt64.
func DecodeInt64(b []byte) (v int64, rest []byte, err error) {
	u, rest, err := DecodeUint64(b)
	if err != nil {
		return 0, nil, err
	}
	return int64(u ^ signBit), rest, nil
}
