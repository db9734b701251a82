package codec

import "fmt"

// EncodeBool encodes a boolean as a single byte, 0x00 for false and 0x01
// for true, so false sorts before true.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// DecodeBool decodes a value produced by EncodeBool.
func DecodeBool(b []byte) (v bool, rest []byte, err error) {
	if len(b) < 1 {
		return false, nil, fmt.Errorf("codec: decode bool: empty input")
	}
	switch b[0] {
	case 0x00:
		return false, b[1:], nil
	case 0x01:
		return true, b[1:], nil
	default:
		return false, nil, fmt.Errorf("codec: decode bool: invalid byte 0x%02x", b[0])
	}
}
