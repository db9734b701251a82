package codec

import "fmt"

// Null-discriminator prefix bytes. nonNullPrefix must be greater than
// nullPrefix so that NULL sorts before every encoded non-null value of the
// same nullable field, as required by spec.md's DATA MODEL section.
const (
	nullPrefix    = 0x00
	nonNullPrefix = 0x01
)

// EncodeNullable prepends the NULL discriminator to an already-encoded
// value. Pass encoded == nil when isNull is true.
func EncodeNullable(isNull bool, encoded []byte) []byte {
	if isNull {
		return []byte{nullPrefix}
	}
	buf := make([]byte, 0, 1+len(encoded))
	buf = append(buf, nonNullPrefix)
	buf = append(buf, encoded...)
	return buf
}

// DecodeNullable reports whether the next value in b is NULL and returns
// the remainder for the caller to pass to the field's type-specific decode
// function when it is not.
func DecodeNullable(b []byte) (isNull bool, rest []byte, err error) {
	if len(b) < 1 {
		return false, nil, fmt.Errorf("codec: decode nullable: empty input")
	}
	switch b[0] {
	case nullPrefix:
		return true, b[1:], nil
	case nonNullPrefix:
		return false, b[1:], nil
	default:
		return false, nil, fmt.Errorf("codec: decode nullable: invalid discriminator 0x%02x", b[0])
	}
}
