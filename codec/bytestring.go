package codec

import "fmt"

// EncodeBytes encodes an arbitrary byte string so that it is both
// order-preserving and self-delimiting: every embedded 0x00 byte is escaped
// as 0x00 0xFF, and the whole encoding ends with the unescaped terminator
// 0x00 0x00. Because an escaped zero byte (0x00 0xFF) always compares
// greater than the terminator (0x00 0x00), a string that continues past a
// NUL byte correctly sorts after the string that ends there.
func EncodeBytes(v []byte) []byte {
	buf := make([]byte, 0, len(v)+2)
	for _, b := range v {
		if b == 0x00 {
			buf = append(buf, 0x00, 0xFF)
		} else {
			buf = append(buf, b)
		}
	}
	buf = append(buf, 0x00, 0x00)
	return buf
}

// DecodeBytes decodes a value produced by EncodeBytes.
func DecodeBytes(b []byte) (v []byte, rest []byte, err error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != 0x00 {
			out = append(out, b[i])
			continue
		}
		if i+1 >= len(b) {
			return nil, nil, fmt.Errorf("codec: decode bytes: truncated escape sequence")
		}
		switch b[i+1] {
		case 0x00:
			return out, b[i+2:], nil
		case 0xFF:
			out = append(out, 0x00)
			i++
		default:
			return nil, nil, fmt.Errorf("codec: decode bytes: invalid escape byte 0x%02x", b[i+1])
		}
	}
	return nil, nil, fmt.Errorf("codec: decode bytes: missing terminator")
}
