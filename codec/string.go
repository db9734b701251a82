package codec

// EncodeString order-preservingly encodes a UTF-8 string. Go strings compare
// byte-wise already, so this is simply EncodeBytes over the string's bytes,
// which makes "a" sort before "ab" sorts before "b" as required.
func EncodeString(v string) []byte {
	return EncodeBytes([]byte(v))
}

// DecodeString decodes a value produced by EncodeString.
func DecodeString(b []byte) (v string, rest []byte, err error) {
	raw, rest, err := DecodeBytes(b)
	if err != nil {
		return "", nil, err
	}
	return string(raw), rest, nil
}
