package kv

import (
	"fmt"

	"objectdb/codec"
)

// Encode serializes w as: a varint count followed by that many
// length-prefixed entries, per kind, in Puts/Removes/RemoveRanges/
// CounterAdjusts order. It gives a pending write set a compact byte form
// without reusing the order-preserving codec encodings, which are built for
// comparison, not compactness.
func (w Writes) Encode() []byte {
	var buf []byte

	buf = appendUint(buf, uint64(len(w.Puts)))
	for _, p := range w.Puts {
		buf = appendBytes(buf, p.Key)
		buf = appendBytes(buf, p.Value)
	}

	buf = appendUint(buf, uint64(len(w.Removes)))
	for _, r := range w.Removes {
		buf = appendBytes(buf, r.Key)
	}

	buf = appendUint(buf, uint64(len(w.RemoveRanges)))
	for _, rr := range w.RemoveRanges {
		buf = appendBytes(buf, rr.Start)
		buf = appendBytes(buf, rr.End)
	}

	buf = appendUint(buf, uint64(len(w.CounterAdjusts)))
	for _, ca := range w.CounterAdjusts {
		buf = appendBytes(buf, ca.Key)
		buf = append(buf, codec.EncodeInt64(ca.Delta)...)
	}

	return buf
}

// DecodeWrites parses the output of Writes.Encode.
func DecodeWrites(b []byte) (Writes, error) {
	var w Writes
	rest := b

	n, rest, err := readUint(rest, "put count")
	if err != nil {
		return Writes{}, err
	}
	for i := uint64(0); i < n; i++ {
		var key, value []byte
		if key, rest, err = readBytes(rest, "put key"); err != nil {
			return Writes{}, err
		}
		if value, rest, err = readBytes(rest, "put value"); err != nil {
			return Writes{}, err
		}
		w.Puts = append(w.Puts, Put{Key: key, Value: value})
	}

	n, rest, err = readUint(rest, "remove count")
	if err != nil {
		return Writes{}, err
	}
	for i := uint64(0); i < n; i++ {
		var key []byte
		if key, rest, err = readBytes(rest, "remove key"); err != nil {
			return Writes{}, err
		}
		w.Removes = append(w.Removes, Remove{Key: key})
	}

	n, rest, err = readUint(rest, "remove-range count")
	if err != nil {
		return Writes{}, err
	}
	for i := uint64(0); i < n; i++ {
		var start, end []byte
		if start, rest, err = readBytes(rest, "remove-range start"); err != nil {
			return Writes{}, err
		}
		if end, rest, err = readBytes(rest, "remove-range end"); err != nil {
			return Writes{}, err
		}
		w.RemoveRanges = append(w.RemoveRanges, RemoveRange{Start: start, End: end})
	}

	n, rest, err = readUint(rest, "counter-adjust count")
	if err != nil {
		return Writes{}, err
	}
	for i := uint64(0); i < n; i++ {
		var key []byte
		if key, rest, err = readBytes(rest, "counter-adjust key"); err != nil {
			return Writes{}, err
		}
		delta, deltaRest, err := codec.DecodeInt64(rest)
		if err != nil {
			return Writes{}, fmt.Errorf("kv: decoding counter-adjust delta: %w", err)
		}
		rest = deltaRest
		w.CounterAdjusts = append(w.CounterAdjusts, CounterAdjust{Key: key, Delta: delta})
	}

	if len(rest) != 0 {
		return Writes{}, fmt.Errorf("kv: %d trailing bytes after decoding Writes", len(rest))
	}
	return w, nil
}

func appendUint(buf []byte, v uint64) []byte {
	return append(buf, codec.EncodeUint64(v)...)
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = append(buf, codec.EncodeUint64(uint64(len(b)))...)
	return append(buf, b...)
}

func readUint(b []byte, what string) (uint64, []byte, error) {
	v, rest, err := codec.DecodeUint64(b)
	if err != nil {
		return 0, nil, fmt.Errorf("kv: decoding %s: %w", what, err)
	}
	return v, rest, nil
}

func readBytes(b []byte, what string) ([]byte, []byte, error) {
	n, rest, err := readUint(b, what+" length")
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, fmt.Errorf("kv: decoding %s: need %d bytes, have %d", what, n, len(rest))
	}
	return rest[:n], rest[n:], nil
}
