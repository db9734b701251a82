package txn

import (
	"bytes"
	"sort"

	"objectdb/codec"
	"objectdb/kv"
)

// get returns the current value of key, read-your-own-writes: pending
// mutations queued earlier in this same transaction are replayed on top of
// the snapshot before the caller sees a result. The point range [key,
// key+0x00) is recorded as read, for Commit's optimistic conflict check.
func (t *Transaction) get(key []byte) ([]byte, bool, error) {
	end := pointEnd(key)
	t.reads.Record(key, end)

	value, ok, err := t.snapshot.Get(t.ctx, key)
	if err != nil {
		return nil, false, err
	}
	value, ok = replayPoint(t.pending, key, value, ok)
	return value, ok, nil
}

// getRange returns every entry in [start, end), read-your-own-writes. A nil
// end means unbounded above.
func (t *Transaction) getRange(start, end []byte) ([]kv.KeyValue, error) {
	t.reads.Record(start, end)

	base, err := t.snapshot.GetRange(t.ctx, start, rangeEndForSnapshot(end))
	if err != nil {
		return nil, err
	}
	return replayRange(t.pending, start, end, base), nil
}

// pointEnd returns the immediate lexicographic successor of key: the
// smallest byte string strictly greater than key. Appending a single 0x00
// byte always achieves this, since no string can sort between S and S+0x00.
func pointEnd(key []byte) []byte {
	out := make([]byte, len(key)+1)
	copy(out, key)
	return out
}

// rangeEndForSnapshot translates a nil (unbounded) end into a value the
// underlying Snapshot.GetRange accepts. Snapshot implementations treat a
// nil end as "no upper bound" directly, so this is the identity function;
// it exists to keep that assumption in one place.
func rangeEndForSnapshot(end []byte) []byte {
	return end
}

func inRange(key, start, end []byte) bool {
	if bytes.Compare(key, start) < 0 {
		return false
	}
	return end == nil || bytes.Compare(key, end) < 0
}

func replayPoint(pending kv.Writes, key []byte, value []byte, ok bool) ([]byte, bool) {
	for _, p := range pending.Puts {
		if bytes.Equal(p.Key, key) {
			value, ok = p.Value, true
		}
	}
	for _, r := range pending.Removes {
		if bytes.Equal(r.Key, key) {
			ok = false
		}
	}
	for _, rr := range pending.RemoveRanges {
		if inRange(key, rr.Start, rr.End) {
			ok = false
		}
	}
	for _, ca := range pending.CounterAdjusts {
		if bytes.Equal(ca.Key, key) {
			current := int64(0)
			if ok {
				current = decodeCounterOrZero(value)
			}
			value, ok = codec.EncodeInt64(current+ca.Delta), true
		}
	}
	return value, ok
}

func replayRange(pending kv.Writes, start, end []byte, base []kv.KeyValue) []kv.KeyValue {
	m := make(map[string][]byte, len(base))
	for _, e := range base {
		m[string(e.Key)] = e.Value
	}
	for _, p := range pending.Puts {
		if inRange(p.Key, start, end) {
			m[string(p.Key)] = p.Value
		}
	}
	for _, r := range pending.Removes {
		if inRange(r.Key, start, end) {
			delete(m, string(r.Key))
		}
	}
	for _, rr := range pending.RemoveRanges {
		for k := range m {
			if inRange([]byte(k), rr.Start, rr.End) {
				delete(m, k)
			}
		}
	}
	for _, ca := range pending.CounterAdjusts {
		if !inRange(ca.Key, start, end) {
			continue
		}
		current := int64(0)
		if v, ok := m[string(ca.Key)]; ok {
			current = decodeCounterOrZero(v)
		}
		m[string(ca.Key)] = codec.EncodeInt64(current + ca.Delta)
	}

	out := make([]kv.KeyValue, 0, len(m))
	for k, v := range m {
		out = append(out, kv.KeyValue{Key: []byte(k), Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].Key, out[j].Key) < 0 })
	return out
}

func decodeCounterOrZero(v []byte) int64 {
	n, _, err := codec.DecodeInt64(v)
	if err != nil {
		return 0
	}
	return n
}

// prefixEnd returns the smallest key that sorts after every key with the
// given prefix, or nil if prefix is empty or consists entirely of 0xFF
// bytes (an unbounded upper edge, since no byte string can extend past it).
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
