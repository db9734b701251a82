package memkv

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/btree"

	"objectdb/codec"
	"objectdb/kv"
	"objectdb/objdberrs"
)

const degree = 32

type entry struct {
	key   []byte
	value []byte
}

func less(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Store is an in-memory kv.Engine. The zero value is not usable; use New.
type Store struct {
	mu   sync.Mutex
	tree *btree.BTreeG[entry]
}

// New returns an empty Store.
func New() *Store {
	return &Store{tree: btree.NewG(degree, less)}
}

// Get implements kv.Engine.
func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	got, ok := s.tree.Get(entry{key: key})
	if !ok {
		return nil, false, nil
	}
	return got.value, true, nil
}

// GetRange implements kv.Engine.
func (s *Store) GetRange(_ context.Context, start, end []byte) ([]kv.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return scanRange(s.tree, start, end), nil
}

// Snapshot implements kv.Engine.
func (s *Store) Snapshot(_ context.Context) (kv.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &snapshot{tree: s.tree.Clone()}, nil
}

// Mutate implements kv.Engine. It conflicts, returning objdberrs.ErrRetry,
// if any range the transaction read differs between the snapshot it was
// taken against and the store's current state.
func (s *Store) Mutate(_ context.Context, snap kv.Snapshot, reads kv.Reads, writes kv.Writes) error {
	ms, ok := snap.(*snapshot)
	if !ok {
		return fmt.Errorf("memkv: Mutate called with a snapshot not produced by this store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reads.Ranges {
		before := scanRange(ms.tree, r.Start, r.End)
		after := scanRange(s.tree, r.Start, r.End)
		if !sameEntries(before, after) {
			return objdberrs.ErrRetry
		}
	}

	for _, p := range writes.Puts {
		s.tree.ReplaceOrInsert(entry{key: p.Key, value: p.Value})
	}
	for _, rm := range writes.Removes {
		s.tree.Delete(entry{key: rm.Key})
	}
	for _, rr := range writes.RemoveRanges {
		for _, e := range scanRange(s.tree, rr.Start, rr.End) {
			s.tree.Delete(entry{key: e.Key})
		}
	}
	for _, ca := range writes.CounterAdjusts {
		current := int64(0)
		if got, ok := s.tree.Get(entry{key: ca.Key}); ok {
			current = decodeCounter(got.value)
		}
		s.tree.ReplaceOrInsert(entry{key: ca.Key, value: encodeCounter(current + ca.Delta)})
	}
	return nil
}

type snapshot struct {
	tree *btree.BTreeG[entry]
}

func (sn *snapshot) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	got, ok := sn.tree.Get(entry{key: key})
	if !ok {
		return nil, false, nil
	}
	return got.value, true, nil
}

func (sn *snapshot) GetRange(_ context.Context, start, end []byte) ([]kv.KeyValue, error) {
	return scanRange(sn.tree, start, end), nil
}

// scanRange returns every entry in [start, end). A nil end means unbounded
// (the largest key in the tree), not "less than the empty key" — callers
// such as jsck's prefixEnd return nil for "no upper bound" when a prefix is
// empty or all 0xFF, and that must scan to the end of the keyspace, not
// scan nothing.
func scanRange(tree *btree.BTreeG[entry], start, end []byte) []kv.KeyValue {
	var out []kv.KeyValue
	visit := func(e entry) bool {
		out = append(out, kv.KeyValue{Key: e.key, Value: e.value})
		return true
	}
	if end == nil {
		tree.AscendGreaterOrEqual(entry{key: start}, visit)
	} else {
		tree.AscendRange(entry{key: start}, entry{key: end}, visit)
	}
	return out
}

func encodeCounter(v int64) []byte {
	return codec.EncodeInt64(v)
}

func decodeCounter(b []byte) int64 {
	v, _, err := codec.DecodeInt64(b)
	if err != nil {
		return 0
	}
	return v
}

func sameEntries(a, b []kv.KeyValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Key, b[i].Key) || !bytes.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
