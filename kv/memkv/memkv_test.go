package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/kv"
	"objectdb/objdberrs"
)

func TestGetMissingKeyReturnsNotOK(t *testing.T) {
	s := New()
	_, ok, err := s.Get(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutatePutThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	err = s.Mutate(ctx, snap, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{{Key: []byte("a"), Value: []byte("1")}},
	})
	require.NoError(t, err)

	v, ok, err := s.Get(ctx, []byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestSnapshotDoesNotSeeLaterWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	commit, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, commit, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{{Key: []byte("a"), Value: []byte("1")}},
	}))

	_, ok, err := snap.Get(ctx, []byte("a"))
	require.NoError(t, err)
	assert.False(t, ok, "snapshot taken before the write must not observe it")
}

func TestMutateConflictsOnOverlappingRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	seed, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, seed, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{{Key: []byte("a"), Value: []byte("1")}},
	}))

	txnSnap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	other, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, other, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{{Key: []byte("a"), Value: []byte("2")}},
	}))

	reads := kv.Reads{}
	reads.Record([]byte("a"), []byte("a\x00"))
	err = s.Mutate(ctx, txnSnap, reads, kv.Writes{
		Puts: []kv.Put{{Key: []byte("b"), Value: []byte("3")}},
	})
	assert.ErrorIs(t, err, objdberrs.ErrRetry)
}

func TestMutateSucceedsWhenReadRangeUnchanged(t *testing.T) {
	s := New()
	ctx := context.Background()

	txnSnap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	reads := kv.Reads{}
	reads.Record([]byte("a"), []byte("a\x00"))
	err = s.Mutate(ctx, txnSnap, reads, kv.Writes{
		Puts: []kv.Put{{Key: []byte("b"), Value: []byte("1")}},
	})
	assert.NoError(t, err)
}

func TestCounterAdjustAccumulates(t *testing.T) {
	s := New()
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, snap, kv.Reads{}, kv.Writes{
		CounterAdjusts: []kv.CounterAdjust{{Key: []byte("c"), Delta: 5}},
	}))

	snap2, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, snap2, kv.Reads{}, kv.Writes{
		CounterAdjusts: []kv.CounterAdjust{{Key: []byte("c"), Delta: -2}},
	}))

	got := decodeCounter(mustGet(t, s, "c"))
	assert.Equal(t, int64(3), got)
}

func TestRemoveRangeDeletesEveryMatchingKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, snap, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{
			{Key: []byte("a1"), Value: []byte("x")},
			{Key: []byte("a2"), Value: []byte("x")},
			{Key: []byte("b1"), Value: []byte("x")},
		},
	}))

	snap2, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Mutate(ctx, snap2, kv.Reads{}, kv.Writes{
		RemoveRanges: []kv.RemoveRange{{Start: []byte("a"), End: []byte("b")}},
	}))

	got, err := s.GetRange(ctx, []byte{0}, []byte{0xFF})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []byte("b1"), got[0].Key)
}

func mustGet(t *testing.T, s *Store, key string) []byte {
	t.Helper()
	v, ok, err := s.Get(context.Background(), []byte(key))
	require.NoError(t, err)
	require.True(t, ok)
	return v
}
