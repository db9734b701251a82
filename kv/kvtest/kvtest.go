package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/codec"
	"objectdb/kv"
	"objectdb/objdberrs"
)

// Factory constructs a fresh, empty Engine for a single subtest.
type Factory func(t *testing.T) kv.Engine

// Run exercises every behavior kv.Engine promises against the Engine
// factory produces. Call it once per implementation package, e.g.:
//
//	func TestStoreConformsToEngine(t *testing.T) {
//	    kvtest.Run(t, func(t *testing.T) kv.Engine { return memkv.New() })
//	}
func Run(t *testing.T, newEngine Factory) {
	t.Run("GetMissingKey", func(t *testing.T) { testGetMissingKey(t, newEngine(t)) })
	t.Run("PutThenGet", func(t *testing.T) { testPutThenGet(t, newEngine(t)) })
	t.Run("RemoveDeletesKey", func(t *testing.T) { testRemoveDeletesKey(t, newEngine(t)) })
	t.Run("GetRangeIsOrderedAndHalfOpen", func(t *testing.T) { testGetRangeOrdered(t, newEngine(t)) })
	t.Run("SnapshotIsolation", func(t *testing.T) { testSnapshotIsolation(t, newEngine(t)) })
	t.Run("MutateConflictDetection", func(t *testing.T) { testMutateConflict(t, newEngine(t)) })
	t.Run("CounterAdjustsMerge", func(t *testing.T) { testCounterAdjustsMerge(t, newEngine(t)) })
}

func mutate(t *testing.T, e kv.Engine, ctx context.Context, writes kv.Writes) {
	t.Helper()
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, e.Mutate(ctx, snap, kv.Reads{}, writes))
}

func testGetMissingKey(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	_, ok, err := e.Get(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func testPutThenGet(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("v")}}})

	v, ok, err := e.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func testRemoveDeletesKey(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("v")}}})
	mutate(t, e, ctx, kv.Writes{Removes: []kv.Remove{{Key: []byte("k")}}})

	_, ok, err := e.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func testGetRangeOrdered(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("3")},
	}})

	got, err := e.GetRange(ctx, []byte("a"), []byte("c"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got[0].Key)
	assert.Equal(t, []byte("b"), got[1].Key)
}

func testSnapshotIsolation(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("1")}}})

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)

	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("2")}}})

	v, ok, err := snap.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v, "snapshot must observe the value at the time it was taken")
}

func testMutateConflict(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("1")}}})

	staleSnap, err := e.Snapshot(ctx)
	require.NoError(t, err)

	mutate(t, e, ctx, kv.Writes{Puts: []kv.Put{{Key: []byte("k"), Value: []byte("2")}}})

	reads := kv.Reads{}
	reads.Record([]byte("k"), []byte("k\x00"))
	err = e.Mutate(ctx, staleSnap, reads, kv.Writes{Puts: []kv.Put{{Key: []byte("other"), Value: []byte("x")}}})
	assert.ErrorIs(t, err, objdberrs.ErrRetry)
}

func testCounterAdjustsMerge(t *testing.T, e kv.Engine) {
	ctx := context.Background()
	mutate(t, e, ctx, kv.Writes{CounterAdjusts: []kv.CounterAdjust{{Key: []byte("n"), Delta: 10}}})
	mutate(t, e, ctx, kv.Writes{CounterAdjusts: []kv.CounterAdjust{{Key: []byte("n"), Delta: -3}}})

	v, ok, err := e.Get(ctx, []byte("n"))
	require.NoError(t, err)
	require.True(t, ok)
	n, _, err := codec.DecodeInt64(v)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
