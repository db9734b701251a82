package kv

import "context"

// KeyValue is one entry returned by a range read.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Snapshot is a read-only, point-in-time view of an Engine's key space. All
// reads a transaction performs go through a Snapshot so that they observe a
// single consistent state regardless of concurrent writers.
type Snapshot interface {
	// Get returns the value stored at key, or ok=false if key is absent.
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)
	// GetRange returns every entry with a key in [start, end), ascending.
	GetRange(ctx context.Context, start, end []byte) ([]KeyValue, error)
}

// Engine is the ordered key-value store the object database core is built
// on. Implementations must provide snapshot isolation: a Snapshot taken at
// time T never observes writes committed after T, and Mutate succeeds only
// if nothing the transaction read has changed since its snapshot was taken.
type Engine interface {
	// Get reads a single key directly against current committed state.
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)
	// GetRange reads every entry in [start, end) directly against current
	// committed state.
	GetRange(ctx context.Context, start, end []byte) ([]KeyValue, error)

	// Snapshot takes a consistent, point-in-time read view.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Mutate atomically applies writes, provided no key or range named in
	// reads has changed since snapshot was taken. On conflict it returns
	// objdberrs.ErrRetry and applies nothing.
	Mutate(ctx context.Context, snapshot Snapshot, reads Reads, writes Writes) error
}
