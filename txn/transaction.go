package txn

import (
	"context"
	"fmt"

	"objectdb/kv"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/schemaregistry"
	"objectdb/translator"
)

// Transaction is a snapshot-isolated unit of work against an Engine. It
// accumulates reads and writes in memory and applies nothing to the Engine
// until Commit.
type Transaction struct {
	ctx      context.Context
	engine   kv.Engine
	snapshot kv.Snapshot
	registry *schemaregistry.Registry
	schema   *schema.Schema
	version  uint64
	tr       *translator.Translator

	reads   kv.Reads
	pending kv.Writes

	listeners []Listener
	state     state
}

// Begin opens a new Transaction against engine's current state, using the
// registry's latest schema version.
func Begin(ctx context.Context, engine kv.Engine, registry *schemaregistry.Registry, listeners ...Listener) (*Transaction, error) {
	version, s, err := registry.Latest()
	if err != nil {
		return nil, fmt.Errorf("txn: Begin: %w", err)
	}
	snap, err := engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("txn: Begin: taking snapshot: %w", err)
	}
	return &Transaction{
		ctx:       ctx,
		engine:    engine,
		snapshot:  snap,
		registry:  registry,
		schema:    s,
		version:   version,
		tr:        translator.New(s, version),
		listeners: listeners,
		state:     stateActive,
	}, nil
}

// AddListener registers l to receive every subsequent Change this
// transaction produces.
func (t *Transaction) AddListener(l Listener) {
	t.listeners = append(t.listeners, l)
}

// Schema returns the schema version this transaction is reading and writing
// against.
func (t *Transaction) Schema() *schema.Schema {
	return t.schema
}

func (t *Transaction) checkActive() error {
	switch t.state {
	case stateActive:
		return nil
	case statePoisoned:
		return fmt.Errorf("%w: transaction poisoned by a prior Retry, call Rollback and begin a new transaction", objdberrs.ErrStaleTransaction)
	default:
		return fmt.Errorf("%w", objdberrs.ErrStaleTransaction)
	}
}

func (t *Transaction) queueWrites(w kv.Writes) {
	t.pending.Append(w)
}

func (t *Transaction) notify(c Change) {
	for _, l := range t.listeners {
		l.OnObjectChanged(c)
	}
}

func (t *Transaction) findObjectType(typeName string) (*schema.ObjectType, error) {
	ot := t.schema.FindObjectType(typeName)
	if ot == nil {
		return nil, fmt.Errorf("%w: %q", objdberrs.ErrUnknownType, typeName)
	}
	return ot, nil
}
