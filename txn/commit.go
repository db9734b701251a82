package txn

import (
	"errors"
	"fmt"

	"objectdb/kv"
	"objectdb/objdberrs"
)

// Commit flattens every pending write into a single Engine.Mutate call. On
// an optimistic conflict (objdberrs.ErrRetry) the transaction is poisoned:
// every further call returns objdberrs.ErrStaleTransaction until Rollback
// is called and a fresh Transaction is begun. Committing a transaction with
// no pending writes is a harmless no-op.
func (t *Transaction) Commit() error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if t.pending.Empty() {
		t.state = stateCommitted
		return nil
	}

	err := t.engine.Mutate(t.ctx, t.snapshot, t.reads, t.pending)
	if err != nil {
		if errors.Is(err, objdberrs.ErrRetry) {
			t.state = statePoisoned
		}
		return fmt.Errorf("txn: Commit: %w", err)
	}
	t.state = stateCommitted
	return nil
}

// Rollback discards every pending write without touching the Engine. It is
// idempotent: calling it on an already rolled-back, committed, or poisoned
// transaction is a no-op.
func (t *Transaction) Rollback() {
	if t.state == stateRolledBack {
		return
	}
	t.pending = kv.Writes{}
	t.reads = kv.Reads{}
	t.state = stateRolledBack
}
