// Package txn implements Transaction: a snapshot-isolated view over a
// kv.Engine with an in-memory write-set layered on top, reference-policy
// enforcement (forward-delete cascade, inverse-delete unreference/
// delete-referrer/exception), on-read schema-version upgrade, and
// synchronous change notifications. A Transaction is single-goroutine; the
// caller owns serializing access to one Transaction value, the same way
// the underlying kv.Engine serializes access to one Snapshot.
package txn
