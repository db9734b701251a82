// Package translator computes the key-value deltas a field mutation
// requires: which keys to put, remove, or adjust so that the primary
// object, its indexes, and its collection element sub-keys all reflect the
// new state. It never talks to a kv.Engine itself -- txn owns the
// snapshot and accumulates the Writes a Translator produces -- and it never
// mutates an ObjectState in place, always returning the next state
// alongside the delta, so a transaction can recompute a delta against a
// re-read state after a conflict without aliasing bugs.
package translator
