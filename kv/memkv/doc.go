// Package memkv is an in-memory kv.Engine backed by a google/btree BTreeG,
// for tests only: it has no durability and no production deployment story
// (the object database core treats Engine as an external contract it
// consumes, not implements). Snapshot isolation is built directly on the
// btree's copy-on-write Clone: taking a Snapshot clones the tree in O(1)
// and never reflects writes committed afterwards, since btree's clone
// shares unmodified nodes and copies only the nodes a later write touches.
package memkv
