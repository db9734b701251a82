// Package kv defines the ordered key-value contract the object database
// core is built on: Engine, the interface a storage backend implements, and
// Writes/Reads, the plain structs a transaction accumulates its pending
// work into before flattening it to a single Engine.Mutate call.
//
// The Engine interface has exactly one production-quality implementation in
// this module's reach: none. Supplying a durable, pluggable backend (a
// disk-backed B-tree or LSM engine, a replicated store) is explicitly out of
// scope; kv/memkv ships an in-memory Engine for tests only, and kv/kvtest
// ships a conformance suite any future Engine implementation should be run
// against.
package kv
