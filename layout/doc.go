// Package layout assigns byte-key prefixes for every region of the key
// space: the format-version marker, the schema registry, the
// object-version index, per-object primary data, and simple/composite
// field indexes. Every function here is a pure mapping from storage-id
// integers (and, for the version index and primary keys, an ObjID) to a
// key or key-prefix; layout never touches an Engine.
//
// Storage id 0 is reserved for meta keys (format-version, schema registry,
// object-version index); every object type, field, and composite index is
// assigned a storage id of 1 or greater by the schema (see package schema).
package layout
