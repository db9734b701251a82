package translator

import (
	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
)

// UpgradeOnRead returns the writes needed to move an object's primary
// header and version-index entry from storedVersion to the Translator's
// current version, and whether any upgrade is needed at all. It only
// relocates the pointer: the field-by-field migration spec.md §4.4
// describes (dropping fields the new schema removed, default-initializing
// and reindexing fields it added, reindexing fields whose Indexed flag
// changed) needs to read the object's prior field state and look up its
// prior schema version, which only a caller holding a kv.Snapshot and a
// schemaregistry.Registry can do; see txn.Transaction's upgrade
// orchestration, which layers that on top of this using
// FieldWriteDelta, SimpleIndexDelta, and CompositeIndexWriteDelta.
func (tr *Translator) UpgradeOnRead(id codec.ObjID, storedVersion uint64) (kv.Writes, bool) {
	if storedVersion == tr.Version {
		return kv.Writes{}, false
	}
	return kv.Writes{
		Puts: []kv.Put{
			{Key: layout.PrimaryKey(id), Value: codec.EncodeUint64(tr.Version)},
			{Key: layout.VersionIndexKey(tr.Version, id), Value: nil},
		},
		Removes: []kv.Remove{
			{Key: layout.VersionIndexKey(storedVersion, id)},
		},
	}, true
}
