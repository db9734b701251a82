package txn

import (
	"fmt"

	"objectdb/codec"
	"objectdb/kv"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/translator"
)

// upgradeObject returns the writes needed to move id's on-disk
// representation from storedVersion to the transaction's current schema
// version. Beyond relocating the primary header and version-index entry
// (translator.UpgradeOnRead), it implements spec.md §4.4's union-of-diffs
// upgrade by comparing ot (the object's type under the current schema)
// against the same storage id's definition under storedVersion's schema,
// matching fields across the two by StorageID rather than Name:
//
//   - a field storedVersion's schema had but ot drops has its sub-key, and
//     any index entry it held, removed
//   - a field ot adds is given its scalar's default value; if the field is
//     indexed, that default is reflected in a new index entry, but never as
//     a sub-key, since an absent sub-key already reads back as the default
//   - a field present under both, simple in both, whose Indexed flag
//     changed gets its index entry added or removed; its sub-key, unaffected,
//     is left alone
//
// A composite index naming a field ot just added is completed the same way,
// synthesizing the missing "before" tuple from the object's otherwise-
// current state. A composite index naming a field ot just dropped cannot
// occur: schema validation requires every composite index's fields to exist
// on its own object type.
func (t *Transaction) upgradeObject(ot *schema.ObjectType, id codec.ObjID, storedVersion uint64) (kv.Writes, error) {
	var w kv.Writes

	pointerWrites, _ := t.tr.UpgradeOnRead(id, storedVersion)
	w.Append(pointerWrites)

	oldSchema, err := t.registry.Resolve(storedVersion)
	if err != nil {
		return kv.Writes{}, fmt.Errorf("txn: upgrading %s from schema version %d: %w", id, storedVersion, err)
	}
	oldOT := oldSchema.ObjectTypeByStorageID(ot.StorageID)
	if oldOT == nil {
		return kv.Writes{}, fmt.Errorf("%w: %s: version %d has no object type for storage id %d", objdberrs.ErrCorruptDatabase, id, storedVersion, ot.StorageID)
	}

	oldFields := make(map[uint64]*schema.Field, len(oldOT.Fields))
	for _, f := range oldOT.Fields {
		oldFields[f.StorageID] = f
	}
	newFields := make(map[uint64]*schema.Field, len(ot.Fields))
	for _, f := range ot.Fields {
		newFields[f.StorageID] = f
	}

	for storageID, oldField := range oldFields {
		if _, stillPresent := newFields[storageID]; stillPresent {
			continue
		}
		fs, present, err := t.readField(id, oldField)
		if err != nil {
			return kv.Writes{}, err
		}
		if !present {
			continue
		}
		delta, err := t.tr.FieldWriteDelta(oldOT, id, oldField, fs, translator.FieldState{})
		if err != nil {
			return kv.Writes{}, err
		}
		w.Append(delta)
	}

	addedDefaults := make(map[string]translator.FieldState)

	for storageID, newField := range newFields {
		oldField, existedBefore := oldFields[storageID]

		if !existedBefore {
			if newField.Kind != schema.FieldSimple {
				continue
			}
			def := translator.DefaultValue(newField.Simple.Scalar)
			fs := translator.FieldState{Simple: &def}
			addedDefaults[newField.Name] = fs
			if !newField.Simple.Indexed {
				continue
			}
			delta, err := t.tr.SimpleIndexDelta(newField, id, translator.FieldState{}, fs)
			if err != nil {
				return kv.Writes{}, err
			}
			w.Append(delta)
			continue
		}

		if newField.Kind != schema.FieldSimple || oldField.Kind != schema.FieldSimple {
			continue
		}
		if oldField.Simple.Indexed == newField.Simple.Indexed {
			continue
		}

		fs, present, err := t.readField(id, newField)
		if err != nil {
			return kv.Writes{}, err
		}
		if !present {
			def := translator.DefaultValue(newField.Simple.Scalar)
			fs = translator.FieldState{Simple: &def}
		}
		if newField.Simple.Indexed {
			delta, err := t.tr.SimpleIndexDelta(newField, id, translator.FieldState{}, fs)
			if err != nil {
				return kv.Writes{}, err
			}
			w.Append(delta)
		} else {
			delta, err := t.tr.SimpleIndexDelta(newField, id, fs, translator.FieldState{})
			if err != nil {
				return kv.Writes{}, err
			}
			w.Append(delta)
		}
	}

	if len(addedDefaults) > 0 && len(ot.CompositeIndexes) > 0 {
		current := translator.ObjectState{ID: id, SchemaVersion: t.version, Fields: make(map[string]translator.FieldState, len(ot.Fields))}
		for _, f := range ot.Fields {
			if _, added := addedDefaults[f.Name]; added {
				continue
			}
			fs, present, err := t.readField(id, f)
			if err != nil {
				return kv.Writes{}, err
			}
			if present {
				current.Fields[f.Name] = fs
			}
		}
		after := current.Clone()
		for name, fs := range addedDefaults {
			after.Fields[name] = fs
		}
		delta, err := t.tr.CompositeIndexWriteDelta(ot, id, current, after)
		if err != nil {
			return kv.Writes{}, err
		}
		w.Append(delta)
	}

	return w, nil
}
