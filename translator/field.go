package translator

import (
	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
	"objectdb/schema"
)

// writeField returns the writes needed to move one field from its before
// state to its after state: the field (or collection element) sub-keys
// themselves, plus simple-index maintenance for an indexed simple field.
func (tr *Translator) writeField(ot *schema.ObjectType, id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	switch f.Kind {
	case schema.FieldSimple:
		return tr.writeSimpleField(ot, id, f, before, after)
	case schema.FieldCounter:
		return tr.writeCounterField(id, f, before, after)
	case schema.FieldList:
		return tr.writeListField(id, f, before, after)
	case schema.FieldSet:
		return tr.writeSetField(id, f, before, after)
	case schema.FieldMap:
		return tr.writeMapField(id, f, before, after)
	default:
		return kv.Writes{}, nil
	}
}

func (tr *Translator) writeSimpleField(ot *schema.ObjectType, id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	var w kv.Writes
	key := layout.FieldKey(id, f.StorageID)

	afterPresent := after.Simple != nil
	beforePresent := before.Simple != nil

	if !afterPresent {
		if beforePresent {
			w.Removes = append(w.Removes, kv.Remove{Key: key})
		}
	} else {
		encoded, err := Encode(f.Simple.Scalar, *after.Simple)
		if err != nil {
			return kv.Writes{}, err
		}
		w.Puts = append(w.Puts, kv.Put{Key: key, Value: encoded})
	}

	if f.Simple.Indexed {
		indexDelta, err := tr.simpleIndexDelta(f, id, before, after)
		if err != nil {
			return kv.Writes{}, err
		}
		w.Append(indexDelta)
	}

	return w, nil
}

func (tr *Translator) simpleIndexDelta(f *schema.Field, id codec.ObjID, before, after FieldState) (kv.Writes, error) {
	var w kv.Writes

	if before.Simple != nil && !before.Simple.Null {
		encoded, err := Encode(f.Simple.Scalar, *before.Simple)
		if err != nil {
			return kv.Writes{}, err
		}
		if after.Simple == nil || after.Simple.Null || !Equal(f.Simple.Scalar, *before.Simple, *after.Simple) {
			w.Removes = append(w.Removes, kv.Remove{Key: layout.SimpleIndexKey(f.StorageID, encoded, id)})
		}
	}
	if after.Simple != nil && !after.Simple.Null {
		if before.Simple == nil || before.Simple.Null || !Equal(f.Simple.Scalar, *before.Simple, *after.Simple) {
			encoded, err := Encode(f.Simple.Scalar, *after.Simple)
			if err != nil {
				return kv.Writes{}, err
			}
			w.Puts = append(w.Puts, kv.Put{Key: layout.SimpleIndexKey(f.StorageID, encoded, id), Value: nil})
		}
	}
	return w, nil
}

// FieldWriteDelta exposes writeField for schema-upgrade orchestration,
// which migrates one field at a time across schema versions independently
// of any other field.
func (tr *Translator) FieldWriteDelta(ot *schema.ObjectType, id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	return tr.writeField(ot, id, f, before, after)
}

// SimpleIndexDelta exposes simpleIndexDelta for schema-upgrade
// orchestration, which needs to add or remove a simple field's index entry
// on its own when only the field's Indexed flag changed across versions,
// leaving its sub-key untouched.
func (tr *Translator) SimpleIndexDelta(f *schema.Field, id codec.ObjID, before, after FieldState) (kv.Writes, error) {
	return tr.simpleIndexDelta(f, id, before, after)
}

func (tr *Translator) writeCounterField(id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	delta := after.Counter - before.Counter
	if delta == 0 {
		return kv.Writes{}, nil
	}
	return kv.Writes{
		CounterAdjusts: []kv.CounterAdjust{{Key: layout.FieldKey(id, f.StorageID), Delta: delta}},
	}, nil
}
