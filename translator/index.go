package translator

import (
	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
	"objectdb/schema"
)

// compositeIndexDeltas recomputes every composite index entry affected by
// moving an object from before to after. A composite index's key depends on
// every one of its component fields at once, so any change to any one
// component requires removing the old tuple key and adding the new one --
// there is no way to patch a single component in place.
func (tr *Translator) compositeIndexDeltas(ot *schema.ObjectType, id codec.ObjID, before, after ObjectState) (kv.Writes, error) {
	var w kv.Writes

	for _, ci := range ot.CompositeIndexes {
		beforeValues, beforeComplete, err := compositeValues(ot, ci, before)
		if err != nil {
			return kv.Writes{}, err
		}
		afterValues, afterComplete, err := compositeValues(ot, ci, after)
		if err != nil {
			return kv.Writes{}, err
		}

		if beforeComplete && (!afterComplete || !sameTuple(beforeValues, afterValues)) {
			w.Removes = append(w.Removes, kv.Remove{Key: layout.CompositeIndexKey(ci.StorageID, beforeValues, id)})
		}
		if afterComplete && (!beforeComplete || !sameTuple(beforeValues, afterValues)) {
			w.Puts = append(w.Puts, kv.Put{Key: layout.CompositeIndexKey(ci.StorageID, afterValues, id), Value: nil})
		}
	}
	return w, nil
}

// CompositeIndexWriteDelta exposes compositeIndexDeltas for schema-upgrade
// orchestration, which needs to complete composite index entries that
// depend on a field the new schema adds.
func (tr *Translator) CompositeIndexWriteDelta(ot *schema.ObjectType, id codec.ObjID, before, after ObjectState) (kv.Writes, error) {
	return tr.compositeIndexDeltas(ot, id, before, after)
}

// compositeValues encodes each component field's current value in index
// order. complete is false if any component is absent or null, since a
// composite index entry only exists while every component is present --
// mirroring how a simple-field index entry only exists while its field is
// non-null.
func compositeValues(ot *schema.ObjectType, ci *schema.CompositeIndex, state ObjectState) (values [][]byte, complete bool, err error) {
	values = make([][]byte, 0, len(ci.Fields))
	for _, fieldName := range ci.Fields {
		f := ot.FindField(fieldName)
		fs, ok := state.Fields[fieldName]
		if !ok || fs.Simple == nil || fs.Simple.Null {
			return nil, false, nil
		}
		encoded, err := Encode(f.Simple.Scalar, *fs.Simple)
		if err != nil {
			return nil, false, err
		}
		values = append(values, encoded)
	}
	return values, true, nil
}

func sameTuple(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}
