package txn

import (
	"fmt"

	"objectdb/codec"
	"objectdb/layout"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/translator"
)

// ReadObject returns an object's current field state, or ok=false if it
// does not exist. If the object was last written under an older schema
// version, the on-read upgrade is queued as part of this transaction's
// pending writes before the state is returned.
func (t *Transaction) ReadObject(typeName string, id codec.ObjID) (translator.ObjectState, bool, error) {
	if err := t.checkActive(); err != nil {
		return translator.ObjectState{}, false, err
	}
	ot, err := t.findObjectType(typeName)
	if err != nil {
		return translator.ObjectState{}, false, err
	}
	return t.readObject(ot, id)
}

func (t *Transaction) readObject(ot *schema.ObjectType, id codec.ObjID) (translator.ObjectState, bool, error) {
	header, ok, err := t.get(layout.PrimaryKey(id))
	if err != nil {
		return translator.ObjectState{}, false, err
	}
	if !ok {
		return translator.ObjectState{}, false, nil
	}
	storedVersion, _, err := codec.DecodeUint64(header)
	if err != nil {
		return translator.ObjectState{}, false, fmt.Errorf("%w: decoding primary header for %s: %v", objdberrs.ErrCorruptDatabase, id, err)
	}

	if storedVersion != t.version {
		upgrade, err := t.upgradeObject(ot, id, storedVersion)
		if err != nil {
			return translator.ObjectState{}, false, err
		}
		t.queueWrites(upgrade)
	}

	state := translator.ObjectState{ID: id, SchemaVersion: t.version, Fields: make(map[string]translator.FieldState, len(ot.Fields))}
	for _, f := range ot.Fields {
		fs, present, err := t.readField(id, f)
		if err != nil {
			return translator.ObjectState{}, false, err
		}
		if present {
			state.Fields[f.Name] = fs
		}
	}
	return state, true, nil
}

func (t *Transaction) readField(id codec.ObjID, f *schema.Field) (translator.FieldState, bool, error) {
	switch f.Kind {
	case schema.FieldSimple:
		raw, ok, err := t.get(layout.FieldKey(id, f.StorageID))
		if err != nil || !ok {
			return translator.FieldState{}, ok, err
		}
		v, err := translator.Decode(f.Simple.Scalar, raw)
		if err != nil {
			return translator.FieldState{}, false, err
		}
		return translator.FieldState{Simple: &v}, true, nil

	case schema.FieldCounter:
		raw, ok, err := t.get(layout.FieldKey(id, f.StorageID))
		if err != nil {
			return translator.FieldState{}, false, err
		}
		if !ok {
			return translator.FieldState{Counter: 0}, true, nil
		}
		n, _, err := codec.DecodeInt64(raw)
		if err != nil {
			return translator.FieldState{}, false, err
		}
		return translator.FieldState{Counter: n}, true, nil

	case schema.FieldList:
		prefix := layout.FieldPrefix(id, f.StorageID)
		entries, err := t.getRange(prefix, prefixEnd(prefix))
		if err != nil {
			return translator.FieldState{}, false, err
		}
		values := make([]translator.Value, 0, len(entries))
		for _, e := range entries {
			v, err := translator.Decode(f.List.Element, e.Value)
			if err != nil {
				return translator.FieldState{}, false, err
			}
			values = append(values, v)
		}
		return translator.FieldState{List: values}, true, nil

	case schema.FieldSet:
		prefix := layout.FieldPrefix(id, f.StorageID)
		entries, err := t.getRange(prefix, prefixEnd(prefix))
		if err != nil {
			return translator.FieldState{}, false, err
		}
		values := make([]translator.Value, 0, len(entries))
		for _, e := range entries {
			v, err := translator.Decode(f.Set.Element, e.Key[len(prefix):])
			if err != nil {
				return translator.FieldState{}, false, err
			}
			values = append(values, v)
		}
		return translator.FieldState{Set: values}, true, nil

	case schema.FieldMap:
		prefix := layout.FieldPrefix(id, f.StorageID)
		entries, err := t.getRange(prefix, prefixEnd(prefix))
		if err != nil {
			return translator.FieldState{}, false, err
		}
		pairs := make([]translator.MapEntry, 0, len(entries))
		for _, e := range entries {
			k, err := translator.Decode(f.Map.Key, e.Key[len(prefix):])
			if err != nil {
				return translator.FieldState{}, false, err
			}
			v, err := translator.Decode(f.Map.Value, e.Value)
			if err != nil {
				return translator.FieldState{}, false, err
			}
			pairs = append(pairs, translator.MapEntry{Key: k, Value: v})
		}
		return translator.FieldState{Map: pairs}, true, nil

	default:
		return translator.FieldState{}, false, fmt.Errorf("txn: unknown field kind %s", f.Kind)
	}
}
