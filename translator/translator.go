package translator

import (
	"fmt"

	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
	"objectdb/objdberrs"
	"objectdb/schema"
)

// Translator computes kv.Writes deltas for one schema version's worth of
// object types. A transaction holds a single Translator, for the schema
// version it was begun with; on-read upgrades from older versions go
// through that same Translator.
type Translator struct {
	Schema  *schema.Schema
	Version uint64
}

// New returns a Translator producing writes against s, stamped with
// schema version version.
func New(s *schema.Schema, version uint64) *Translator {
	return &Translator{Schema: s, Version: version}
}

// CreateObject returns the writes needed to bring a brand-new object with
// the given id and initial field state into existence: the primary header,
// its version-index entry, every non-empty field's sub-keys, and every
// index entry its indexed fields and composite indexes require.
func (tr *Translator) CreateObject(ot *schema.ObjectType, id codec.ObjID, initial ObjectState) (kv.Writes, error) {
	var w kv.Writes

	w.Puts = append(w.Puts, kv.Put{Key: layout.PrimaryKey(id), Value: codec.EncodeUint64(tr.Version)})
	w.Puts = append(w.Puts, kv.Put{Key: layout.VersionIndexKey(tr.Version, id), Value: nil})

	for _, f := range ot.Fields {
		fs, ok := initial.Fields[f.Name]
		if !ok {
			continue
		}
		delta, err := tr.writeField(ot, id, f, FieldState{}, fs)
		if err != nil {
			return kv.Writes{}, err
		}
		w.Append(delta)
	}

	ciDelta, err := tr.compositeIndexDeltas(ot, id, ObjectState{Fields: map[string]FieldState{}}, initial)
	if err != nil {
		return kv.Writes{}, err
	}
	w.Append(ciDelta)

	return w, nil
}

// DeleteObject returns the writes needed to remove an object entirely: its
// primary header, version-index entry, every field sub-key current holds,
// and every simple and composite index entry current implies. Callers are
// responsible for reference-policy enforcement (cascade, unreference,
// exception) before calling DeleteObject; the translator only computes the
// mechanical key removals.
func (tr *Translator) DeleteObject(ot *schema.ObjectType, id codec.ObjID, current ObjectState) (kv.Writes, error) {
	var w kv.Writes

	w.Removes = append(w.Removes, kv.Remove{Key: layout.PrimaryKey(id)})
	w.Removes = append(w.Removes, kv.Remove{Key: layout.VersionIndexKey(current.SchemaVersion, id)})

	for _, f := range ot.Fields {
		fs, ok := current.Fields[f.Name]
		if !ok {
			continue
		}
		delta, err := tr.writeField(ot, id, f, fs, FieldState{})
		if err != nil {
			return kv.Writes{}, err
		}
		w.Append(delta)
	}

	ciDelta, err := tr.compositeIndexDeltas(ot, id, current, ObjectState{Fields: map[string]FieldState{}})
	if err != nil {
		return kv.Writes{}, err
	}
	w.Append(ciDelta)

	return w, nil
}

// ApplyFieldMutations returns the next ObjectState and the writes needed to
// move an object from before to that state, applying every mutation in
// order. Mutations naming an unknown field return objdberrs.ErrUnknownField
// wrapped with the field name.
func (tr *Translator) ApplyFieldMutations(ot *schema.ObjectType, id codec.ObjID, before ObjectState, mutations []FieldMutation) (ObjectState, kv.Writes, error) {
	after := before.Clone()
	var w kv.Writes

	for _, m := range mutations {
		f := ot.FindField(m.FieldName)
		if f == nil {
			return ObjectState{}, kv.Writes{}, fmt.Errorf("%w: %q on object type %q", objdberrs.ErrUnknownField, m.FieldName, ot.Name)
		}

		beforeFS := after.Fields[m.FieldName]
		afterFS, err := applyMutation(f, beforeFS, m)
		if err != nil {
			return ObjectState{}, kv.Writes{}, fmt.Errorf("field %q: %w", m.FieldName, err)
		}

		delta, err := tr.writeField(ot, id, f, beforeFS, afterFS)
		if err != nil {
			return ObjectState{}, kv.Writes{}, err
		}
		w.Append(delta)
		after.Fields[m.FieldName] = afterFS
	}

	ciDelta, err := tr.compositeIndexDeltas(ot, id, before, after)
	if err != nil {
		return ObjectState{}, kv.Writes{}, err
	}
	w.Append(ciDelta)

	return after, w, nil
}

func applyMutation(f *schema.Field, before FieldState, m FieldMutation) (FieldState, error) {
	switch f.Kind {
	case schema.FieldSimple:
		if m.SetSimple == nil {
			return before, fmt.Errorf("mutation for simple field must set SetSimple")
		}
		return FieldState{Simple: m.SetSimple}, nil
	case schema.FieldCounter:
		delta := int64(0)
		if m.AdjustCounter != nil {
			delta = *m.AdjustCounter
		}
		return FieldState{Counter: before.Counter + delta}, nil
	case schema.FieldList:
		return FieldState{List: m.SetList}, nil
	case schema.FieldSet:
		return FieldState{Set: dedupSet(f.Set.Element, m.SetSet)}, nil
	case schema.FieldMap:
		return FieldState{Map: m.SetMap}, nil
	default:
		return FieldState{}, fmt.Errorf("unknown field kind %s", f.Kind)
	}
}
