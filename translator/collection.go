package translator

import (
	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
	"objectdb/schema"
)

// writeListField diffs before.List against after.List position by position.
// Every position index (not just the inserted or removed tail) is treated
// as its own key, so inserting or removing an element mid-list reshuffles
// every subsequent position's sub-key, matching the list-position ordering
// layout.ListElementKey establishes.
func (tr *Translator) writeListField(id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	var w kv.Writes
	elem := f.List.Element

	maxLen := len(before.List)
	if len(after.List) > maxLen {
		maxLen = len(after.List)
	}

	for pos := 0; pos < maxLen; pos++ {
		key := layout.ListElementKey(id, f.StorageID, uint64(pos))
		switch {
		case pos >= len(after.List):
			w.Removes = append(w.Removes, kv.Remove{Key: key})
		case pos >= len(before.List) || !Equal(elem, before.List[pos], after.List[pos]):
			encoded, err := Encode(elem, after.List[pos])
			if err != nil {
				return kv.Writes{}, err
			}
			w.Puts = append(w.Puts, kv.Put{Key: key, Value: encoded})
		}
	}
	return w, nil
}

// writeSetField diffs before.Set against after.Set by membership: an
// element's own encoding is its sub-key, so adding or removing one element
// never disturbs any other element's key.
func (tr *Translator) writeSetField(id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	var w kv.Writes
	elem := f.Set.Element

	beforeSet, err := encodeSet(elem, before.Set)
	if err != nil {
		return kv.Writes{}, err
	}
	afterSet, err := encodeSet(elem, after.Set)
	if err != nil {
		return kv.Writes{}, err
	}

	for enc := range beforeSet {
		if _, ok := afterSet[enc]; !ok {
			w.Removes = append(w.Removes, kv.Remove{Key: layout.SetElementKey(id, f.StorageID, []byte(enc))})
		}
	}
	for enc := range afterSet {
		if _, ok := beforeSet[enc]; !ok {
			w.Puts = append(w.Puts, kv.Put{Key: layout.SetElementKey(id, f.StorageID, []byte(enc)), Value: nil})
		}
	}
	return w, nil
}

// writeMapField diffs before.Map against after.Map by key: an entry's
// key encoding is its sub-key, so only added, removed, or changed-value
// entries produce writes.
func (tr *Translator) writeMapField(id codec.ObjID, f *schema.Field, before, after FieldState) (kv.Writes, error) {
	var w kv.Writes
	keyScalar, valScalar := f.Map.Key, f.Map.Value

	beforeByKey, err := encodeMapEntries(keyScalar, before.Map)
	if err != nil {
		return kv.Writes{}, err
	}
	afterByKey, err := encodeMapEntries(keyScalar, after.Map)
	if err != nil {
		return kv.Writes{}, err
	}

	for enc := range beforeByKey {
		if _, ok := afterByKey[enc]; !ok {
			w.Removes = append(w.Removes, kv.Remove{Key: layout.MapEntryKey(id, f.StorageID, []byte(enc))})
		}
	}
	for enc, entry := range afterByKey {
		priorEntry, existed := beforeByKey[enc]
		if existed && Equal(valScalar, priorEntry.Value, entry.Value) {
			continue
		}
		encodedValue, err := Encode(valScalar, entry.Value)
		if err != nil {
			return kv.Writes{}, err
		}
		w.Puts = append(w.Puts, kv.Put{Key: layout.MapEntryKey(id, f.StorageID, []byte(enc)), Value: encodedValue})
	}
	return w, nil
}

func encodeSet(elem schema.Scalar, values []Value) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		enc, err := Encode(elem, v)
		if err != nil {
			return nil, err
		}
		out[string(enc)] = struct{}{}
	}
	return out, nil
}

func encodeMapEntries(keyScalar schema.Scalar, entries []MapEntry) (map[string]MapEntry, error) {
	out := make(map[string]MapEntry, len(entries))
	for _, e := range entries {
		enc, err := Encode(keyScalar, e.Key)
		if err != nil {
			return nil, err
		}
		out[string(enc)] = e
	}
	return out, nil
}

// dedupSet collapses duplicate elements (by encoding) from a caller-supplied
// set replacement, keeping the first occurrence of each distinct value.
func dedupSet(elem schema.Scalar, values []Value) []Value {
	seen := make(map[string]struct{}, len(values))
	out := make([]Value, 0, len(values))
	for _, v := range values {
		enc, err := Encode(elem, v)
		if err != nil {
			continue
		}
		if _, ok := seen[string(enc)]; ok {
			continue
		}
		seen[string(enc)] = struct{}{}
		out = append(out, v)
	}
	return out
}
