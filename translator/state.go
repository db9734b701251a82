package translator

import "objectdb/codec"

// FieldState is the current value of one field, tagged the same way as
// schema.Field. A list field's elements are in ascending list position. A
// set or map field read back from storage is in ascending encoded-key
// order; one returned by ApplyFieldMutations keeps the order the mutation
// supplied. They are not snapshots of every key ever written, since
// removed elements have no sub-key to read back.
type FieldState struct {
	Simple  *Value
	Counter int64
	List    []Value
	Set     []Value
	Map     []MapEntry
}

// MapEntry is one key/value pair of a map field's current state.
type MapEntry struct {
	Key   Value
	Value Value
}

// ObjectState is the full current state of one object, as read from (or
// about to be written to) the primary key space.
type ObjectState struct {
	ID            codec.ObjID
	SchemaVersion uint64
	Fields        map[string]FieldState
}

// Clone returns a deep copy, so callers can compute a mutation's "after"
// state without aliasing the "before" state's slices.
func (s ObjectState) Clone() ObjectState {
	out := ObjectState{ID: s.ID, SchemaVersion: s.SchemaVersion, Fields: make(map[string]FieldState, len(s.Fields))}
	for name, fs := range s.Fields {
		clone := FieldState{Counter: fs.Counter}
		if fs.Simple != nil {
			v := *fs.Simple
			clone.Simple = &v
		}
		clone.List = append(clone.List, fs.List...)
		clone.Set = append(clone.Set, fs.Set...)
		clone.Map = append(clone.Map, fs.Map...)
		out.Fields[name] = clone
	}
	return out
}
