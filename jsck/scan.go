package jsck

import (
	"context"
	"encoding/binary"
	"fmt"

	"objectdb/codec"
	"objectdb/kv"
	"objectdb/layout"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/translator"
)

// CurrentFormatVersion is the on-disk format version this build understands.
const CurrentFormatVersion uint64 = 1

// Report collects every Issue a Scan found, in discovery order.
type Report struct {
	Issues []Issue
}

// Repair applies every issue's fix in order, stopping at the first error.
// A partially-applied Report leaves the engine in a state a subsequent Scan
// can still make sense of: each Issue.Apply is a single, self-contained
// Engine.Mutate.
func (r *Report) Repair(ctx context.Context, engine kv.Engine) error {
	for _, issue := range r.Issues {
		if err := issue.Apply(ctx, engine); err != nil {
			return fmt.Errorf("jsck: repairing %s on %s: %w", issue.Kind, issue.ID, err)
		}
	}
	return nil
}

// CountsByKind summarizes the report by issue kind, for display.
func (r *Report) CountsByKind() map[IssueKind]int {
	counts := make(map[IssueKind]int, len(r.Issues))
	for _, issue := range r.Issues {
		counts[issue.Kind]++
	}
	return counts
}

// Scan walks every object type in s, recomputes every derived key from the
// primary data, and compares it against what the engine actually stores.
// Scan takes its own snapshot and never mutates the engine.
func Scan(ctx context.Context, engine kv.Engine, s *schema.Schema, version uint64) (*Report, error) {
	snap, err := engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("jsck: Scan: taking snapshot: %w", err)
	}
	report := &Report{}

	if err := checkFormatVersion(ctx, snap, report); err != nil {
		return nil, err
	}

	expectedSimpleIndex := make(map[string]bool)
	expectedCompositeIndex := make(map[string]bool)
	expectedVersionIndex := make(map[string]bool)

	for _, ot := range s.ObjectTypes() {
		objects, err := scanObjectType(ctx, snap, ot)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			checkVersionIndex(ctx, snap, ot, obj, report, expectedVersionIndex)
			if err := checkDerivedIndexes(ctx, snap, ot, obj, report, expectedSimpleIndex, expectedCompositeIndex); err != nil {
				return nil, err
			}
			if err := checkReferences(ctx, snap, s, ot, obj, report); err != nil {
				return nil, err
			}
		}
	}

	for _, ot := range s.ObjectTypes() {
		if err := checkStaleSimpleIndexEntries(ctx, snap, ot, expectedSimpleIndex, report); err != nil {
			return nil, err
		}
		if err := checkStaleCompositeIndexEntries(ctx, snap, ot, expectedCompositeIndex, report); err != nil {
			return nil, err
		}
	}
	if err := checkStaleVersionIndexEntries(ctx, snap, version, expectedVersionIndex, report); err != nil {
		return nil, err
	}
	if err := checkStrayKeys(ctx, snap, s, report); err != nil {
		return nil, err
	}

	return report, nil
}

func checkFormatVersion(ctx context.Context, snap kv.Snapshot, report *Report) error {
	key := layout.FormatVersionKey()
	raw, ok, err := snap.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("jsck: checking format version: %w", err)
	}
	expected := codec.EncodeUint64(CurrentFormatVersion)
	if !ok {
		report.Issues = append(report.Issues, putIssue(
			IssueMissingFormatVersion,
			"format version marker is missing",
			"", codec.ObjID{}, key, expected,
		))
		return nil
	}
	if string(raw) != string(expected) {
		report.Issues = append(report.Issues, putIssue(
			IssueFormatVersionMismatch,
			fmt.Sprintf("format version marker does not decode to %d", CurrentFormatVersion),
			"", codec.ObjID{}, key, expected,
		))
	}
	return nil
}

// object is one live object discovered by a primary scan, with its field
// state already decoded from the engine's stored bytes.
type object struct {
	id            codec.ObjID
	storedVersion uint64
	state         translator.ObjectState
}

// scanObjectType enumerates every live object of type ot by finding its
// primary header keys, then decoding each one's current field state
// directly against the snapshot.
func scanObjectType(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType) ([]object, error) {
	typeVarint := codec.EncodeUint64(ot.StorageID)
	headerLen := len(typeVarint) + tailByteWidth
	prefix := layout.ObjectTypePrefix(uint16(ot.StorageID))
	end := prefixEnd(prefix)

	entries, err := snap.GetRange(ctx, prefix, end)
	if err != nil {
		return nil, fmt.Errorf("jsck: scanning object type %q: %w", ot.Name, err)
	}

	var objects []object
	for _, e := range entries {
		if len(e.Key) != headerLen {
			continue // a field or collection-element sub-key, handled once we reach its header
		}
		id, err := objectIDFromHeaderKey(ot.StorageID, e.Key)
		if err != nil {
			return nil, err
		}
		storedVersion, _, err := codec.DecodeUint64(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding primary header for %s: %v", objdberrs.ErrCorruptDatabase, id, err)
		}
		state, err := readObjectState(ctx, snap, ot, id)
		if err != nil {
			return nil, err
		}
		objects = append(objects, object{id: id, storedVersion: storedVersion, state: state})
	}
	return objects, nil
}

// tailByteWidth is the number of bytes layout.PrimaryKey appends after the
// type-storage-id varint, mirroring layout's unexported tailBytes constant.
const tailByteWidth = 6

func objectIDFromHeaderKey(typeStorageID uint64, key []byte) (codec.ObjID, error) {
	typeVarint := codec.EncodeUint64(typeStorageID)
	if len(key) != len(typeVarint)+tailByteWidth {
		return codec.ObjID{}, fmt.Errorf("jsck: malformed primary header key for type %d", typeStorageID)
	}
	var buf [8]byte
	copy(buf[8-tailByteWidth:], key[len(typeVarint):])
	tail := binary.BigEndian.Uint64(buf[:])
	return codec.NewObjID(uint16(typeStorageID), tail), nil
}

func readObjectState(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType, id codec.ObjID) (translator.ObjectState, error) {
	state := translator.ObjectState{ID: id, Fields: make(map[string]translator.FieldState, len(ot.Fields))}
	for _, f := range ot.Fields {
		fs, present, err := readFieldState(ctx, snap, id, f)
		if err != nil {
			return translator.ObjectState{}, err
		}
		if present {
			state.Fields[f.Name] = fs
		}
	}
	return state, nil
}

func readFieldState(ctx context.Context, snap kv.Snapshot, id codec.ObjID, f *schema.Field) (translator.FieldState, bool, error) {
	switch f.Kind {
	case schema.FieldSimple:
		raw, ok, err := snap.Get(ctx, layout.FieldKey(id, f.StorageID))
		if err != nil || !ok {
			return translator.FieldState{}, ok, err
		}
		v, err := translator.Decode(f.Simple.Scalar, raw)
		if err != nil {
			return translator.FieldState{}, false, err
		}
		return translator.FieldState{Simple: &v}, true, nil

	case schema.FieldCounter:
		raw, ok, err := snap.Get(ctx, layout.FieldKey(id, f.StorageID))
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
		entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
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
		entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
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
		entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
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
		return translator.FieldState{}, false, fmt.Errorf("jsck: unknown field kind %s", f.Kind)
	}
}

// prefixEnd returns the smallest key sorting after every key with the given
// prefix, or nil (meaning unbounded) if prefix is empty or all 0xFF.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func checkVersionIndex(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType, obj object, report *Report, expected map[string]bool) {
	key := layout.VersionIndexKey(obj.storedVersion, obj.id)
	expected[string(key)] = true
	_, ok, err := snap.Get(ctx, key)
	if err != nil || ok {
		return
	}
	report.Issues = append(report.Issues, putIssue(
		IssueVersionIndexMismatch,
		fmt.Sprintf("object %s is on schema version %d but has no version-index entry", obj.id, obj.storedVersion),
		ot.Name, obj.id, key, nil,
	))
}

func checkDerivedIndexes(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType, obj object, report *Report, expectedSimple, expectedComposite map[string]bool) error {
	for _, f := range ot.Fields {
		if f.Kind != schema.FieldSimple || !f.Simple.Indexed {
			continue
		}
		fs, ok := obj.state.Fields[f.Name]
		if !ok || fs.Simple == nil || fs.Simple.Null {
			continue
		}
		encoded, err := translator.Encode(f.Simple.Scalar, *fs.Simple)
		if err != nil {
			return err
		}
		key := layout.SimpleIndexKey(f.StorageID, encoded, obj.id)
		expectedSimple[string(key)] = true
		if _, ok, err := snap.Get(ctx, key); err != nil {
			return err
		} else if !ok {
			report.Issues = append(report.Issues, putIssue(
				IssueMissingIndexEntry,
				fmt.Sprintf("object %s field %q is missing its index entry", obj.id, f.Name),
				ot.Name, obj.id, key, nil,
			))
		}
	}

	for _, ci := range ot.CompositeIndexes {
		values, complete, err := compositeValuesOf(ot, ci, obj.state)
		if err != nil {
			return err
		}
		if !complete {
			continue
		}
		key := layout.CompositeIndexKey(ci.StorageID, values, obj.id)
		expectedComposite[string(key)] = true
		if _, ok, err := snap.Get(ctx, key); err != nil {
			return err
		} else if !ok {
			report.Issues = append(report.Issues, putIssue(
				IssueMissingIndexEntry,
				fmt.Sprintf("object %s is missing its %q composite index entry", obj.id, ci.Name),
				ot.Name, obj.id, key, nil,
			))
		}
	}
	return nil
}

func compositeValuesOf(ot *schema.ObjectType, ci *schema.CompositeIndex, state translator.ObjectState) (values [][]byte, complete bool, err error) {
	values = make([][]byte, 0, len(ci.Fields))
	for _, name := range ci.Fields {
		f := ot.FindField(name)
		fs, ok := state.Fields[name]
		if !ok || fs.Simple == nil || fs.Simple.Null {
			return nil, false, nil
		}
		encoded, err := translator.Encode(f.Simple.Scalar, *fs.Simple)
		if err != nil {
			return nil, false, err
		}
		values = append(values, encoded)
	}
	return values, true, nil
}

func checkStaleSimpleIndexEntries(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType, expected map[string]bool, report *Report) error {
	for _, f := range ot.Fields {
		if f.Kind != schema.FieldSimple || !f.Simple.Indexed {
			continue
		}
		prefix := layout.SimpleIndexPrefix(f.StorageID)
		entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
		if err != nil {
			return fmt.Errorf("jsck: scanning index for field %q: %w", f.Name, err)
		}
		for _, e := range entries {
			if expected[string(e.Key)] {
				continue
			}
			_, id, err := layout.SplitIndexKeyObjID(e.Key)
			if err != nil {
				return err
			}
			report.Issues = append(report.Issues, removeIssue(
				IssueStaleIndexEntry,
				fmt.Sprintf("stray index entry for field %q referencing %s", f.Name, id),
				ot.Name, id, e.Key,
			))
		}
	}
	return nil
}

func checkStaleCompositeIndexEntries(ctx context.Context, snap kv.Snapshot, ot *schema.ObjectType, expected map[string]bool, report *Report) error {
	for _, ci := range ot.CompositeIndexes {
		prefix := layout.CompositeIndexPrefix(ci.StorageID)
		entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
		if err != nil {
			return fmt.Errorf("jsck: scanning composite index %q: %w", ci.Name, err)
		}
		for _, e := range entries {
			if expected[string(e.Key)] {
				continue
			}
			_, id, err := layout.SplitIndexKeyObjID(e.Key)
			if err != nil {
				return err
			}
			report.Issues = append(report.Issues, removeIssue(
				IssueStaleIndexEntry,
				fmt.Sprintf("stray composite index entry for %q referencing %s", ci.Name, id),
				ot.Name, id, e.Key,
			))
		}
	}
	return nil
}

func checkStaleVersionIndexEntries(ctx context.Context, snap kv.Snapshot, version uint64, expected map[string]bool, report *Report) error {
	prefix := layout.VersionIndexPrefix(version)
	entries, err := snap.GetRange(ctx, prefix, prefixEnd(prefix))
	if err != nil {
		return fmt.Errorf("jsck: scanning version index for version %d: %w", version, err)
	}
	for _, e := range entries {
		if expected[string(e.Key)] {
			continue
		}
		id, _, err := codec.DecodeObjID(e.Key[len(prefix):])
		if err != nil {
			return err
		}
		report.Issues = append(report.Issues, removeIssue(
			IssueVersionIndexMismatch,
			fmt.Sprintf("stray version-index entry for %s under version %d", id, version),
			"", id, e.Key,
		))
	}
	return nil
}

// checkStrayKeys walks the entire keyspace and flags every key whose
// leading varint names neither the meta namespace (0) nor any object type,
// indexed field, or composite index's storage id. Storage ids are globally
// unique across a schema (schema.validateStorageIDUniqueness), so a key's
// leading varint alone identifies which namespace, if any, it belongs to.
func checkStrayKeys(ctx context.Context, snap kv.Snapshot, s *schema.Schema, report *Report) error {
	known := map[uint64]bool{0: true}
	for _, ot := range s.ObjectTypes() {
		known[ot.StorageID] = true
		for _, f := range ot.Fields {
			if f.Kind == schema.FieldSimple && f.Simple.Indexed {
				known[f.StorageID] = true
			}
		}
		for _, ci := range ot.CompositeIndexes {
			known[ci.StorageID] = true
		}
	}

	entries, err := snap.GetRange(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("jsck: scanning the full keyspace for stray keys: %w", err)
	}
	for _, e := range entries {
		if layout.IsMetaKey(e.Key) {
			continue
		}
		namespace, _, err := codec.DecodeUint64(e.Key)
		if err != nil || !known[namespace] {
			report.Issues = append(report.Issues, removeIssue(
				IssueStrayKey,
				fmt.Sprintf("key %x belongs to no known namespace", e.Key),
				"", codec.ObjID{}, e.Key,
			))
		}
	}
	return nil
}

func checkReferences(ctx context.Context, snap kv.Snapshot, s *schema.Schema, ot *schema.ObjectType, obj object, report *Report) error {
	for _, f := range ot.Fields {
		if !f.IsReference() {
			continue
		}
		fs, ok := obj.state.Fields[f.Name]
		if !ok {
			continue
		}
		for _, entry := range referenceEntriesOf(f, fs) {
			if entry.Value.Null {
				continue
			}
			if entry.Scalar.Reference.AllowDangling {
				continue
			}
			_, exists, err := snap.Get(ctx, layout.PrimaryKey(entry.Value.ObjID))
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			report.Issues = append(report.Issues, danglingReferenceIssue(ot, obj, f, entry.Value.ObjID))
		}
	}
	return nil
}

// referenceEntry pairs a single reference value with the scalar describing
// how it is encoded, since a map field's key and value may each
// independently be a reference with its own ReferenceOptions.
type referenceEntry struct {
	Value  translator.Value
	Scalar schema.Scalar
}

func referenceEntriesOf(f *schema.Field, fs translator.FieldState) []referenceEntry {
	switch f.Kind {
	case schema.FieldSimple:
		if f.Simple.Encoding != schema.KindReference || fs.Simple == nil {
			return nil
		}
		return []referenceEntry{{Value: *fs.Simple, Scalar: f.Simple.Scalar}}
	case schema.FieldList:
		if f.List.Element.Encoding != schema.KindReference {
			return nil
		}
		out := make([]referenceEntry, len(fs.List))
		for i, v := range fs.List {
			out[i] = referenceEntry{Value: v, Scalar: f.List.Element}
		}
		return out
	case schema.FieldSet:
		if f.Set.Element.Encoding != schema.KindReference {
			return nil
		}
		out := make([]referenceEntry, len(fs.Set))
		for i, v := range fs.Set {
			out[i] = referenceEntry{Value: v, Scalar: f.Set.Element}
		}
		return out
	case schema.FieldMap:
		var out []referenceEntry
		if f.Map.Key.Encoding == schema.KindReference {
			for _, e := range fs.Map {
				out = append(out, referenceEntry{Value: e.Key, Scalar: f.Map.Key})
			}
		}
		if f.Map.Value.Encoding == schema.KindReference {
			for _, e := range fs.Map {
				out = append(out, referenceEntry{Value: e.Value, Scalar: f.Map.Value})
			}
		}
		return out
	default:
		return nil
	}
}

// danglingReferenceIssue builds the repair for a reference field that names
// a target that no longer exists. A simple, nullable field can be repaired
// automatically by nulling it; anything else (a non-nullable simple field,
// or a collection element, which would need a full list-position reshuffle
// to remove cleanly) is reported without an automatic fix.
func danglingReferenceIssue(ot *schema.ObjectType, obj object, f *schema.Field, target codec.ObjID) Issue {
	desc := fmt.Sprintf("object %s field %q references missing object %s", obj.id, f.Name, target)
	if f.Kind == schema.FieldSimple && f.Simple.Nullable {
		key := layout.FieldKey(obj.id, f.StorageID)
		nullValue, _ := translator.Encode(f.Simple.Scalar, translator.Value{Null: true})
		return putIssue(IssueDanglingReference, desc, ot.Name, obj.id, key, nullValue)
	}
	return Issue{
		Kind:        IssueDanglingReference,
		Description: desc,
		ObjectType:  ot.Name,
		ID:          obj.id,
		Apply: func(ctx context.Context, engine kv.Engine) error {
			return fmt.Errorf("jsck: field %q has no automatic repair for a dangling reference; fix it through a transaction", f.Name)
		},
	}
}
