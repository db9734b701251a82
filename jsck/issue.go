package jsck

import (
	"context"

	"objectdb/codec"
	"objectdb/kv"
)

// IssueKind classifies a single inconsistency a Scan found.
type IssueKind string

const (
	// IssueMissingFormatVersion means the on-disk format-version marker is
	// absent. Repair writes the current format version.
	IssueMissingFormatVersion IssueKind = "missing_format_version"
	// IssueFormatVersionMismatch means the stored format-version marker
	// does not match the version this jsck build expects. Repair forces it
	// to the expected value; a real deployment would instead run a format
	// migration before ever reaching this check.
	IssueFormatVersionMismatch IssueKind = "format_version_mismatch"
	// IssueMissingIndexEntry means an object's current field value implies
	// a derived index entry that is not present in the store.
	IssueMissingIndexEntry IssueKind = "missing_index_entry"
	// IssueStaleIndexEntry means a derived index entry exists in the store
	// but no live object's current field value produces it.
	IssueStaleIndexEntry IssueKind = "stale_index_entry"
	// IssueVersionIndexMismatch means an object's primary header names a
	// schema version whose version-index entry is missing or points
	// elsewhere.
	IssueVersionIndexMismatch IssueKind = "version_index_mismatch"
	// IssueDanglingReference means a non-null reference value, held by a
	// field that does not allow dangling references, names an object that
	// does not exist.
	IssueDanglingReference IssueKind = "dangling_reference"
	// IssueStrayKey means a key exists in the engine that belongs to none of
	// the schema's object-type, index, or meta namespaces — e.g. leftover
	// bytes from a removed object type, or external corruption.
	IssueStrayKey IssueKind = "stray_key"
)

// Issue describes one inconsistency found by a Scan. ObjectType and ID are
// populated when the issue is attributable to an object of a known type,
// including a stale index entry whose owning object no longer exists.
// ObjectType is empty for format-version, stray-key, and stray
// version-index issues; ID is zero for the first two of those.
type Issue struct {
	Kind        IssueKind
	Description string
	ObjectType  string
	ID          codec.ObjID

	// Apply performs the repair against engine directly (not through a
	// txn.Transaction — jsck operates below the transaction layer so it
	// can fix the very structures a transaction depends on).
	Apply func(ctx context.Context, engine kv.Engine) error
}

func putIssue(kind IssueKind, desc, typeName string, id codec.ObjID, key, value []byte) Issue {
	return Issue{
		Kind:        kind,
		Description: desc,
		ObjectType:  typeName,
		ID:          id,
		Apply: func(ctx context.Context, engine kv.Engine) error {
			return mutateOne(ctx, engine, kv.Writes{Puts: []kv.Put{{Key: key, Value: value}}})
		},
	}
}

func removeIssue(kind IssueKind, desc, typeName string, id codec.ObjID, key []byte) Issue {
	return Issue{
		Kind:        kind,
		Description: desc,
		ObjectType:  typeName,
		ID:          id,
		Apply: func(ctx context.Context, engine kv.Engine) error {
			return mutateOne(ctx, engine, kv.Writes{Removes: []kv.Remove{{Key: key}}})
		},
	}
}

func mutateOne(ctx context.Context, engine kv.Engine, writes kv.Writes) error {
	snap, err := engine.Snapshot(ctx)
	if err != nil {
		return err
	}
	return engine.Mutate(ctx, snap, kv.Reads{}, writes)
}
