package jsck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectdb/codec"
	"objectdb/jsck"
	"objectdb/kv"
	"objectdb/kv/memkv"
	"objectdb/layout"
	"objectdb/schema"
	"objectdb/schemaregistry"
	"objectdb/txn"
	"objectdb/translator"
)

func personSchema(t *testing.T) (*schema.Schema, uint64, *schemaregistry.Registry) {
	t.Helper()
	s := schema.New()
	s.AddObjectType(&schema.ObjectType{
		Name:      "Person",
		StorageID: 1,
		Fields: []*schema.Field{
			{
				Name: "name", StorageID: 2, Kind: schema.FieldSimple,
				Simple: &schema.SimpleField{Scalar: schema.Scalar{Encoding: schema.KindString}, Indexed: true},
			},
			{
				Name: "age", StorageID: 3, Kind: schema.FieldSimple,
				Simple: &schema.SimpleField{Scalar: schema.Scalar{Encoding: schema.KindInt64}, Indexed: true},
			},
			{
				Name: "best_friend", StorageID: 4, Kind: schema.FieldSimple,
				Simple: &schema.SimpleField{
					Indexed: true,
					Scalar: schema.Scalar{
						Encoding: schema.KindReference,
						Nullable: true,
						Reference: &schema.ReferenceOptions{
							AllowedTypes:  []string{"Person"},
							InverseDelete: schema.InverseDeleteUnreference,
							AllowDangling: false,
						},
					},
				},
			},
		},
		CompositeIndexes: []*schema.CompositeIndex{
			{Name: "name_age", StorageID: 5, Fields: []string{"name", "age"}},
		},
	})
	require.NoError(t, s.LockDown())

	r := schemaregistry.New()
	version, err := r.Register(s)
	require.NoError(t, err)
	return s, version, r
}

func seedAlice(t *testing.T, ctx context.Context, engine kv.Engine, registry *schemaregistry.Registry) codec.ObjID {
	t.Helper()
	id := codec.NewObjID(1, 1)
	tx, err := txn.Begin(ctx, engine, registry)
	require.NoError(t, err)
	require.NoError(t, tx.CreateObject("Person", id, map[string]translator.FieldState{
		"name": {Simple: &translator.Value{Str: "alice"}},
		"age":  {Simple: &translator.Value{Int64: 30}},
	}))
	require.NoError(t, tx.Commit())
	return id
}

func TestScanOnCleanDatabaseFindsNothing(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	seedAlice(t, ctx, engine, registry)

	// a transaction commit never writes the format-version marker, so a
	// freshly-seeded in-memory store will legitimately flag it missing.
	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)

	for _, issue := range report.Issues {
		assert.NotEqual(t, jsck.IssueMissingIndexEntry, issue.Kind)
		assert.NotEqual(t, jsck.IssueStaleIndexEntry, issue.Kind)
		assert.NotEqual(t, jsck.IssueVersionIndexMismatch, issue.Kind)
		assert.NotEqual(t, jsck.IssueDanglingReference, issue.Kind)
		assert.NotEqual(t, jsck.IssueStrayKey, issue.Kind)
	}
}

func TestScanDetectsAndRepairsStrayKeys(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	seedAlice(t, ctx, engine, registry)

	before, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	require.NoError(t, before.Repair(ctx, engine))

	snap := mustSnapshot(ctx, engine)
	const strayCount = 40
	var puts []kv.Put
	for i := 0; i < strayCount; i++ {
		// 0xFE as a leading byte is not a valid codec.EncodeUint64 length
		// prefix (max 8), so it decodes as an error regardless of what
		// follows — guaranteed not to collide with any real storage id.
		key := []byte{0xFE, byte(i), byte(i >> 8)}
		puts = append(puts, kv.Put{Key: key, Value: []byte("stray")})
	}
	require.NoError(t, engine.Mutate(ctx, snap, kv.Reads{}, kv.Writes{Puts: puts}))

	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	strays := 0
	for _, issue := range report.Issues {
		if issue.Kind == jsck.IssueStrayKey {
			strays++
		}
	}
	assert.Equal(t, strayCount, strays)

	require.NoError(t, report.Repair(ctx, engine))
	after, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.False(t, hasIssue(after, jsck.IssueStrayKey))
}

func TestScanRepairsMissingFormatVersion(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	seedAlice(t, ctx, engine, registry)

	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	require.NoError(t, report.Repair(ctx, engine))

	raw, ok, err := mustSnapshot(ctx, engine).Get(ctx, layout.FormatVersionKey())
	require.NoError(t, err)
	require.True(t, ok)
	n, _, err := codec.DecodeUint64(raw)
	require.NoError(t, err)
	assert.Equal(t, jsck.CurrentFormatVersion, n)
}

func TestScanDetectsMissingIndexEntry(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	id := seedAlice(t, ctx, engine, registry)

	nameField := s.FindObjectType("Person").FindField("name")
	encoded, err := translator.Encode(nameField.Simple.Scalar, translator.Value{Str: "alice"})
	require.NoError(t, err)
	indexKey := layout.SimpleIndexKey(nameField.StorageID, encoded, id)

	snap := mustSnapshot(ctx, engine)
	require.NoError(t, engine.Mutate(ctx, snap, kv.Reads{}, kv.Writes{Removes: []kv.Remove{{Key: indexKey}}}))

	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.True(t, hasIssue(report, jsck.IssueMissingIndexEntry))

	require.NoError(t, report.Repair(ctx, engine))
	report2, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.False(t, hasIssue(report2, jsck.IssueMissingIndexEntry))
}

func TestScanDetectsStaleIndexEntry(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	seedAlice(t, ctx, engine, registry)

	nameField := s.FindObjectType("Person").FindField("name")
	ghost := codec.NewObjID(1, 99)
	encoded, err := translator.Encode(nameField.Simple.Scalar, translator.Value{Str: "nobody"})
	require.NoError(t, err)
	strayKey := layout.SimpleIndexKey(nameField.StorageID, encoded, ghost)

	snap := mustSnapshot(ctx, engine)
	require.NoError(t, engine.Mutate(ctx, snap, kv.Reads{}, kv.Writes{Puts: []kv.Put{{Key: strayKey}}}))

	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.True(t, hasIssue(report, jsck.IssueStaleIndexEntry))

	require.NoError(t, report.Repair(ctx, engine))
	report2, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.False(t, hasIssue(report2, jsck.IssueStaleIndexEntry))
}

func TestScanDetectsDanglingReference(t *testing.T) {
	ctx := context.Background()
	engine := memkv.New()
	s, version, registry := personSchema(t)
	alice := seedAlice(t, ctx, engine, registry)
	ghost := codec.NewObjID(1, 42)

	bfField := s.FindObjectType("Person").FindField("best_friend")
	encoded, err := translator.Encode(bfField.Simple.Scalar, translator.Value{ObjID: ghost})
	require.NoError(t, err)
	// written directly against the engine, bypassing txn's reference
	// validation, to simulate a reference that went dangling.
	snap := mustSnapshot(ctx, engine)
	require.NoError(t, engine.Mutate(ctx, snap, kv.Reads{}, kv.Writes{
		Puts: []kv.Put{{Key: layout.FieldKey(alice, bfField.StorageID), Value: encoded}},
	}))

	report, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.True(t, hasIssue(report, jsck.IssueDanglingReference))

	require.NoError(t, report.Repair(ctx, engine))
	report2, err := jsck.Scan(ctx, engine, s, version)
	require.NoError(t, err)
	assert.False(t, hasIssue(report2, jsck.IssueDanglingReference))
}

func mustSnapshot(ctx context.Context, engine kv.Engine) kv.Snapshot {
	snap, err := engine.Snapshot(ctx)
	if err != nil {
		panic(err)
	}
	return snap
}

func hasIssue(r *jsck.Report, kind jsck.IssueKind) bool {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}
