// Package objdberrs defines the fixed error taxonomy shared by every layer
// of the object database core (schema registry, translator, transaction,
// jsck). Call sites wrap one of these sentinels with fmt.Errorf("%w") to add
// context; callers compare with errors.Is.
package objdberrs

import "errors"

var (
	// ErrSchemaMismatch is returned when an incoming schema reuses a storage
	// id already bound to an incompatible definition in another version.
	ErrSchemaMismatch = errors.New("objdb: schema mismatch")

	// ErrUnknownType is returned when a storage id does not name an object
	// type known to the transaction's schema.
	ErrUnknownType = errors.New("objdb: unknown object type")

	// ErrUnknownField is returned when a storage id does not name a field
	// known to the transaction's schema.
	ErrUnknownField = errors.New("objdb: unknown field")

	// ErrDeletedObject is returned when an operation targets an ObjId with
	// no primary key in the current snapshot.
	ErrDeletedObject = errors.New("objdb: object does not exist")

	// ErrInvalidReference is returned when a reference value violates its
	// field's target-type restriction, or points at a non-existent object
	// while the field's policy forbids dangling references.
	ErrInvalidReference = errors.New("objdb: invalid reference")

	// ErrReferencedObject is returned when a delete is blocked by a
	// referrer whose reference field declares inverse-delete=EXCEPTION.
	ErrReferencedObject = errors.New("objdb: object is still referenced")

	// ErrStaleTransaction is returned by every operation on a transaction
	// that has been committed, rolled back, or poisoned by a prior Retry.
	ErrStaleTransaction = errors.New("objdb: stale transaction")

	// ErrRetry is the engine-layer optimistic-conflict indication. It
	// propagates verbatim from Engine.Mutate to the transaction's caller.
	ErrRetry = errors.New("objdb: retry: conflicting write detected")

	// ErrCorruptDatabase is raised when decoding fails at the primary-key
	// level, either lazily by the translator or during a jsck scan.
	ErrCorruptDatabase = errors.New("objdb: corrupt database")

	// ErrUnknownSchemaVersion is returned when a version number does not
	// name a schema the registry has ever recorded.
	ErrUnknownSchemaVersion = errors.New("objdb: unknown schema version")

	// ErrObjectAlreadyExists is returned when CreateObject is called with
	// an id already holding a primary key in the current snapshot.
	ErrObjectAlreadyExists = errors.New("objdb: object already exists")
)
