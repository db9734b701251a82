// Package schema represents an immutable description of a database's object
// types and their fields: the set of object types, and for each type its
// field definitions and composite indexes. A Schema is built up with
// AddObjectType calls, validated and frozen with LockDown, and from that
// point on is safe to share across goroutines and transactions.
//
// Field kinds are modeled as a tagged variant (one *SimpleField/
// *CounterField/*ListField/*SetField/*MapField pointer per Field, exactly
// one non-nil) rather than a one-method-per-kind interface hierarchy: the
// translator and jsck packages dispatch on Field.Kind with a single switch,
// mirroring the on-disk taxonomy instead of adding a layer of indirection
// over it.
package schema
