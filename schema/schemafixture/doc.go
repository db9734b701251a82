// Package schemafixture loads a test-only schema.Schema from a terse TOML
// document, so tests can describe an object type/field set without
// constructing schema.ObjectType/schema.Field literals by hand. It builds
// the typed structures in one pass, checking names as it goes: an object
// type name may not be empty or repeated, and a field name may not repeat
// within its type. Every other structural invariant is left to
// schema.Schema.LockDown, which callers run themselves.
//
// This is not a revival of any textual schema-definition surface for the
// library itself -- it exists purely so _test.go files have a compact
// fixture format, the same role the teacher's TOML schema parser plays for
// its own tests.
package schemafixture
