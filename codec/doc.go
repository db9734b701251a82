// Package codec implements the order-preserving byte encodings that every
// key fragment in the object database is built from. Every Encode* function
// is pure and never fails for a legal value; every Decode* function returns
// the decoded value together with the unconsumed remainder of the input so
// that callers can concatenate several encodings (as layout does for
// composite-index keys) and decode them back component by component.
//
// The single invariant all of these share: lexicographic comparison of two
// encoded byte slices must agree with the natural ordering of the decoded
// values. Round-tripping is exact: Decode(Encode(v)) == v for every legal v.
package codec
