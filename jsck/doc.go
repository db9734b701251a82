// Package jsck implements the object database's consistency checker and
// repairer. A Scan walks the primary object data, recomputes every derived
// key (simple-field indexes, composite indexes, the schema-version index)
// from scratch, and compares the recomputed set against what is actually
// stored. Every discrepancy becomes an Issue carrying a human description
// and a repair closure; nothing is written to the engine unless the caller
// invokes Issue.Apply (or Report.Repair, which applies every issue).
//
// A Scan never mutates anything on its own: it is safe to run repeatedly,
// and a report-only run and a subsequent repair run can be driven off two
// independent Engine snapshots without jsck itself knowing the difference.
package jsck
