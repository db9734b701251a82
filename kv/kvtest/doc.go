// Package kvtest is a conformance suite any kv.Engine implementation should
// be run against, mirroring the black-box Store-interface test suite other
// kv clients in this codebase's lineage have used to validate independent
// backends against one contract: construct an Engine with a factory
// function, then call Run, a single entry point that exercises gets,
// range reads, snapshot isolation, and optimistic conflict detection as
// ordinary subtests.
package kvtest
