// Package schemaregistry tracks the sequence of schema versions a database
// has ever been opened with. It is the one stateful, mutex-guarded registry
// in the core, mirrored on the dialect and introspecter registries of the
// package this module grew out of: reads (resolving a version to its
// Schema) vastly outnumber writes (registering a new version), so both are
// guarded by a single sync.RWMutex rather than a full mutex.
package schemaregistry
