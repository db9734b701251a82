package schemaregistry

import (
	"fmt"
	"sort"
	"sync"

	"objectdb/objdberrs"
	"objectdb/schema"
)

// Registry is a version-indexed, thread-safe history of every schema a
// database has been opened with. Version numbers are assigned by Register
// in strictly increasing order; a Schema's SchemaID is independent of the
// version number it happens to be registered under.
type Registry struct {
	mu       sync.RWMutex
	versions map[uint64]*schema.Schema
	latest   uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{versions: make(map[uint64]*schema.Schema)}
}

// Register resolves s to a version number, reusing an existing version
// whose SchemaID matches rather than minting a new one: per spec.md §4.3,
// reopening a database with a structurally unchanged schema (even a
// distinct *schema.Schema value, e.g. freshly parsed) must not allocate a
// second version for the same structure, since every existing object
// would otherwise be spuriously flagged stale on its next read. Only when
// no registered version shares s's SchemaID is a new version minted, one
// past the current latest (or 1, for the first version registered). s
// must already be locked. Every version already registered is checked for
// compatibility with s, not just the immediately preceding one, since a
// storage id retired two versions ago and reused incompatibly today is
// just as dangerous as reusing last version's.
func (r *Registry) Register(s *schema.Schema) (version uint64, err error) {
	if !s.Locked() {
		return 0, fmt.Errorf("schemaregistry: Register requires a locked schema")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.SchemaID()
	for v, prior := range r.versions {
		if prior.SchemaID() == id {
			return v, nil
		}
	}

	for v, prior := range r.versions {
		if err := s.CompatibleWith(prior); err != nil {
			return 0, fmt.Errorf("%w: new schema incompatible with version %d: %v", objdberrs.ErrSchemaMismatch, v, err)
		}
	}

	version = r.latest + 1
	r.versions[version] = s
	r.latest = version
	return version, nil
}

// Resolve returns the schema registered under version, or
// ErrUnknownSchemaVersion.
func (r *Registry) Resolve(version uint64) (*schema.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %d", objdberrs.ErrUnknownSchemaVersion, version)
	}
	return s, nil
}

// Latest returns the highest registered version number and its schema. It
// returns ErrUnknownSchemaVersion if nothing has been registered yet.
func (r *Registry) Latest() (version uint64, s *schema.Schema, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == 0 {
		return 0, nil, fmt.Errorf("%w: registry is empty", objdberrs.ErrUnknownSchemaVersion)
	}
	return r.latest, r.versions[r.latest], nil
}

// Versions returns every registered version number, ascending.
func (r *Registry) Versions() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]uint64, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
