package schema

import (
	"fmt"
)

// Schema is a mutable builder before LockDown and an immutable, shareable
// value after it. Every exported mutator panics if called on a locked
// Schema, matching the teacher's table-builder discipline of refusing
// structural edits once a definition is considered final.
type Schema struct {
	objectTypes []*ObjectType

	locked bool
	byName map[string]*ObjectType
	byID   map[uint64]*ObjectType
	id     [32]byte
}

// New returns an empty, unlocked Schema.
func New() *Schema {
	return &Schema{}
}

// AddObjectType appends ot to the schema. It panics if the schema is locked
// or if the name or storage id is already in use.
func (s *Schema) AddObjectType(ot *ObjectType) {
	if s.locked {
		panic("schema: AddObjectType called on a locked schema")
	}
	for _, existing := range s.objectTypes {
		if existing.Name == ot.Name {
			panic(fmt.Sprintf("schema: duplicate object type name %q", ot.Name))
		}
		if existing.StorageID == ot.StorageID {
			panic(fmt.Sprintf("schema: duplicate object type storage id %d", ot.StorageID))
		}
	}
	s.objectTypes = append(s.objectTypes, ot)
}

// ObjectTypes returns the schema's object types in definition order.
func (s *Schema) ObjectTypes() []*ObjectType {
	return s.objectTypes
}

// FindObjectType returns the object type named name, or nil.
func (s *Schema) FindObjectType(name string) *ObjectType {
	if s.byName != nil {
		return s.byName[name]
	}
	for _, ot := range s.objectTypes {
		if ot.Name == name {
			return ot
		}
	}
	return nil
}

// ObjectTypeByStorageID returns the object type with the given storage id,
// or nil. Only available once the schema is locked, since the lookup table
// is built during LockDown.
func (s *Schema) ObjectTypeByStorageID(id uint64) *ObjectType {
	if s.byID == nil {
		return nil
	}
	return s.byID[id]
}

// Locked reports whether LockDown has completed successfully on s.
func (s *Schema) Locked() bool {
	return s.locked
}

// LockDown validates the schema in full and, if valid, freezes it: no
// further AddObjectType calls are permitted, lookup tables are built, and
// SchemaID becomes available. LockDown is idempotent: calling it again on
// an already-locked schema is a no-op.
func (s *Schema) LockDown() error {
	if s.locked {
		return nil
	}
	if err := s.validate(); err != nil {
		return err
	}

	s.byName = make(map[string]*ObjectType, len(s.objectTypes))
	s.byID = make(map[uint64]*ObjectType, len(s.objectTypes))
	for _, ot := range s.objectTypes {
		s.byName[ot.Name] = ot
		s.byID[ot.StorageID] = ot
	}
	s.id = computeSchemaID(s)
	s.locked = true
	return nil
}

// SchemaID returns the content fingerprint of a locked schema: a SHA-256
// hash over its canonical traversal, independent of the registry version
// number under which it happens to be stored. It panics if the schema is
// not locked.
func (s *Schema) SchemaID() [32]byte {
	if !s.locked {
		panic("schema: SchemaID called before LockDown")
	}
	return s.id
}

// Clone returns a deep, unlocked copy of s, suitable as the starting point
// for the next schema version.
func (s *Schema) Clone() *Schema {
	out := New()
	for _, ot := range s.objectTypes {
		out.objectTypes = append(out.objectTypes, ot.clone())
	}
	return out
}
