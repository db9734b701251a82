package schemafixture

// tomlSchema is the top-level TOML document.
type tomlSchema struct {
	ObjectTypes []tomlObjectType `toml:"object_types"`
}

type tomlObjectType struct {
	Name             string               `toml:"name"`
	StorageID        uint64               `toml:"storage_id"`
	Fields           []tomlField          `toml:"fields"`
	CompositeIndexes []tomlCompositeIndex `toml:"composite_indexes"`
}

type tomlCompositeIndex struct {
	Name      string   `toml:"name"`
	StorageID uint64   `toml:"storage_id"`
	Fields    []string `toml:"fields"`
}

// tomlField describes one field. Kind selects which of the remaining,
// kind-specific groups of attributes apply; unused groups are left zero.
type tomlField struct {
	Name      string `toml:"name"`
	StorageID uint64 `toml:"storage_id"`
	Kind      string `toml:"kind"` // simple | counter | list | set | map

	// Simple-field and collection-element scalar attributes.
	Encoding        string   `toml:"encoding"`
	Nullable        bool     `toml:"nullable"`
	Indexed         bool     `toml:"indexed"`
	EnumIdentifiers []string `toml:"enum_identifiers"`
	Reference       *tomlReference `toml:"reference"`

	// List/set element scalar, map key/value scalars. Each reuses the same
	// shape as the top-level scalar attributes, under its own table.
	Element  *tomlScalar `toml:"element"`
	MapKey   *tomlScalar `toml:"key"`
	MapValue *tomlScalar `toml:"value"`
}

type tomlScalar struct {
	Encoding        string         `toml:"encoding"`
	Nullable        bool           `toml:"nullable"`
	EnumIdentifiers []string       `toml:"enum_identifiers"`
	Reference       *tomlReference `toml:"reference"`
}

type tomlReference struct {
	AllowedTypes  []string `toml:"allowed_types"`
	ForwardDelete bool     `toml:"forward_delete"`
	InverseDelete string   `toml:"inverse_delete"` // none | unreference | delete_referrer | exception
	AllowDangling bool     `toml:"allow_dangling"`
}
