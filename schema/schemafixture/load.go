package schemafixture

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"objectdb/schema"
)

// LoadFile opens path and loads it as a fixture schema.
func LoadFile(path string) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schemafixture: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a TOML fixture document from r and builds the corresponding
// *schema.Schema. The returned schema is NOT locked down; callers that need
// SchemaID()/CompatibleWith() semantics must call LockDown() themselves,
// same as any other hand-built schema.
func Load(r io.Reader) (*schema.Schema, error) {
	var doc tomlSchema
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("schemafixture: decode: %w", err)
	}
	return newConverter(&doc).convert()
}

type converter struct {
	doc  *tomlSchema
	seen map[string]bool
}

func newConverter(doc *tomlSchema) *converter {
	return &converter{doc: doc, seen: make(map[string]bool, len(doc.ObjectTypes))}
}

func (c *converter) convert() (*schema.Schema, error) {
	s := schema.New()
	for i := range c.doc.ObjectTypes {
		ot, err := c.convertObjectType(&c.doc.ObjectTypes[i])
		if err != nil {
			return nil, fmt.Errorf("schemafixture: object type %q: %w", c.doc.ObjectTypes[i].Name, err)
		}
		s.AddObjectType(ot)
	}
	return s, nil
}

func (c *converter) convertObjectType(tot *tomlObjectType) (*schema.ObjectType, error) {
	if err := c.validateObjectTypeName(tot.Name); err != nil {
		return nil, err
	}

	ot := &schema.ObjectType{Name: tot.Name, StorageID: tot.StorageID}

	seenFields := make(map[string]bool, len(tot.Fields))
	for i := range tot.Fields {
		f, err := convertField(&tot.Fields[i])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", tot.Fields[i].Name, err)
		}
		if seenFields[f.Name] {
			return nil, fmt.Errorf("duplicate field name %q", f.Name)
		}
		seenFields[f.Name] = true
		ot.Fields = append(ot.Fields, f)
	}

	for i := range tot.CompositeIndexes {
		ci := &tot.CompositeIndexes[i]
		ot.CompositeIndexes = append(ot.CompositeIndexes, &schema.CompositeIndex{
			Name:      ci.Name,
			StorageID: ci.StorageID,
			Fields:    append([]string(nil), ci.Fields...),
		})
	}

	return ot, nil
}

func (c *converter) validateObjectTypeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("object type name is empty")
	}
	if c.seen[name] {
		return fmt.Errorf("duplicate object type name %q", name)
	}
	c.seen[name] = true
	return nil
}

func convertField(tf *tomlField) (*schema.Field, error) {
	f := &schema.Field{Name: tf.Name, StorageID: tf.StorageID}

	switch strings.ToLower(tf.Kind) {
	case "simple":
		f.Kind = schema.FieldSimple
		scalar, err := convertScalar(&tomlScalar{
			Encoding: tf.Encoding, Nullable: tf.Nullable,
			EnumIdentifiers: tf.EnumIdentifiers, Reference: tf.Reference,
		})
		if err != nil {
			return nil, err
		}
		f.Simple = &schema.SimpleField{Scalar: scalar, Indexed: tf.Indexed}

	case "counter":
		f.Kind = schema.FieldCounter
		f.Counter = &schema.CounterField{}

	case "list":
		f.Kind = schema.FieldList
		if tf.Element == nil {
			return nil, fmt.Errorf("list field requires an [fields.element] table")
		}
		elem, err := convertScalar(tf.Element)
		if err != nil {
			return nil, err
		}
		f.List = &schema.ListField{Element: elem}

	case "set":
		f.Kind = schema.FieldSet
		if tf.Element == nil {
			return nil, fmt.Errorf("set field requires an [fields.element] table")
		}
		elem, err := convertScalar(tf.Element)
		if err != nil {
			return nil, err
		}
		f.Set = &schema.SetField{Element: elem}

	case "map":
		f.Kind = schema.FieldMap
		if tf.MapKey == nil || tf.MapValue == nil {
			return nil, fmt.Errorf("map field requires [fields.key] and [fields.value] tables")
		}
		key, err := convertScalar(tf.MapKey)
		if err != nil {
			return nil, err
		}
		value, err := convertScalar(tf.MapValue)
		if err != nil {
			return nil, err
		}
		f.Map = &schema.MapField{Key: key, Value: value}

	default:
		return nil, fmt.Errorf("unknown field kind %q", tf.Kind)
	}

	return f, nil
}

func convertScalar(ts *tomlScalar) (schema.Scalar, error) {
	kind, err := convertKind(ts.Encoding)
	if err != nil {
		return schema.Scalar{}, err
	}
	scalar := schema.Scalar{
		Encoding:        kind,
		Nullable:        ts.Nullable,
		EnumIdentifiers: append([]string(nil), ts.EnumIdentifiers...),
	}
	if ts.Reference != nil {
		scalar.Reference = &schema.ReferenceOptions{
			AllowedTypes:  append([]string(nil), ts.Reference.AllowedTypes...),
			ForwardDelete: ts.Reference.ForwardDelete,
			AllowDangling: ts.Reference.AllowDangling,
		}
		policy, err := convertInverseDelete(ts.Reference.InverseDelete)
		if err != nil {
			return schema.Scalar{}, err
		}
		scalar.Reference.InverseDelete = policy
	}
	return scalar, nil
}

func convertKind(encoding string) (schema.Kind, error) {
	switch strings.ToLower(encoding) {
	case "int64":
		return schema.KindInt64, nil
	case "float64":
		return schema.KindFloat64, nil
	case "bool":
		return schema.KindBool, nil
	case "string":
		return schema.KindString, nil
	case "bytes":
		return schema.KindBytes, nil
	case "uuid":
		return schema.KindUUID, nil
	case "enum":
		return schema.KindEnum, nil
	case "reference":
		return schema.KindReference, nil
	default:
		return 0, fmt.Errorf("unknown scalar encoding %q", encoding)
	}
}

func convertInverseDelete(raw string) (schema.InverseDeletePolicy, error) {
	switch strings.ToLower(raw) {
	case "", "none":
		return schema.InverseDeleteNone, nil
	case "unreference":
		return schema.InverseDeleteUnreference, nil
	case "delete_referrer":
		return schema.InverseDeleteDeleteReferrer, nil
	case "exception":
		return schema.InverseDeleteException, nil
	default:
		return 0, fmt.Errorf("unknown inverse_delete policy %q", raw)
	}
}
