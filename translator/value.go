package translator

import (
	"fmt"

	"github.com/google/uuid"

	"objectdb/codec"
	"objectdb/schema"
)

// Value is a single scalar field, list/set element, or map key/value,
// tagged by the schema.Kind it was declared with.
type Value struct {
	Null bool

	Int64   int64
	Float64 float64
	Bool    bool
	Str     string
	Bytes   []byte
	UUID    uuid.UUID
	Enum    string
	ObjID   codec.ObjID
}

// Encode renders v in the order-preserving codec encoding sc describes,
// including sc's Nullable wrapper.
func Encode(sc schema.Scalar, v Value) ([]byte, error) {
	if v.Null {
		if !sc.Nullable {
			return nil, fmt.Errorf("translator: null value for non-nullable field")
		}
		return codec.EncodeNullable(true, nil), nil
	}

	var inner []byte
	switch sc.Encoding {
	case schema.KindInt64:
		inner = codec.EncodeInt64(v.Int64)
	case schema.KindFloat64:
		inner = codec.EncodeFloat64(v.Float64)
	case schema.KindBool:
		inner = codec.EncodeBool(v.Bool)
	case schema.KindString:
		inner = codec.EncodeString(v.Str)
	case schema.KindBytes:
		inner = codec.EncodeBytes(v.Bytes)
	case schema.KindUUID:
		inner = codec.EncodeUUID(v.UUID)
	case schema.KindEnum:
		inner = codec.EncodeString(v.Enum)
	case schema.KindReference:
		inner = codec.EncodeObjID(v.ObjID)
	default:
		return nil, fmt.Errorf("translator: unknown scalar encoding %s", sc.Encoding)
	}
	if sc.Nullable {
		return codec.EncodeNullable(false, inner), nil
	}
	return inner, nil
}

// Decode parses the bytes Encode would have produced for sc.
func Decode(sc schema.Scalar, b []byte) (Value, error) {
	rest := b
	if sc.Nullable {
		isNull, r, err := codec.DecodeNullable(rest)
		if err != nil {
			return Value{}, err
		}
		rest = r
		if isNull {
			return Value{Null: true}, nil
		}
	}

	switch sc.Encoding {
	case schema.KindInt64:
		n, _, err := codec.DecodeInt64(rest)
		return Value{Int64: n}, err
	case schema.KindFloat64:
		f, _, err := codec.DecodeFloat64(rest)
		return Value{Float64: f}, err
	case schema.KindBool:
		bo, _, err := codec.DecodeBool(rest)
		return Value{Bool: bo}, err
	case schema.KindString:
		s, _, err := codec.DecodeString(rest)
		return Value{Str: s}, err
	case schema.KindBytes:
		bs, _, err := codec.DecodeBytes(rest)
		return Value{Bytes: bs}, err
	case schema.KindUUID:
		u, _, err := codec.DecodeUUID(rest)
		return Value{UUID: u}, err
	case schema.KindEnum:
		s, _, err := codec.DecodeString(rest)
		return Value{Enum: s}, err
	case schema.KindReference:
		id, _, err := codec.DecodeObjID(rest)
		return Value{ObjID: id}, err
	default:
		return Value{}, fmt.Errorf("translator: unknown scalar encoding %s", sc.Encoding)
	}
}

// DefaultValue returns the value a field takes on when its sub-key has
// never been written: Null for a nullable scalar, the zero value of sc's
// Go representation otherwise. Schema-upgrade default-initialization
// (spec.md §4.4) uses this for fields a newer schema adds, so that an
// index entry reflecting the default can be written without ever writing
// the field's own sub-key.
func DefaultValue(sc schema.Scalar) Value {
	if sc.Nullable {
		return Value{Null: true}
	}
	return Value{}
}

// Equal reports whether a and b encode identically under sc.
func Equal(sc schema.Scalar, a, b Value) bool {
	ae, aerr := Encode(sc, a)
	be, berr := Encode(sc, b)
	if aerr != nil || berr != nil {
		return false
	}
	return string(ae) == string(be)
}
