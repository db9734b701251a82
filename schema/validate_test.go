package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsStorageIDZero(t *testing.T) {
	s := New()
	s.AddObjectType(&ObjectType{Name: "X", StorageID: 0})
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsObjectTypeStorageIDBeyond16Bits(t *testing.T) {
	s := New()
	s.AddObjectType(&ObjectType{Name: "X", StorageID: maxObjectTypeStorageID + 1})
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsDuplicateFieldName(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "name", StorageID: 99, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{Encoding: KindString}},
	})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsMismatchedFieldPayload(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{Name: "broken", StorageID: 99, Kind: FieldSimple})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsEnumWithNoIdentifiers(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "status", StorageID: 99, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{Encoding: KindEnum}},
	})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateAcceptsEnumWithIdentifiers(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "status", StorageID: 99, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{Encoding: KindEnum, EnumIdentifiers: []string{"ACTIVE", "INACTIVE"}}},
	})
	s.AddObjectType(ot)
	assert.NoError(t, s.LockDown())
}

func TestValidateRejectsNullableMapKey(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "scores", StorageID: 99, Kind: FieldMap,
		Map: &MapField{
			Key:   Scalar{Encoding: KindString, Nullable: true},
			Value: Scalar{Encoding: KindInt64},
		},
	})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsDanglessNoneInverseDelete(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "friend", StorageID: 99, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{
			Encoding: KindReference,
			Reference: &ReferenceOptions{
				AllowedTypes:  []string{"Person"},
				InverseDelete: InverseDeleteNone,
				AllowDangling: false,
			},
		}},
	})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}

func TestValidateRejectsForwardDeleteWithoutAllowedTypes(t *testing.T) {
	s := New()
	ot := personType()
	ot.Fields = append(ot.Fields, &Field{
		Name: "friend", StorageID: 99, Kind: FieldSimple,
		Simple: &SimpleField{Scalar: Scalar{
			Encoding: KindReference,
			Reference: &ReferenceOptions{
				ForwardDelete: true,
				InverseDelete: InverseDeleteUnreference,
			},
		}},
	})
	s.AddObjectType(ot)
	assert.ErrorIs(t, s.LockDown(), ErrInvalidSchema)
}
