package txn

import (
	"fmt"

	"objectdb/codec"
	"objectdb/layout"
	"objectdb/objdberrs"
	"objectdb/schema"
	"objectdb/translator"
)

type workItem struct {
	typeName string
	id       codec.ObjID
}

// DeleteObject removes an object, enforcing every reference field's policy
// along the way: fields with ForwardDelete cascade the delete to whatever
// they point at, and every other object type's field that references this
// object applies its own InverseDelete policy (unreference the field,
// cascade the delete to the referrer, or abort with
// objdberrs.ErrReferencedObject). A visited set keyed by object id prevents
// revisiting the same object twice, which both bounds the work and makes
// reference cycles safe. If the delete fails, the pending write set is
// restored to what it was before the call.
func (t *Transaction) DeleteObject(typeName string, id codec.ObjID) (err error) {
	if err := t.checkActive(); err != nil {
		return err
	}
	if _, err := t.findObjectType(typeName); err != nil {
		return err
	}

	saved := t.pending
	defer func() {
		if err != nil {
			t.pending = saved
		}
	}()

	visited := make(map[codec.ObjID]bool)
	worklist := []workItem{{typeName: typeName, id: id}}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]
		if visited[item.id] {
			continue
		}
		visited[item.id] = true

		ot, err := t.findObjectType(item.typeName)
		if err != nil {
			return err
		}
		state, exists, err := t.readObject(ot, item.id)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}

		more, err := t.enforceInverseDelete(ot, item.id)
		if err != nil {
			return err
		}
		worklist = append(worklist, more...)

		writes, err := t.tr.DeleteObject(ot, item.id, state)
		if err != nil {
			return err
		}
		t.queueWrites(writes)
		t.notify(Change{Kind: ChangeDeleted, ObjectType: item.typeName, ID: item.id})

		worklist = append(worklist, t.forwardDeleteTargets(ot, state)...)
	}
	return nil
}

// enforceInverseDelete finds every referrer of id across the whole schema
// and applies that referrer field's InverseDelete policy. It returns
// additional work items for referrers whose policy is delete-referrer.
func (t *Transaction) enforceInverseDelete(targetOT *schema.ObjectType, id codec.ObjID) ([]workItem, error) {
	var more []workItem

	for _, ownerOT := range t.schema.ObjectTypes() {
		for _, f := range ownerOT.Fields {
			if f.Kind != schema.FieldSimple || f.Simple.Encoding != schema.KindReference {
				continue
			}
			ref := f.Simple.Reference
			if ref.InverseDelete == schema.InverseDeleteNone {
				continue
			}
			if len(ref.AllowedTypes) > 0 && !containsName(ref.AllowedTypes, targetOT.Name) {
				continue
			}

			referrers, err := t.findReferrers(f, id)
			if err != nil {
				return nil, err
			}
			for _, referrerID := range referrers {
				switch ref.InverseDelete {
				case schema.InverseDeleteException:
					return nil, fmt.Errorf("%w: %s field %q still references %s", objdberrs.ErrReferencedObject, ownerOT.Name, f.Name, id)
				case schema.InverseDeleteUnreference:
					if err := t.clearReference(ownerOT, referrerID, f); err != nil {
						return nil, err
					}
				case schema.InverseDeleteDeleteReferrer:
					more = append(more, workItem{typeName: ownerOT.Name, id: referrerID})
				}
			}
		}
	}
	return more, nil
}

// findReferrers returns every object id holding a reference to target
// through field f, via f's simple-index entries (schema validation requires
// every InverseDelete-bearing reference field to be indexed).
func (t *Transaction) findReferrers(f *schema.Field, target codec.ObjID) ([]codec.ObjID, error) {
	encodedValue, err := translator.Encode(f.Simple.Scalar, translator.Value{ObjID: target})
	if err != nil {
		return nil, err
	}
	prefix := layout.SimpleIndexValuePrefix(f.StorageID, encodedValue)
	entries, err := t.getRange(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	ids := make([]codec.ObjID, 0, len(entries))
	for _, e := range entries {
		_, id, err := layout.SplitIndexKeyObjID(e.Key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// clearReference nulls out a nullable reference field on referrerID, the
// unreference policy's effect. Schema validation does not require a field
// declaring InverseDeleteUnreference to be nullable; for a non-nullable
// field this returns objdberrs.ErrInvalidReference and writes nothing.
func (t *Transaction) clearReference(ownerOT *schema.ObjectType, referrerID codec.ObjID, f *schema.Field) error {
	if !f.Simple.Nullable {
		return fmt.Errorf("%w: field %q has inverse-delete unreference but is not nullable", objdberrs.ErrInvalidReference, f.Name)
	}
	before, exists, err := t.readObject(ownerOT, referrerID)
	if err != nil || !exists {
		return err
	}
	null := translator.Value{Null: true}
	_, writes, err := t.tr.ApplyFieldMutations(ownerOT, referrerID, before, []translator.FieldMutation{
		{FieldName: f.Name, SetSimple: &null},
	})
	if err != nil {
		return err
	}
	t.queueWrites(writes)
	t.notify(Change{Kind: ChangeUpdated, ObjectType: ownerOT.Name, ID: referrerID})
	return nil
}

// forwardDeleteTargets returns every object a just-deleted object's
// ForwardDelete reference fields point at. A map field's key and value are
// checked independently, since either may carry its own ForwardDelete
// setting.
func (t *Transaction) forwardDeleteTargets(ot *schema.ObjectType, state translator.ObjectState) []workItem {
	var items []workItem
	for _, f := range ot.Fields {
		if !f.IsReference() {
			continue
		}
		fs, ok := state.Fields[f.Name]
		if !ok {
			continue
		}
		for _, entry := range referenceEntries(f, fs) {
			if entry.Value.Null || entry.Scalar.Reference == nil || !entry.Scalar.Reference.ForwardDelete {
				continue
			}
			targetOT := t.schema.ObjectTypeByStorageID(uint64(entry.Value.ObjID.TypeID()))
			if targetOT == nil {
				continue
			}
			items = append(items, workItem{typeName: targetOT.Name, id: entry.Value.ObjID})
		}
	}
	return items
}
