package translator

// FieldMutation is a request to change one field of one object. Exactly one
// of the Set* members is populated, matching the target field's Kind.
// Collection fields are replaced wholesale rather than patched element by
// element: the translator diffs SetList/SetSet/SetMap against the field's
// current state itself, so the transaction layer and schema-upgrade
// migration share one diffing path.
type FieldMutation struct {
	FieldName string

	SetSimple     *Value
	AdjustCounter *int64
	SetList       []Value
	SetSet        []Value
	SetMap        []MapEntry
}
