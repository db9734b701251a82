package kv

// KeyRange is a half-open range [Start, End) read during a transaction. A
// point read of a single key is represented with End set to Start's
// immediate successor (Start followed by a 0x00 byte) by convention of the
// caller. A range with Start == End is empty, so it never conflicts.
type KeyRange struct {
	Start []byte
	End   []byte
}

// Reads is the ordered set of key ranges a transaction has observed since
// its snapshot was taken. An Engine's Mutate call uses Reads to detect
// optimistic conflicts: if any range overlaps a write committed after the
// transaction's snapshot, Mutate fails with objdberrs.ErrRetry instead of
// applying Writes.
type Reads struct {
	Ranges []KeyRange
}

// Record appends a range to the read set.
func (r *Reads) Record(start, end []byte) {
	r.Ranges = append(r.Ranges, KeyRange{Start: start, End: end})
}
