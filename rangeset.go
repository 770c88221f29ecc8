package gridterm

// RowRange is a half-open interval of row indices [Start, End).
type RowRange struct {
	Start int64
	End   int64
}

// Contains returns true if the row falls inside the range.
func (r RowRange) Contains(row int64) bool {
	return row >= r.Start && row < r.End
}

// IsEmpty returns true if the range covers no rows.
func (r RowRange) IsEmpty() bool {
	return r.Start >= r.End
}

// RangeSet is a set of row indices kept as sorted, coalesced, non-overlapping
// ranges. Adjacent and overlapping additions merge, so reporting a thousand
// consecutive dirty rows costs one entry.
type RangeSet struct {
	ranges []RowRange
}

// NewRangeSet returns an empty set.
func NewRangeSet() *RangeSet {
	return &RangeSet{}
}

// Add inserts a single row.
func (s *RangeSet) Add(row int64) {
	s.AddRange(RowRange{Start: row, End: row + 1})
}

// AddRange inserts a range, merging with any overlapping or adjacent entries.
func (s *RangeSet) AddRange(r RowRange) {
	if r.IsEmpty() {
		return
	}

	// Find the insertion window: every stored range that overlaps or touches r.
	var merged []RowRange
	inserted := false
	for _, existing := range s.ranges {
		switch {
		case existing.End < r.Start:
			merged = append(merged, existing)
		case existing.Start > r.End:
			if !inserted {
				merged = append(merged, r)
				inserted = true
			}
			merged = append(merged, existing)
		default:
			if existing.Start < r.Start {
				r.Start = existing.Start
			}
			if existing.End > r.End {
				r.End = existing.End
			}
		}
	}
	if !inserted {
		merged = append(merged, r)
	}
	s.ranges = merged
}

// Contains returns true if the row is in the set.
func (s *RangeSet) Contains(row int64) bool {
	for _, r := range s.ranges {
		if r.Contains(row) {
			return true
		}
		if r.Start > row {
			break
		}
	}
	return false
}

// Ranges returns the stored ranges in ascending order. The slice is shared;
// callers must not modify it.
func (s *RangeSet) Ranges() []RowRange {
	return s.ranges
}

// Len returns the total number of rows covered.
func (s *RangeSet) Len() int64 {
	var n int64
	for _, r := range s.ranges {
		n += r.End - r.Start
	}
	return n
}

// IsEmpty returns true if the set covers no rows.
func (s *RangeSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Clear empties the set.
func (s *RangeSet) Clear() {
	s.ranges = s.ranges[:0]
}
