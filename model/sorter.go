package model

import (
	"fmt"
	"sort"
)

// Sorter holds the active sort column and direction. Only columns with an
// ordering can be selected.
type Sorter struct {
	Column    FieldID
	Ascending bool
}

func NewSorter() Sorter {
	return Sorter{
		Column:    FieldCPU,
		Ascending: false, // highest CPU first
	}
}

// SetColumn selects a new sort column, descending.
func (s *Sorter) SetColumn(id FieldID) error {
	if id < 0 || id >= numFields {
		return fmt.Errorf("%w: id %d", ErrUnknownField, id)
	}
	if !Fields[id].Sortable() {
		return fmt.Errorf("%w: %s", ErrNotSortable, Fields[id].Heading)
	}
	s.Column = id
	s.Ascending = false
	return nil
}

// Toggle selects the column, or flips the direction when it is already
// the active one.
func (s *Sorter) Toggle(id FieldID) error {
	if s.Column == id {
		s.Reverse()
		return nil
	}
	return s.SetColumn(id)
}

func (s *Sorter) Reverse() {
	s.Ascending = !s.Ascending
}

// Next moves to the next sortable column to the right, wrapping around.
func (s *Sorter) Next() {
	s.step(1)
}

// Prev moves to the previous sortable column to the left, wrapping around.
func (s *Sorter) Prev() {
	s.step(-1)
}

func (s *Sorter) step(dir int) {
	id := int(s.Column)
	for i := 0; i < int(numFields); i++ {
		id = (id + dir + int(numFields)) % int(numFields)
		if Fields[id].Sortable() {
			s.Column = FieldID(id)
			return
		}
	}
}

func (s Sorter) Field() Field {
	return Fields[s.Column]
}

func (s Sorter) ColumnName() string {
	return Fields[s.Column].Heading
}

// Rank returns the records owned by filterUID (all of them for NoFilter)
// in a new slice, stably ordered by key. The input is left untouched. A key
// without an ordering keeps the input order.
func Rank(records []ProcessRecord, key SortKey, ascending bool, filterUID int) []ProcessRecord {
	out := make([]ProcessRecord, 0, len(records))
	for _, r := range records {
		if filterUID != NoFilter && int64(r.Uid) != int64(filterUID) {
			continue
		}
		out = append(out, r)
	}
	if !key.Sortable() {
		return out
	}

	sign := -1
	if ascending {
		sign = 1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*key.Compare(&out[i], &out[j]) < 0
	})
	return out
}
