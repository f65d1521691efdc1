package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pids(records []ProcessRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Pid
	}
	return out
}

func sampleRecords() []ProcessRecord {
	return []ProcessRecord{
		{Pid: 1, Uid: 0, User: "root", CPU: 0.5, PMem: 1, RSSKB: 100, Comm: "init"},
		{Pid: 20, Uid: 1000, User: "alice", CPU: 12, PMem: 3, RSSKB: 300, Comm: "vim"},
		{Pid: 31, Uid: 1000, User: "alice", CPU: 12, PMem: 2, RSSKB: 200, Comm: "bash"},
		{Pid: 42, Uid: 1001, User: "", CPU: 50, PMem: 4, RSSKB: 400, Comm: "java"},
		{Pid: 7, Uid: 0, User: "root", CPU: 12, PMem: 0.1, RSSKB: 10, Comm: "kworker"},
	}
}

func TestRankByCPUDescending(t *testing.T) {
	records := []ProcessRecord{
		{Pid: 1, CPU: 50},
		{Pid: 2, CPU: 100},
	}
	out := Rank(records, Fields[FieldCPU], false, NoFilter)
	assert.Equal(t, []int{2, 1}, pids(out))
	assert.Equal(t, []int{1, 2}, pids(records), "input must not be reordered")
}

func TestRankIsStable(t *testing.T) {
	for _, id := range []FieldID{FieldCPU, FieldUser, FieldPID, FieldMem, FieldCommand} {
		for _, asc := range []bool{true, false} {
			once := Rank(sampleRecords(), Fields[id], asc, NoFilter)
			twice := Rank(once, Fields[id], asc, NoFilter)
			assert.Equal(t, pids(once), pids(twice), "field %s asc=%v", Fields[id].Heading, asc)
		}
	}
}

func TestRankTiesKeepInputOrderInBothDirections(t *testing.T) {
	desc := Rank(sampleRecords(), Fields[FieldCPU], false, NoFilter)
	assert.Equal(t, []int{42, 20, 31, 7, 1}, pids(desc))

	asc := Rank(sampleRecords(), Fields[FieldCPU], true, NoFilter)
	assert.Equal(t, []int{1, 20, 31, 7, 42}, pids(asc))
}

func TestToggleDirectionTwiceRestoresOrder(t *testing.T) {
	s := NewSorter()
	before := Rank(sampleRecords(), s.Field(), s.Ascending, NoFilter)

	require.NoError(t, s.Toggle(FieldCPU))
	require.NoError(t, s.Toggle(FieldCPU))
	after := Rank(sampleRecords(), s.Field(), s.Ascending, NoFilter)

	assert.Equal(t, pids(before), pids(after))
}

func TestRankUserComparesDisplayedName(t *testing.T) {
	out := Rank(sampleRecords(), Fields[FieldUser], true, NoFilter)
	// uid 1001 has no name and shows as "1001", which sorts before letters.
	assert.Equal(t, []int{42, 20, 31, 1, 7}, pids(out))
}

func TestRankFilter(t *testing.T) {
	out := Rank(sampleRecords(), Fields[FieldPID], true, 1000)
	assert.Equal(t, []int{20, 31}, pids(out))

	none := Rank(sampleRecords(), Fields[FieldPID], true, 4242)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRankUnsortableFieldKeepsOrder(t *testing.T) {
	out := Rank(sampleRecords(), Fields[FieldState], true, NoFilter)
	assert.Equal(t, pids(sampleRecords()), pids(out))
}

func TestSorterRejectsUnsortableField(t *testing.T) {
	s := NewSorter()
	err := s.SetColumn(FieldTTY)
	assert.ErrorIs(t, err, ErrNotSortable)
	assert.Equal(t, FieldCPU, s.Column)

	assert.ErrorIs(t, s.SetColumn(numFields), ErrUnknownField)
}

func TestSorterNextPrevSkipUnsortable(t *testing.T) {
	s := Sorter{Column: FieldShared}
	s.Next()
	assert.Equal(t, FieldCPU, s.Column, "S has no ordering and is skipped")
	s.Prev()
	assert.Equal(t, FieldShared, s.Column)

	s = Sorter{Column: FieldCommand}
	s.Next()
	assert.Equal(t, FieldPID, s.Column, "wraps around")
	s.Prev()
	assert.Equal(t, FieldCommand, s.Column)
}

func TestSorterToggleNewColumnIsDescending(t *testing.T) {
	s := Sorter{Column: FieldCPU, Ascending: true}
	require.NoError(t, s.Toggle(FieldMem))
	assert.Equal(t, FieldMem, s.Column)
	assert.False(t, s.Ascending)
	assert.Equal(t, "%MEM", s.ColumnName())
}
