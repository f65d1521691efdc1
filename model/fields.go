package model

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNotSortable  = errors.New("field has no ordering")
)

// FieldID identifies a displayable column. The order of the constants is
// the column order on screen.
type FieldID int

const (
	FieldPID FieldID = iota
	FieldUser
	FieldPriority
	FieldNice
	FieldVirt
	FieldRes
	FieldShared
	FieldState
	FieldCPU
	FieldMem
	FieldTime
	FieldPPID
	FieldPgrp
	FieldSession
	FieldTTY
	FieldStart
	FieldCommand

	numFields
)

// FieldMask selects visible columns, one bit per FieldID.
type FieldMask uint32

// AllFields has every column visible.
const AllFields FieldMask = 1<<numFields - 1

// SortKey is what ranking needs from a column.
type SortKey interface {
	Compare(a, b *ProcessRecord) int
	Sortable() bool
}

// Field describes one column: how it is titled, laid out, rendered and
// ordered. A nil compare means the column cannot be a sort key.
type Field struct {
	ID      FieldID
	Key     string
	Heading string
	Width   int // 0 means "rest of the line"
	Left    bool

	format  func(r *ProcessRecord, ctx FormatContext) string
	compare func(a, b *ProcessRecord) int
}

func (f Field) Mask() FieldMask { return 1 << f.ID }

func (f Field) Sortable() bool { return f.compare != nil }

// Compare orders a before b (<0), after b (>0) or equal (0). Columns
// without an ordering treat every pair as equal.
func (f Field) Compare(a, b *ProcessRecord) int {
	if f.compare == nil {
		return 0
	}
	return f.compare(a, b)
}

// Format renders the record's value for this column, unpadded.
func (f Field) Format(r *ProcessRecord, ctx FormatContext) string {
	return f.format(r, ctx)
}

// Cell renders the value padded to the column width.
func (f Field) Cell(r *ProcessRecord, ctx FormatContext) string {
	if f.Width == 0 {
		return f.Format(r, ctx)
	}
	return Fit(f.Format(r, ctx), f.Width, f.Left)
}

// HeadingCell renders the column title padded to the column width.
func (f Field) HeadingCell() string {
	if f.Width == 0 {
		return f.Heading
	}
	return Fit(f.Heading, f.Width, f.Left)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// Fields is the column table, indexed by FieldID.
var Fields = [numFields]Field{
	FieldPID: {
		Key: "pid", Heading: "PID", Width: 7,
		format:  func(r *ProcessRecord, _ FormatContext) string { return strconv.Itoa(r.Pid) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.Pid, b.Pid) },
	},
	FieldUser: {
		Key: "user", Heading: "USER", Width: 9, Left: true,
		format:  func(r *ProcessRecord, _ FormatContext) string { return r.UserLabel() },
		compare: func(a, b *ProcessRecord) int { return strings.Compare(a.UserLabel(), b.UserLabel()) },
	},
	FieldPriority: {
		Key: "pr", Heading: "PR", Width: 4,
		format: func(r *ProcessRecord, _ FormatContext) string {
			if r.Priority < -99 {
				return "rt"
			}
			return itoa(r.Priority)
		},
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.Priority, b.Priority) },
	},
	FieldNice: {
		Key: "ni", Heading: "NI", Width: 4,
		format:  func(r *ProcessRecord, _ FormatContext) string { return itoa(r.Nice) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.Nice, b.Nice) },
	},
	FieldVirt: {
		Key: "virt", Heading: "VIRT", Width: 9,
		format:  func(r *ProcessRecord, _ FormatContext) string { return FormatKB(r.VSizeKB) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.VSizeKB, b.VSizeKB) },
	},
	FieldRes: {
		Key: "res", Heading: "RES", Width: 9,
		format:  func(r *ProcessRecord, _ FormatContext) string { return FormatKB(r.RSSKB) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.RSSKB, b.RSSKB) },
	},
	FieldShared: {
		Key: "shr", Heading: "SHR", Width: 9,
		format:  func(r *ProcessRecord, _ FormatContext) string { return FormatKB(r.SharedKB) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.SharedKB, b.SharedKB) },
	},
	FieldState: {
		Key: "s", Heading: "S", Width: 2, Left: true,
		format: func(r *ProcessRecord, _ FormatContext) string { return string(r.State) },
	},
	FieldCPU: {
		Key: "%cpu", Heading: "%CPU", Width: 6,
		format:  func(r *ProcessRecord, _ FormatContext) string { return fmt.Sprintf("%.1f", r.CPU) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.CPU, b.CPU) },
	},
	FieldMem: {
		Key: "%mem", Heading: "%MEM", Width: 6,
		format:  func(r *ProcessRecord, _ FormatContext) string { return fmt.Sprintf("%.1f", r.PMem) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.PMem, b.PMem) },
	},
	FieldTime: {
		Key: "time+", Heading: "TIME+", Width: 10,
		format: func(r *ProcessRecord, ctx FormatContext) string {
			return FormatTimeTicks(r.TotalTime(), ctx.hz())
		},
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.TotalTime(), b.TotalTime()) },
	},
	FieldPPID: {
		Key: "ppid", Heading: "PPID", Width: 7,
		format:  func(r *ProcessRecord, _ FormatContext) string { return strconv.Itoa(r.PPid) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.PPid, b.PPid) },
	},
	FieldPgrp: {
		Key: "pgrp", Heading: "PGRP", Width: 7,
		format:  func(r *ProcessRecord, _ FormatContext) string { return strconv.Itoa(r.Pgrp) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.Pgrp, b.Pgrp) },
	},
	FieldSession: {
		Key: "sid", Heading: "SID", Width: 7,
		format:  func(r *ProcessRecord, _ FormatContext) string { return strconv.Itoa(r.Session) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.Session, b.Session) },
	},
	FieldTTY: {
		Key: "tty", Heading: "TTY", Width: 8, Left: true,
		format: func(r *ProcessRecord, _ FormatContext) string { return FormatTTY(r.TTY) },
	},
	FieldStart: {
		Key: "start", Heading: "START", Width: 6,
		format:  func(r *ProcessRecord, ctx FormatContext) string { return FormatStart(r.StartTime, ctx) },
		compare: func(a, b *ProcessRecord) int { return cmp.Compare(a.StartTime, b.StartTime) },
	},
	FieldCommand: {
		Key: "command", Heading: "COMMAND", Left: true,
		format:  func(r *ProcessRecord, _ FormatContext) string { return r.CommandLabel() },
		compare: func(a, b *ProcessRecord) int { return strings.Compare(a.CommandLabel(), b.CommandLabel()) },
	},
}

func init() {
	for i := range Fields {
		Fields[i].ID = FieldID(i)
	}
}

// FieldByKey looks a column up by its key, case-insensitively.
func FieldByKey(key string) (Field, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range Fields {
		if f.Key == key {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
}

// Has reports whether the column is visible under the mask.
func (m FieldMask) Has(id FieldID) bool {
	return m&(1<<id) != 0
}

// Visible returns the columns selected by the mask, in column order.
func (m FieldMask) Visible() []Field {
	out := make([]Field, 0, numFields)
	for _, f := range Fields {
		if m.Has(f.ID) {
			out = append(out, f)
		}
	}
	return out
}

// MaskWithout builds a mask hiding the given column keys.
func MaskWithout(keys []string) (FieldMask, error) {
	mask := AllFields
	for _, k := range keys {
		f, err := FieldByKey(k)
		if err != nil {
			return AllFields, err
		}
		mask &^= f.Mask()
	}
	if mask == 0 {
		return AllFields, errors.New("at least one field must stay visible")
	}
	return mask, nil
}
