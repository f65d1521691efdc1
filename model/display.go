package model

import "fmt"

// DisplayState is the interactive session state of the monitor.
type DisplayState struct {
	Sorter
	FilterUID  int
	FilterName string
	Offset     int
	Mask       FieldMask
}

func NewDisplayState() DisplayState {
	return DisplayState{
		Sorter:    NewSorter(),
		FilterUID: NoFilter,
		Mask:      AllFields,
	}
}

func (d *DisplayState) SetFilter(uid int, name string) {
	d.FilterUID = uid
	d.FilterName = name
	d.Offset = 0
}

func (d *DisplayState) ClearFilter() {
	d.SetFilter(NoFilter, "")
}

func (d DisplayState) Filtering() bool {
	return d.FilterUID != NoFilter
}

// Rank orders records according to the active column, direction and filter.
func (d DisplayState) Rank(records []ProcessRecord) []ProcessRecord {
	return Rank(records, d.Field(), d.Ascending, d.FilterUID)
}

// ToggleField flips the visibility of a column. The last visible column
// cannot be hidden.
func (d *DisplayState) ToggleField(key string) error {
	f, err := FieldByKey(key)
	if err != nil {
		return err
	}
	next := d.Mask ^ f.Mask()
	if next == 0 {
		return fmt.Errorf("cannot hide %s: it is the last visible field", f.Heading)
	}
	d.Mask = next
	return nil
}

// Scroll moves the offset by delta rows and clamps it.
func (d *DisplayState) Scroll(delta, total, height int) {
	d.Offset += delta
	d.Clamp(total, height)
}

// ScrollTo places the offset at row and clamps it.
func (d *DisplayState) ScrollTo(row, total, height int) {
	d.Offset = row
	d.Clamp(total, height)
}

// Clamp keeps the offset inside [0, total-height] so that a page is always
// full while enough rows remain.
func (d *DisplayState) Clamp(total, height int) {
	d.Offset = ClampOffset(d.Offset, total, height)
}

func ClampOffset(offset, total, height int) int {
	if height < 0 {
		height = 0
	}
	maxOffset := total - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
