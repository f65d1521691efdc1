package ui

import "github.com/Alisser2001/sentinel/model"

// Screen layout: five summary lines, the message line, then the table
// (heading row followed by data rows).
const (
	summaryLines = 5
	messageLine  = 5
	tableTop     = 6
)

func (c *Controller) renderSummary(r Region) {
	r.Clear()
	r.Highlight(false)
	mem, swap := summaryMemLines(c.sys)
	lines := []string{
		summaryClockLine(c.sys),
		summaryTasksLine(c.tasks),
		summaryCPULine(c.sys),
		mem,
		swap,
	}
	for i, l := range lines {
		r.WriteAt(i, 0, l)
	}
}

func (c *Controller) renderMessage(r Region) {
	r.Clear()
	switch {
	case c.prompt != PromptNone:
		r.Highlight(false)
		r.WriteAt(0, 0, c.prompt.label()+c.promptInput)
	case c.status != "" && c.statusErr:
		r.SetAttr(AttrError)
		r.WriteAt(0, 0, " "+c.status+" ")
	case c.status != "":
		r.Highlight(false)
		r.WriteAt(0, 0, c.status)
	}
	r.Highlight(false)
}

// renderTable draws the heading with the sort column highlighted, then the
// rows of the current page.
func (c *Controller) renderTable(r Region) {
	r.Clear()
	if r.Height() == 0 {
		return
	}
	fields := c.display.Mask.Visible()
	ctx := model.FormatContext{HZ: c.hz, BootTime: c.sys.BootTime, Now: c.sys.Time}

	col := 0
	for _, f := range fields {
		r.Highlight(f.ID == c.display.Column)
		r.WriteAt(0, col, f.HeadingCell())
		r.Highlight(false)
		col += f.Width + 1
	}

	height := r.Height() - 1
	c.display.Clamp(len(c.rows), height)
	end := c.display.Offset + height
	if end > len(c.rows) {
		end = len(c.rows)
	}
	for row, i := 1, c.display.Offset; i < end; row, i = row+1, i+1 {
		rec := &c.rows[i]
		col := 0
		for _, f := range fields {
			r.SetAttr(c.cellAttr(f.ID, rec))
			r.WriteAt(row, col, f.Cell(rec, ctx))
			r.Highlight(false)
			col += f.Width + 1
		}
	}
}

func (c *Controller) cellAttr(id model.FieldID, rec *model.ProcessRecord) Attr {
	switch id {
	case model.FieldCPU:
		return loadAttr(rec.CPU, c.cpuThreshold)
	case model.FieldMem:
		return loadAttr(rec.PMem, c.memThreshold)
	}
	return AttrNormal
}

func (c *Controller) renderHelp(r Region) {
	r.Clear()
	r.Highlight(true)
	r.WriteAt(0, 0, " Help: press ? or h to return ")
	r.Highlight(false)
	for i, line := range c.keys.HelpLines() {
		r.WriteAt(i+2, 2, line)
	}
}
