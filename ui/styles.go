package ui

import "github.com/charmbracelet/lipgloss"

// Attr is the rendering attribute of a screen cell.
type Attr uint8

const (
	AttrNormal Attr = iota
	AttrStandout
	AttrError
	AttrHot
	AttrWarm
)

var (
	standoutStyle = lipgloss.NewStyle().Reverse(true)

	errorStyle = lipgloss.NewStyle().
			Reverse(true).
			Foreground(lipgloss.Color("red")).
			Bold(true)

	highCPUStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
	medCPUStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
)

func (a Attr) style() (lipgloss.Style, bool) {
	switch a {
	case AttrStandout:
		return standoutStyle, true
	case AttrError:
		return errorStyle, true
	case AttrHot:
		return highCPUStyle, true
	case AttrWarm:
		return medCPUStyle, true
	}
	return lipgloss.Style{}, false
}

// loadAttr picks the colour of a %CPU or %MEM cell. Values above the
// threshold are hot, values above 40% of it are warm.
func loadAttr(value, threshold float64) Attr {
	switch {
	case threshold <= 0:
		return AttrNormal
	case value > threshold:
		return AttrHot
	case value > threshold*0.4:
		return AttrWarm
	}
	return AttrNormal
}
