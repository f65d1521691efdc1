package ui

import (
	"errors"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

var (
	ErrSurfaceClosed = errors.New("surface closed")
	ErrNoSize        = errors.New("terminal size unknown")
)

// Surface is a fixed-size character grid the monitor paints on.
type Surface interface {
	Size() (width, height int)
	Resize(width, height int)
	// Region returns a view of height lines starting at line top. Parts
	// outside the surface are clipped.
	Region(top, height int) Region
	// Flush publishes everything written since the previous flush.
	Flush() error
}

// Region is a horizontal band of a Surface with its own pen attribute.
type Region interface {
	Width() int
	Height() int
	WriteAt(row, col int, text string)
	ClearLine(row int)
	Clear()
	// Highlight switches the pen between standout and normal.
	Highlight(on bool)
	SetAttr(a Attr)
}

type cell struct {
	r    rune
	attr Attr
}

// wideTail marks the second cell covered by a double-width rune.
const wideTail rune = 0

// Screen is the in-memory Surface behind the bubbletea view. Flush turns
// the grid into a frame string that View hands to the renderer.
type Screen struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]cell
	frame  string
	closed bool
}

func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize discards the grid contents.
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.width, s.height = width, height
	s.cells = make([][]cell, height)
	for i := range s.cells {
		s.cells[i] = blankLine(width)
	}
}

func blankLine(width int) []cell {
	line := make([]cell, width)
	for i := range line {
		line[i] = cell{r: ' '}
	}
	return line
}

func (s *Screen) Region(top, height int) Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	if top < 0 {
		height += top
		top = 0
	}
	if top > s.height {
		top = s.height
	}
	if top+height > s.height {
		height = s.height - top
	}
	if height < 0 {
		height = 0
	}
	return &region{screen: s, top: top, height: height}
}

func (s *Screen) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	if s.width <= 0 || s.height <= 0 {
		return ErrNoSize
	}

	var b strings.Builder
	for i, line := range s.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLine(&b, line)
	}
	s.frame = b.String()
	return nil
}

// writeLine renders runs of equal attributes, dropping trailing blanks.
func writeLine(b *strings.Builder, line []cell) {
	end := len(line)
	for end > 0 && line[end-1].r == ' ' && line[end-1].attr == AttrNormal {
		end--
	}
	for start := 0; start < end; {
		attr := line[start].attr
		stop := start
		var run strings.Builder
		for stop < end && line[stop].attr == attr {
			if line[stop].r != wideTail {
				run.WriteRune(line[stop].r)
			}
			stop++
		}
		if st, ok := attr.style(); ok {
			b.WriteString(st.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		start = stop
	}
}

// Frame is the last flushed frame.
func (s *Screen) Frame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Close makes every later Flush fail.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Lines returns the grid as plain text with trailing blanks removed.
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cells))
	for i, line := range s.cells {
		rs := make([]rune, 0, len(line))
		for _, c := range line {
			if c.r != wideTail {
				rs = append(rs, c.r)
			}
		}
		out[i] = strings.TrimRight(string(rs), " ")
	}
	return out
}

// AttrAt reports the attribute of one cell.
func (s *Screen) AttrAt(row, col int) Attr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.height || col < 0 || col >= s.width {
		return AttrNormal
	}
	return s.cells[row][col].attr
}

type region struct {
	screen *Screen
	top    int
	height int
	pen    Attr
}

func (r *region) Width() int {
	r.screen.mu.Lock()
	defer r.screen.mu.Unlock()
	return r.screen.width
}

func (r *region) Height() int { return r.height }

func (r *region) Highlight(on bool) {
	if on {
		r.pen = AttrStandout
		return
	}
	r.pen = AttrNormal
}

func (r *region) SetAttr(a Attr) { r.pen = a }

func (r *region) WriteAt(row, col int, text string) {
	if row < 0 || row >= r.height || col < 0 {
		return
	}
	s := r.screen
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.top+row >= len(s.cells) {
		return
	}
	line := s.cells[r.top+row]
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > len(line) {
			break
		}
		splitWide(line, col)
		if w == 2 {
			splitWide(line, col+1)
			line[col+1] = cell{r: wideTail, attr: r.pen}
		}
		line[col] = cell{r: ch, attr: r.pen}
		col += w
	}
}

// splitWide blanks the other half of a wide rune about to lose cell i.
func splitWide(line []cell, i int) {
	switch {
	case line[i].r == wideTail && i > 0:
		line[i-1].r = ' '
	case i+1 < len(line) && line[i+1].r == wideTail:
		line[i+1].r = ' '
	}
}

func (r *region) ClearLine(row int) {
	if row < 0 || row >= r.height {
		return
	}
	s := r.screen
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.top+row < len(s.cells) {
		s.cells[r.top+row] = blankLine(s.width)
	}
}

func (r *region) Clear() {
	for i := 0; i < r.height; i++ {
		r.ClearLine(i)
	}
}
