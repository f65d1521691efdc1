package ui

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenWideRunesTakeTwoCells(t *testing.T) {
	s := NewScreen(10, 2)
	r := s.Region(0, 2)
	r.WriteAt(0, 0, "ab漢字cd")
	r.WriteAt(1, 0, "123456789漢")
	require.NoError(t, s.Flush())

	lines := s.Lines()
	assert.Equal(t, "ab漢字cd", lines[0])
	assert.Equal(t, 8, runewidth.StringWidth(lines[0]))
	assert.Equal(t, "123456789", lines[1], "a wide rune never straddles the edge")
	assert.Equal(t, "ab漢字cd\n123456789", s.Frame())
}

func TestScreenOverwritingHalfAWideRune(t *testing.T) {
	s := NewScreen(10, 1)
	r := s.Region(0, 1)
	r.WriteAt(0, 0, "ab漢字cd")

	r.WriteAt(0, 3, "x")
	assert.Equal(t, "ab x字cd", s.Lines()[0])

	r.WriteAt(0, 4, "y")
	assert.Equal(t, "ab xy cd", s.Lines()[0])
}
