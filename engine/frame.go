package engine

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/term-snake/core"
)

// Hint is the color directive for a cell, resolved to a palette by the renderer
type Hint uint8

const (
	HintNone Hint = iota
	HintFood
	HintClosestFood
	HintHead
	HintSegment
	HintHeadFed    // Head on the tick right after eating
	HintSegmentFed // Segment on the tick right after eating
)

// Frame glyphs
const (
	GlyphEmpty   = ' '
	GlyphFood    = '*'
	GlyphHead    = '@'
	GlyphSegment = '#'
	GlyphBorderH = '-'
	GlyphBorderV = '|'
)

// Frame rows above the board: header line and top border
const FrameBoardTop = 2

// Frame is an immutable snapshot of the simulation for renderers
type Frame struct {
	Width, Height int
	Score, Best   uint32
	Alive         bool
	JustAte       bool
	Closest       core.Point
	HasClosest    bool
	Cells         []CellKind // Row-major, len Width*Height
}

// Frame captures the current state; the returned value shares nothing with the simulation
func (s *Simulation) Frame() Frame {
	g := s.grid
	cells := make([]CellKind, len(g.cells))
	for i, c := range g.cells {
		cells[i] = c.Kind
	}

	return Frame{
		Width:      g.width,
		Height:     g.height,
		Score:      s.score,
		Best:       s.best,
		Alive:      s.alive,
		JustAte:    s.justAte,
		Closest:    s.closest,
		HasClosest: s.hasClosest,
		Cells:      cells,
	}
}

// Kind returns the cell kind at (x, y)
func (f Frame) Kind(x, y int) CellKind {
	return f.Cells[y*f.Width+x]
}

// Glyph returns the character drawn for the cell at (x, y)
func (f Frame) Glyph(x, y int) rune {
	switch f.Kind(x, y) {
	case CellFood:
		return GlyphFood
	case CellHead:
		return GlyphHead
	case CellSegment:
		return GlyphSegment
	}
	return GlyphEmpty
}

// Hint returns the color directive for the cell at (x, y)
func (f Frame) Hint(x, y int) Hint {
	switch f.Kind(x, y) {
	case CellFood:
		if f.HasClosest && f.Closest.X == x && f.Closest.Y == y {
			return HintClosestFood
		}
		return HintFood
	case CellHead:
		if f.JustAte {
			return HintHeadFed
		}
		return HintHead
	case CellSegment:
		if f.JustAte {
			return HintSegmentFed
		}
		return HintSegment
	}
	return HintNone
}

// Header returns the score line
func (f Frame) Header() string {
	return fmt.Sprintf("Score: %d | Best: %d", f.Score, f.Best)
}

// Column returns the text column of board cell x
func (f Frame) Column(x int) int {
	return 2*x + 2
}

// TextWidth returns the width of a bordered board line
func (f Frame) TextWidth() int {
	return 2*f.Width + 3
}

// Lines renders the frame as text: header, bordered board, each cell prefixed by a space
func (f Frame) Lines() []string {
	lines := make([]string, 0, f.Height+3)
	lines = append(lines, f.Header())

	border := strings.Repeat(" "+string(GlyphBorderH), f.Width+1)
	lines = append(lines, border)

	var b strings.Builder
	for y := 0; y < f.Height; y++ {
		b.Reset()
		b.WriteRune(GlyphBorderV)
		for x := 0; x < f.Width; x++ {
			b.WriteByte(' ')
			b.WriteRune(f.Glyph(x, y))
		}
		b.WriteByte(' ')
		b.WriteRune(GlyphBorderV)
		lines = append(lines, b.String())
	}

	lines = append(lines, border)
	return lines
}

func (f Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}
