package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/term-snake/engine"
)

// Overlay messages
const (
	MsgReady = "Press a movement key to begin"
	MsgDied  = "You died!"
)

// View draws engine frames onto a tcell screen
// Only the game loop calls Ready/Play/Died; Resize may come from the input goroutine
type View struct {
	screen tcell.Screen
}

// NewView wraps an initialized screen
func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// Ready draws the board with the start prompt
func (v *View) Ready(f engine.Frame) {
	v.drawFrame(f)
	v.drawMessage(f, MsgReady)
	v.screen.Show()
}

// Play draws the board
func (v *View) Play(f engine.Frame) {
	v.drawFrame(f)
	v.screen.Show()
}

// Died draws the final board with the death message
func (v *View) Died(f engine.Frame) {
	v.drawFrame(f)
	v.drawMessage(f, MsgDied)
	v.screen.Show()
}

// Resize forces a full redraw after the terminal changed size
func (v *View) Resize() {
	v.screen.Sync()
}

func (v *View) drawFrame(f engine.Frame) {
	v.screen.Clear()

	lines := f.Lines()
	v.drawText(0, 0, lines[0], StyleHeader)
	for y := 1; y < len(lines); y++ {
		v.drawText(0, y, lines[y], StyleBorder)
	}

	// Cells overwrite the plain glyphs with their color directive
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.Kind(x, y) == engine.CellEmpty {
				continue
			}
			v.screen.SetContent(f.Column(x), y+engine.FrameBoardTop, f.Glyph(x, y), nil, HintStyle(f.Hint(x, y)))
		}
	}
}

// drawMessage centers msg over the middle board row
func (v *View) drawMessage(f engine.Frame, msg string) {
	col := (f.TextWidth() - len(msg)) / 2
	if col < 0 {
		col = 0
	}
	row := engine.FrameBoardTop + f.Height/2
	v.drawText(col, row, msg, StyleMessage)
}

func (v *View) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
