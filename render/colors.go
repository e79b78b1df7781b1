package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/term-snake/engine"
)

// Palette colors
var (
	RgbClosestFood = tcell.NewRGBColor(255, 0, 255)   // Magenta
	RgbFood        = tcell.NewRGBColor(255, 255, 255) // White
	RgbHead        = tcell.NewRGBColor(100, 150, 255) // Blue
	RgbSegment     = tcell.NewRGBColor(255, 80, 80)   // Red
	RgbFed         = tcell.NewRGBColor(0, 200, 0)     // Green, body on the tick after eating
	RgbBorder      = tcell.NewRGBColor(180, 180, 180) // Gray
	RgbHeader      = tcell.NewRGBColor(255, 255, 255) // White
	RgbMessage     = tcell.NewRGBColor(255, 255, 0)   // Yellow
)

// Styles derived from the palette
var (
	StyleBorder  = tcell.StyleDefault.Foreground(RgbBorder)
	StyleHeader  = tcell.StyleDefault.Foreground(RgbHeader).Bold(true)
	StyleMessage = tcell.StyleDefault.Foreground(RgbMessage).Bold(true)
)

// HintStyle resolves a cell color directive to a tcell style
func HintStyle(h engine.Hint) tcell.Style {
	switch h {
	case engine.HintClosestFood:
		return tcell.StyleDefault.Foreground(RgbClosestFood)
	case engine.HintFood:
		return tcell.StyleDefault.Foreground(RgbFood)
	case engine.HintHead:
		return tcell.StyleDefault.Foreground(RgbHead).Bold(true)
	case engine.HintSegment:
		return tcell.StyleDefault.Foreground(RgbSegment)
	case engine.HintHeadFed:
		return tcell.StyleDefault.Foreground(RgbFed).Bold(true)
	case engine.HintSegmentFed:
		return tcell.StyleDefault.Foreground(RgbFed)
	}
	return tcell.StyleDefault
}
