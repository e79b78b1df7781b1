package input

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/term-snake/core"
)

// KeyTable maps terminal keys to logical keys
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Escape)
	SpecialKeys map[tcell.Key]core.Key

	// Printable bindings, matched case-insensitively
	Runes map[rune]core.Key
}

// DefaultKeyTable returns the default bindings: arrows, wasd, hjkl and quit keys
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]core.Key{
			tcell.KeyUp:     core.KeyUp,
			tcell.KeyDown:   core.KeyDown,
			tcell.KeyLeft:   core.KeyLeft,
			tcell.KeyRight:  core.KeyRight,
			tcell.KeyEscape: core.KeyQuit,
			tcell.KeyCtrlC:  core.KeyQuit,
		},

		Runes: map[rune]core.Key{
			// wasd
			'w': core.KeyUp,
			's': core.KeyDown,
			'a': core.KeyLeft,
			'd': core.KeyRight,

			// vi motions
			'k': core.KeyUp,
			'j': core.KeyDown,
			'h': core.KeyLeft,
			'l': core.KeyRight,

			'q': core.KeyQuit,
		},
	}
}

// Translate returns the logical key for ev, KeyNone when unbound
func (kt *KeyTable) Translate(ev *tcell.EventKey) core.Key {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		return kt.Runes[r]
	}
	return kt.SpecialKeys[ev.Key()]
}
