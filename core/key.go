package core

// Key is a logical key event after translation from the terminal
// Only the directional keys and Quit reach the game loop
type Key uint8

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyQuit
)

var keyNames = [...]string{"none", "up", "down", "left", "right", "quit"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "invalid"
}

// Direction maps a directional key to its heading
// Returns false for KeyNone and KeyQuit
func (k Key) Direction() (Direction, bool) {
	switch k {
	case KeyUp:
		return DirUp, true
	case KeyDown:
		return DirDown, true
	case KeyLeft:
		return DirLeft, true
	case KeyRight:
		return DirRight, true
	}
	return 0, false
}
