package core

// Point is a board coordinate, x in [0,width), y in [0,height)
type Point struct {
	X, Y int
}

// Direction is the heading of the snake head
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directionNames = [...]string{"up", "down", "left", "right"}

// Indexed by Direction
var (
	dirDeltaX = [...]int{0, 0, -1, 1}
	dirDeltaY = [...]int{-1, 1, 0, 0}
	opposites = [...]Direction{DirDown, DirUp, DirRight, DirLeft}
)

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

// Opposite returns the reverse heading
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// Delta returns the unit step for the direction, y grows downward
func (d Direction) Delta() (dx, dy int) {
	return dirDeltaX[d], dirDeltaY[d]
}

// Step advances p by one cell in direction d within a width×height board
// Returns false when the move would leave the board
func (p Point) Step(d Direction, width, height int) (Point, bool) {
	dx, dy := d.Delta()
	nx, ny := p.X+dx, p.Y+dy
	if nx < 0 || ny < 0 || nx >= width || ny >= height {
		return p, false
	}
	return Point{X: nx, Y: ny}, true
}

// DistanceSq returns the squared Euclidean distance between two points
func (p Point) DistanceSq(o Point) int {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}
