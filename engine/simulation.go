package engine

import (
	"fmt"

	"github.com/lixenwraith/term-snake/core"
)

// DeathCause records why a round ended
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseWall
	CauseSelf
)

func (c DeathCause) String() string {
	switch c {
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	}
	return "none"
}

// Outcome is the result of a single Step
type Outcome uint8

const (
	OutcomeIdle    Outcome = iota // Already dead, nothing changed
	OutcomeMoved                  // Advanced into an empty cell
	OutcomeAte                    // Advanced into food and grew
	OutcomeHitWall                // Died leaving the board
	OutcomeHitSelf                // Died running into the body
)

// SimConfig is the immutable round configuration
type SimConfig struct {
	Width, Height int
	Start         core.Point
	FoodCount     int
	StartDir      core.Direction
}

// Simulation owns the board and the snake state
// Not safe for concurrent use; the game loop is the only writer
type Simulation struct {
	cfg  SimConfig
	rng  Rand
	grid *Grid

	head, tail core.Point
	dir        core.Direction
	length     int

	alive   bool
	cause   DeathCause
	score   uint32
	best    uint32
	justAte bool

	closest    core.Point
	hasClosest bool
}

// NewSimulation builds the first round from cfg
func NewSimulation(cfg SimConfig, rng Rand) (*Simulation, error) {
	s := &Simulation{cfg: cfg, rng: rng}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) rebuild() error {
	grid, err := NewGrid(s.cfg.Width, s.cfg.Height, s.cfg.Start, s.cfg.FoodCount, s.rng)
	if err != nil {
		return fmt.Errorf("build grid: %w", err)
	}

	s.grid = grid
	s.head = s.cfg.Start
	s.tail = s.cfg.Start
	s.dir = s.cfg.StartDir
	s.length = 1
	s.alive = true
	s.cause = CauseNone
	s.score = 0
	s.justAte = false
	s.refreshClosest()
	return nil
}

// Reset starts a new round on a fresh board, the best score is kept
func (s *Simulation) Reset() {
	// Dimensions were validated by NewSimulation
	if err := s.rebuild(); err != nil {
		panic(err)
	}
}

// SetDirection changes heading; a guarded change that reverses the current heading is ignored
func (s *Simulation) SetDirection(dir core.Direction, guarded bool) {
	if guarded && dir == s.dir.Opposite() {
		return
	}
	s.dir = dir
}

// Step advances the snake one cell
func (s *Simulation) Step() Outcome {
	if !s.alive {
		return OutcomeIdle
	}

	next, ok := s.head.Step(s.dir, s.grid.width, s.grid.height)
	if !ok {
		s.die(CauseWall)
		return OutcomeHitWall
	}

	prev := s.grid.At(s.head)
	if prev.Kind != CellHead {
		panic(fmt.Sprintf("snake head at (%d,%d) holds cell kind %d", s.head.X, s.head.Y, prev.Kind))
	}
	s.grid.Set(s.head, Cell{Kind: CellSegment, Next: next})

	target := s.grid.At(next)
	s.head = next

	var outcome Outcome
	switch target.Kind {
	case CellFood:
		s.grid.Set(next, Cell{Kind: CellHead})
		s.length++
		s.score++
		if s.score > s.best {
			s.best = s.score
		}
		s.grid.PlaceRandomFood()
		s.justAte = true
		outcome = OutcomeAte

	case CellHead, CellSegment:
		// Board is left as-is, the round is over
		s.die(CauseSelf)
		outcome = OutcomeHitSelf

	default:
		s.advanceTail()
		s.grid.Set(next, Cell{Kind: CellHead})
		s.justAte = false
		outcome = OutcomeMoved
	}

	s.refreshClosest()
	return outcome
}

func (s *Simulation) advanceTail() {
	t := s.grid.At(s.tail)
	if t.Kind != CellSegment {
		panic(fmt.Sprintf("snake tail at (%d,%d) holds cell kind %d", s.tail.X, s.tail.Y, t.Kind))
	}
	s.grid.Set(s.tail, Cell{Kind: CellEmpty})
	s.tail = t.Next
}

func (s *Simulation) die(cause DeathCause) {
	s.alive = false
	s.cause = cause
}

func (s *Simulation) refreshClosest() {
	s.closest, s.hasClosest = s.grid.ClosestFood(s.head)
}

// Grid exposes the board for read-only inspection
func (s *Simulation) Grid() *Grid { return s.grid }

func (s *Simulation) Head() core.Point                { return s.head }
func (s *Simulation) Tail() core.Point                { return s.tail }
func (s *Simulation) Direction() core.Direction       { return s.dir }
func (s *Simulation) Length() int                     { return s.length }
func (s *Simulation) Alive() bool                     { return s.alive }
func (s *Simulation) DeathCause() DeathCause          { return s.cause }
func (s *Simulation) Score() uint32                   { return s.score }
func (s *Simulation) Best() uint32                    { return s.best }
func (s *Simulation) JustAte() bool                   { return s.justAte }
func (s *Simulation) ClosestFood() (core.Point, bool) { return s.closest, s.hasClosest }
