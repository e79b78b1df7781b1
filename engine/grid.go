package engine

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/term-snake/core"
)

var (
	ErrDegenerateGrid   = errors.New("grid dimensions must be positive")
	ErrStartOutOfBounds = errors.New("start position outside grid")
)

// CellKind discriminates the state stored in a grid cell
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellFood
	CellHead
	CellSegment
)

// Cell is one board position
// Next is only meaningful for CellSegment and points one step toward the head
type Cell struct {
	Kind CellKind
	Next core.Point
}

// IsBody reports whether the cell is part of the snake
func (c Cell) IsBody() bool {
	return c.Kind == CellHead || c.Kind == CellSegment
}

// Grid is a fixed-size row-major occupancy board
// Body segments form a tail→head chain through their Next links
type Grid struct {
	width, height int
	cells         []Cell
	empty         int // Count of CellEmpty, kept in sync by Set
	food          int // Count of CellFood
	rng           Rand
}

// NewGrid allocates an empty board, marks start as the head and places foodCount food cells
// Food placement stops early when the board has no empty cell left
func NewGrid(width, height int, start core.Point, foodCount int, rng Rand) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDegenerateGrid, width, height)
	}
	if start.X < 0 || start.Y < 0 || start.X >= width || start.Y >= height {
		return nil, fmt.Errorf("%w: (%d,%d) on %dx%d", ErrStartOutOfBounds, start.X, start.Y, width, height)
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		empty:  width * height,
		rng:    rng,
	}

	g.Set(start, Cell{Kind: CellHead})
	for range foodCount {
		g.PlaceRandomFood()
	}

	return g, nil
}

// Width returns the board width in cells
func (g *Grid) Width() int { return g.width }

// Height returns the board height in cells
func (g *Grid) Height() int { return g.height }

// EmptyCount returns the number of empty cells
func (g *Grid) EmptyCount() int { return g.empty }

// FoodCount returns the number of food cells
func (g *Grid) FoodCount() int { return g.food }

// InBounds reports whether p lies on the board
func (g *Grid) InBounds(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) index(p core.Point) int {
	return p.Y*g.width + p.X
}

// At returns the cell at p, p must be in bounds
func (g *Grid) At(p core.Point) Cell {
	return g.cells[g.index(p)]
}

// Set overwrites the cell at p, p must be in bounds
func (g *Grid) Set(p core.Point, c Cell) {
	i := g.index(p)
	old := g.cells[i]

	switch old.Kind {
	case CellEmpty:
		g.empty--
	case CellFood:
		g.food--
	}
	switch c.Kind {
	case CellEmpty:
		g.empty++
	case CellFood:
		g.food++
	}

	g.cells[i] = c
}

// PlaceRandomFood marks a uniformly sampled empty cell as food
// No-op when the board is full; sampling is by rejection so near-full boards are slow
func (g *Grid) PlaceRandomFood() bool {
	if g.empty == 0 {
		return false
	}

	for {
		p := core.Point{X: g.rng.IntN(g.width), Y: g.rng.IntN(g.height)}
		if g.At(p).Kind == CellEmpty {
			g.Set(p, Cell{Kind: CellFood})
			return true
		}
	}
}

// Each visits every cell in row-major order
func (g *Grid) Each(fn func(p core.Point, c Cell)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fn(core.Point{X: x, Y: y}, g.cells[y*g.width+x])
		}
	}
}

// ClosestFood returns the food cell nearest to from by Euclidean distance
// Ties keep the first food in row-major order; ok is false when no food exists
func (g *Grid) ClosestFood(from core.Point) (core.Point, bool) {
	var (
		best  core.Point
		bestD int
		found bool
	)

	for i, c := range g.cells {
		if c.Kind != CellFood {
			continue
		}
		p := core.Point{X: i % g.width, Y: i / g.width}
		d := from.DistanceSq(p)
		if !found || d < bestD {
			best, bestD, found = p, d, true
		}
	}

	return best, found
}
