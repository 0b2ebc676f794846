package robotroute

import (
	"fmt"
	"strings"
)

// Cell is the occupancy of a single grid square.
type Cell uint8

const (
	Free Cell = iota
	Wall
)

const minimumOrder = 3

// WallFractions positions the two inner walls. Left sets the column of the
// left wall (and mirrored, the right wall); Span sets how many rows each wall
// covers, both as a fraction of the grid order.
type WallFractions struct {
	Left float64 `json:"left" yaml:"left"`
	Span float64 `json:"span" yaml:"span"`
}

// DefaultWallFractions assumes an order divisible by 3.
var DefaultWallFractions = WallFractions{Left: 1.0 / 3, Span: 2.0 / 3}

// Validate checks 0 < Left < Span < 1.
func (fractions WallFractions) Validate() error {
	if fractions.Left <= 0 || fractions.Left >= 1 || fractions.Span <= 0 || fractions.Span >= 1 {
		return fmt.Errorf("%w: wall fractions (%g, %g) must lie in (0, 1)",
			ErrInvalidConfiguration, fractions.Left, fractions.Span)
	}
	if fractions.Left >= fractions.Span {
		return fmt.Errorf("%w: wall fractions (%g, %g) must be increasing",
			ErrInvalidConfiguration, fractions.Left, fractions.Span)
	}
	return nil
}

// Grid is a square occupancy matrix. The origin (0, 0) is the top-left corner
// and cells are stored row-major, so the cell at (x, y) is cells[y][x].
//
// A Grid is never modified after NewGrid returns and may be shared by
// concurrent searches.
type Grid struct {
	order     int
	fractions WallFractions
	cells     [][]Cell
}

// NewGrid builds a grid of the given order. The outer ring is wall. The left
// wall runs up from the bottom edge at column floor(Left*order); the right wall
// runs down from the top edge at column order-floor(Left*order). Both cover
// floor(Span*order) rows.
//
// NewGrid fails with ErrInvalidConfiguration when order is below 3, when the
// fractions are not increasing within (0, 1), and when floor(Left*order) is 0,
// which would put the right wall outside the grid.
func NewGrid(order int, fractions WallFractions) (*Grid, error) {
	if order < minimumOrder {
		return nil, fmt.Errorf("%w: order %d is below %d", ErrInvalidConfiguration, order, minimumOrder)
	}
	if err := fractions.Validate(); err != nil {
		return nil, err
	}

	leftColumn := int(fractions.Left * float64(order))
	rightColumn := order - leftColumn
	span := int(fractions.Span * float64(order))
	if leftColumn < 1 || rightColumn >= order {
		return nil, fmt.Errorf("%w: wall column %d does not fit a grid of order %d",
			ErrInvalidConfiguration, leftColumn, order)
	}

	cells := make([][]Cell, order)
	for y := range cells {
		cells[y] = make([]Cell, order)
		for x := range cells[y] {
			if x == 0 || y == 0 || x == order-1 || y == order-1 {
				cells[y][x] = Wall
			}
		}
	}

	// --- Inner walls ---
	for y := order - span; y < order; y++ {
		cells[y][leftColumn] = Wall
	}
	for y := 0; y < span; y++ {
		cells[y][rightColumn] = Wall
	}

	return &Grid{order: order, fractions: fractions, cells: cells}, nil
}

// Order returns the side length.
func (grid *Grid) Order() int { return grid.order }

// Fractions returns the wall fractions the grid was carved with.
func (grid *Grid) Fractions() WallFractions { return grid.fractions }

// Contains reports whether (x, y) is inside the matrix.
func (grid *Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < grid.order && y < grid.order
}

// IsWall reports whether (x, y) is blocked. Anything outside the matrix counts
// as wall.
func (grid *Grid) IsWall(x, y int) bool {
	if !grid.Contains(x, y) {
		return true
	}
	return grid.cells[y][x] == Wall
}

// At returns the cell at (x, y), Wall when outside.
func (grid *Grid) At(x, y int) Cell {
	if grid.IsWall(x, y) {
		return Wall
	}
	return Free
}

// FreeCells counts the cells the robot may stand on.
func (grid *Grid) FreeCells() int {
	count := 0
	for _, row := range grid.cells {
		for _, cell := range row {
			if cell == Free {
				count++
			}
		}
	}
	return count
}

// String draws the grid with '#' for walls and '.' for free cells.
func (grid *Grid) String() string {
	var builder strings.Builder
	builder.Grow(grid.order * (grid.order + 1))
	for _, row := range grid.cells {
		for _, cell := range row {
			if cell == Wall {
				builder.WriteByte('#')
			} else {
				builder.WriteByte('.')
			}
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}
