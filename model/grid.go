package model

import (
	"crypto/md5"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/rules"
)

// Cell is the state of a single grid position
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

// ErrInvalidCoordinate is returned for row/col pairs outside the grid
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// neighborOffsets is the Moore neighborhood as (row, col) deltas
var neighborOffsets = [8][2]int{
	{0, 1},
	{0, -1},
	{1, -1},
	{-1, 1},
	{1, 1},
	{-1, -1},
	{1, 0},
	{-1, 0},
}

// Grid is an immutable rows x cols board. Operations that change cells
// return a new Grid and leave the receiver untouched.
type Grid struct {
	rows  int
	cols  int
	cells []Cell // row-major
}

// NewGrid creates a grid with the specified dimensions and every cell dead
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// Rows returns the number of rows in the grid
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns in the grid
func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid) index(row, col int) int {
	return row*g.cols + col
}

func (g *Grid) clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

func (g *Grid) checkCoordinate(op string, row, col int) error {
	if g.inBounds(row, col) {
		return nil
	}
	return errors.Wrapf(ErrInvalidCoordinate, "[%s] (%d,%d) outside %dx%d grid", op, row, col, g.rows, g.cols)
}

// Get returns the state of a cell
func (g *Grid) Get(row, col int) (Cell, error) {
	if err := g.checkCoordinate("Get", row, col); err != nil {
		return Dead, err
	}
	return g.cells[g.index(row, col)], nil
}

// Alive reports whether a cell is alive. Off-grid positions read as dead.
func (g *Grid) Alive(row, col int) bool {
	return g.inBounds(row, col) && g.cells[g.index(row, col)] == Alive
}

// Set returns a copy of the grid with one cell set to the given state
func (g *Grid) Set(row, col int, state Cell) (*Grid, error) {
	if err := g.checkCoordinate("Set", row, col); err != nil {
		return nil, err
	}
	next := g.clone()
	next.cells[next.index(row, col)] = state
	return next, nil
}

// Toggle returns a copy of the grid with one cell flipped between alive and dead
func (g *Grid) Toggle(row, col int) (*Grid, error) {
	if err := g.checkCoordinate("Toggle", row, col); err != nil {
		return nil, err
	}
	next := g.clone()
	i := next.index(row, col)
	next.cells[i] ^= Alive
	return next, nil
}

// CountNeighbors counts living neighbors, skipping offsets that fall off the grid
func (g *Grid) CountNeighbors(row, col int) int {
	count := 0
	for _, d := range neighborOffsets {
		r, c := row+d[0], col+d[1]
		if !g.inBounds(r, c) {
			continue
		}
		count += int(g.cells[g.index(r, c)])
	}
	return count
}

// NextGeneration calculates the next generation, splitting rows across workers.
// Every worker reads only the receiver and writes only its own rows of the result.
func (g *Grid) NextGeneration() *Grid {
	next := NewGrid(g.rows, g.cols)

	var (
		eg            errgroup.Group
		numWorkers    = runtime.NumCPU()
		rowsPerWorker = (g.rows + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := 0; i < numWorkers; i++ {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.rows)
		)
		if startRow >= g.rows {
			break
		}

		eg.Go(func() error {
			for row := startRow; row < endRow; row++ {
				for col := 0; col < g.cols; col++ {
					idx := g.index(row, col)
					if rules.Next(g.cells[idx] == Alive, g.CountNeighbors(row, col)) {
						next.cells[idx] = Alive
					}
				}
			}
			return nil
		})
	}

	// workers never fail; Wait is only a barrier here
	_ = eg.Wait()

	return next
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for _, c := range g.cells {
		count += int(c)
	}
	return
}

// Equal reports whether two grids have the same dimensions and cells
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Hash returns an MD5 hash of the grid state, used for cycle detection
func (g *Grid) Hash() string {
	h := md5.New()
	buf := make([]byte, len(g.cells))
	for i, c := range g.cells {
		buf[i] = byte(c)
	}
	h.Write(buf)
	return fmt.Sprintf("%x", h.Sum(nil))
}
