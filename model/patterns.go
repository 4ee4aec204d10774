package model

import (
	"github.com/pkg/errors"
)

// ErrUnknownPattern is returned when a pattern name is not in the catalog
var ErrUnknownPattern = errors.New("unknown pattern")

// Pattern is a named block of cells, 'O' for alive and '.' for dead
type Pattern struct {
	Name  string
	Cells []string
}

// Height returns the number of rows in the pattern
func (p Pattern) Height() int {
	return len(p.Cells)
}

// Width returns the length of the widest pattern row
func (p Pattern) Width() (w int) {
	for _, line := range p.Cells {
		w = max(w, len(line))
	}
	return
}

var patterns = []Pattern{
	{
		Name:  "Blinker",
		Cells: []string{"OOO"},
	},
	{
		Name: "Beacon",
		Cells: []string{
			"OO..",
			"OO..",
			"..OO",
			"..OO",
		},
	},
	{
		Name: "Glider",
		Cells: []string{
			".O.",
			"..O",
			"OOO",
		},
	},
	{
		Name: "Pulsar",
		Cells: []string{
			"..OOO...OOO..",
			".............",
			"O....O.O....O",
			"O....O.O....O",
			"O....O.O....O",
			"..OOO...OOO..",
			".............",
			"..OOO...OOO..",
			"O....O.O....O",
			"O....O.O....O",
			"O....O.O....O",
			".............",
			"..OOO...OOO..",
		},
	},
	{
		Name: "Penta-decathlon",
		Cells: []string{
			"..O....O..",
			"OO.OOOO.OO",
			"..O....O..",
		},
	},
	{
		Name: "Light-weight spaceship",
		Cells: []string{
			".O..O",
			"O....",
			"O...O",
			"OOOO.",
		},
	},
}

// PatternNames lists the catalog in display order
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.Name)
	}
	return names
}

// PatternByName looks up a pattern in the catalog
func PatternByName(name string) (Pattern, error) {
	for _, p := range patterns {
		if p.Name == name {
			return p, nil
		}
	}
	return Pattern{}, errors.Wrapf(ErrUnknownPattern, "[PatternByName] %q", name)
}

// Stamp returns a copy of the grid with the pattern's live cells set,
// its top-left corner at (row, col). The whole pattern must fit.
func (g *Grid) Stamp(p Pattern, row, col int) (*Grid, error) {
	if !g.inBounds(row, col) || !g.inBounds(row+p.Height()-1, col+p.Width()-1) {
		return nil, errors.Wrapf(ErrInvalidCoordinate,
			"[Stamp] %s (%dx%d) at (%d,%d) does not fit %dx%d grid",
			p.Name, p.Height(), p.Width(), row, col, g.rows, g.cols)
	}

	next := g.clone()
	for dr, line := range p.Cells {
		for dc, ch := range line {
			if ch == 'O' {
				next.cells[next.index(row+dr, col+dc)] = Alive
			}
		}
	}
	return next, nil
}

// WithPattern stamps the named pattern centered on the grid
func (g *Grid) WithPattern(name string) (*Grid, error) {
	p, err := PatternByName(name)
	if err != nil {
		return nil, err
	}
	return g.Stamp(p, (g.rows-p.Height())/2, (g.cols-p.Width())/2)
}
