package model

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "
)

// TextRenderer writes a grid as text, one line per row
type TextRenderer struct {
	Alive string
	Dead  string
}

// NewTextRenderer returns a renderer using full block glyphs for live cells
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Alive: gridPosBlock, Dead: gridPosEmpty}
}

// Render writes the grid to w
func (r *TextRenderer) Render(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			glyph := r.Dead
			if g.Alive(row, col) {
				glyph = r.Alive
			}
			if _, err := bw.WriteString(glyph); err != nil {
				return errors.Wrap(err, "[Render] failed to write cell")
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "[Render] failed to write row")
		}
	}
	return errors.Wrap(bw.Flush(), "[Render] failed to flush")
}
