// Package ui contains the terminal frontends that render scheduler frames and
// turn user input into scheduler calls.
package ui

import (
	"fmt"
	"time"

	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

// StatusLine formats the one-line summary shown under the grid
func StatusLine(f scheduler.Frame, stats *utils.Stats, threshold int) string {
	state := "stopped"
	if f.Running {
		state = "running"
	}

	population := 0
	if f.Grid != nil {
		population = f.Grid.CountLivingCells()
	}
	_, _, gps, avgPop := stats.Snapshot()

	return fmt.Sprintf("Gen: %d | Living: %d | Interval: %dms | %s | Status: %s | %.1f gen/sec | Avg Pop: %.1f",
		f.Generation, population, f.Interval/time.Millisecond, state, stats.Status(threshold), gps, avgPop)
}
