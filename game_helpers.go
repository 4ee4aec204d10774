package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/ui"
	"github.com/sheikhrachel/go-life/utils"
)

// frontend renders scheduler frames and drives the scheduler until it is done
type frontend interface {
	Observe(scheduler.Frame)
	Run(ctx context.Context, s *scheduler.Scheduler) error
}

// applyFlags copies explicitly set command-line flags over the file config
func applyFlags(config *utils.Config, fs *flag.FlagSet, interactive bool, pattern string) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interactive":
			config.Interactive = interactive
		case "pattern":
			config.Pattern = pattern
		}
	})
}

// initializeGame sets up the initial grid, seeded with the configured pattern
func initializeGame(config utils.Config) (*model.Grid, error) {
	grid := model.NewGrid(config.Rows, config.Cols)
	if config.Pattern == "" {
		return grid, nil
	}

	grid, err := grid.WithPattern(config.Pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "[initializeGame] failed to load pattern %q", config.Pattern)
	}
	return grid, nil
}

// newFrontend picks the interactive or live frontend. The returned cleanup
// must run after the frontend is done.
func newFrontend(config utils.Config, stats *utils.Stats) (frontend, func(), error) {
	if !config.Interactive {
		live := ui.NewLive(os.Stdout, stats, ui.LiveOptions{
			MaxGenerations:      config.MaxGenerations,
			StopWhenStagnant:    config.StopWhenStagnant,
			StagnationThreshold: config.StagnationThreshold,
		})
		return live, func() {}, nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, nil, errors.Wrap(err, "[newFrontend] failed to create screen")
	}
	if err = screen.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "[newFrontend] failed to initialize screen")
	}
	return ui.NewTerminal(screen, stats, config.StagnationThreshold), screen.Fini, nil
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, grid *model.Grid) {
	pattern := config.Pattern
	if pattern == "" {
		pattern = "none"
	}
	fmt.Printf("Grid: %dx%d | Pattern: %s | Initial living cells: %d\n",
		grid.Rows(), grid.Cols(), pattern, grid.CountLivingCells())
	fmt.Printf("Interval: %v (step %v, floor %v)\n", config.Interval(), config.SpeedStep(), config.MinInterval())
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// displayFinalStats prints the summary after the frontend returns
func displayFinalStats(stats *utils.Stats, threshold int) {
	generation, population, gps, avgPop := stats.Snapshot()
	fmt.Printf("Final stats: %d generations in %.1f seconds | Living: %d | Status: %s\n",
		generation, time.Since(stats.StartTime).Seconds(), population, stats.Status(threshold))
	fmt.Printf("Average: %.1f gen/sec, %.1f avg population\n", gps, avgPop)
}
