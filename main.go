package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "config.json", "path to a JSON config file")
		interactive = flag.Bool("interactive", true, "run the interactive terminal UI instead of the live view")
		pattern     = flag.String("pattern", "", "pattern to start with, one of the built-in names")
	)
	flag.Parse()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Using default configuration (%s not found)", *configPath)
		config = utils.DefaultConfig()
	case err != nil:
		log.Fatalf("%+v", err)
	}
	applyFlags(&config, flag.CommandLine, *interactive, *pattern)
	if err = config.Validate(); err != nil {
		log.Fatalf("%+v", err)
	}

	grid, err := initializeGame(config)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if !config.Interactive {
		displayGameInfo(config, grid)
	}

	stats := utils.NewStats()
	fe, cleanup, err := newFrontend(config, stats)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	sched := scheduler.New(grid, scheduler.Options{
		Interval:    config.Interval(),
		Step:        config.SpeedStep(),
		MinInterval: config.MinInterval(),
	}, fe.Observe)

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = fe.Run(ctx, sched)
	cleanup()
	if err != nil {
		log.Fatalf("%+v", err)
	}

	displayFinalStats(stats, config.StagnationThreshold)
}
