package main

import (
	"flag"
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/utils"
)

func TestApplyFlagsOnlyOverridesSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	interactive := fs.Bool("interactive", true, "")
	pattern := fs.String("pattern", "", "")
	if err := fs.Parse([]string{"-interactive=false"}); err != nil {
		t.Fatal(err)
	}

	config := utils.DefaultConfig()
	config.Pattern = "Pulsar"
	applyFlags(&config, fs, *interactive, *pattern)

	if config.Interactive {
		t.Fatal("-interactive=false not applied")
	}
	if config.Pattern != "Pulsar" {
		t.Fatalf("unset -pattern overrode config: %q", config.Pattern)
	}
}

func TestInitializeGame(t *testing.T) {
	config := utils.DefaultConfig()
	grid, err := initializeGame(config)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Rows() != 30 || grid.Cols() != 50 || grid.CountLivingCells() != 0 {
		t.Fatal("default game is not an empty 30x50 grid")
	}

	config.Pattern = "Glider"
	if grid, err = initializeGame(config); err != nil {
		t.Fatal(err)
	}
	if grid.CountLivingCells() != 5 {
		t.Fatalf("glider game has %d cells", grid.CountLivingCells())
	}

	config.Pattern = "Unknown"
	if _, err = initializeGame(config); !errors.Is(err, model.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
}
