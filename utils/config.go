package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by Validate for unusable settings
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for the game
type Config struct {
	Rows                int    `json:"rows"`
	Cols                int    `json:"cols"`
	InitialIntervalMs   int    `json:"initial_interval_ms"`
	SpeedStepMs         int    `json:"speed_step_ms"`
	MinIntervalMs       int    `json:"min_interval_ms"`
	Pattern             string `json:"pattern"`
	Interactive         bool   `json:"interactive"`
	MaxGenerations      int    `json:"max_generations"`
	StopWhenStagnant    bool   `json:"stop_when_stagnant"`
	StagnationThreshold int    `json:"stagnation_threshold"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:                30,
		Cols:                50,
		InitialIntervalMs:   300,
		SpeedStepMs:         100,
		MinIntervalMs:       1,
		Interactive:         true,
		MaxGenerations:      0, // unlimited
		StopWhenStagnant:    false,
		StagnationThreshold: 5,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate rejects settings the grid or scheduler cannot run with
func (c Config) Validate() error {
	switch {
	case c.Rows <= 0 || c.Cols <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	case c.MinIntervalMs <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] min_interval_ms must be positive, got %d", c.MinIntervalMs)
	case c.InitialIntervalMs < c.MinIntervalMs:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] initial_interval_ms %d below min_interval_ms %d",
			c.InitialIntervalMs, c.MinIntervalMs)
	case c.SpeedStepMs <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] speed_step_ms must be positive, got %d", c.SpeedStepMs)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] max_generations must not be negative, got %d", c.MaxGenerations)
	case c.StopWhenStagnant && c.StagnationThreshold <= 0:
		return errors.Wrapf(ErrInvalidConfig, "[Validate] stagnation_threshold must be positive, got %d", c.StagnationThreshold)
	}
	return nil
}

// Interval returns the initial delay between generations
func (c Config) Interval() time.Duration {
	return time.Duration(c.InitialIntervalMs) * time.Millisecond
}

// SpeedStep returns the amount a speed control moves the interval
func (c Config) SpeedStep() time.Duration {
	return time.Duration(c.SpeedStepMs) * time.Millisecond
}

// MinInterval returns the floor for the interval
func (c Config) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}
