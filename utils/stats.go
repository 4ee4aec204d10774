package utils

import (
	"sync"
	"time"
)

const historySize = 5

// Status summarizes how a run is evolving
type Status string

const (
	StatusActive   Status = "Active"
	StatusStagnant Status = "Stagnant"
	StatusExtinct  Status = "Extinct"
)

// Stats for performance monitoring. Safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	GenerationsPerSecond float64
	AveragePopulation    float64
	Generation           int
	Population           int
	StartTime            time.Time
	StagnantCount        int

	lastUpdate time.Time
	history    []string // recent grid hashes for cycle detection
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one generation. hash identifies the grid state so short
// cycles (still lifes, period 2 and 3 oscillators) can be detected.
func (s *Stats) Update(generation, population int, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if !s.lastUpdate.IsZero() && generation > s.Generation {
		if d := now.Sub(s.lastUpdate); d > 0 {
			s.GenerationsPerSecond = float64(generation-s.Generation) / d.Seconds()
		}
	}
	s.lastUpdate = now
	s.Generation = generation
	s.Population = population

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}

	if s.seenLocked(hash) {
		s.StagnantCount++
	} else {
		s.StagnantCount = 0
	}
	s.history = append(s.history, hash)
	if len(s.history) > historySize {
		s.history = s.history[1:]
	}
}

// seenLocked checks the last three states for a repeat
func (s *Stats) seenLocked(hash string) bool {
	for i := len(s.history) - 1; i >= 0 && i >= len(s.history)-3; i-- {
		if s.history[i] == hash {
			return true
		}
	}
	return false
}

// Reset forgets the history, e.g. after the grid was cleared or edited
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.StagnantCount = 0
	s.AveragePopulation = 0
	s.GenerationsPerSecond = 0
	s.lastUpdate = time.Time{}
}

// Status reports Extinct, Stagnant once the grid repeated for threshold
// generations in a row, or Active
func (s *Stats) Status(threshold int) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.Population == 0:
		return StatusExtinct
	case threshold > 0 && s.StagnantCount >= threshold:
		return StatusStagnant
	default:
		return StatusActive
	}
}

// Snapshot returns a copy of the counters
func (s *Stats) Snapshot() (generation, population int, gps, avgPop float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Generation, s.Population, s.GenerationsPerSecond, s.AveragePopulation
}
