// Package scheduler drives a grid forward one generation at a time on a
// user-adjustable interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
)

const (
	DefaultInterval    = 300 * time.Millisecond
	DefaultStep        = 100 * time.Millisecond
	DefaultMinInterval = time.Millisecond
)

// Options holds the timing knobs of a Scheduler
type Options struct {
	Interval    time.Duration // delay between generations
	Step        time.Duration // amount IncreaseSpeed/DecreaseSpeed move the interval
	MinInterval time.Duration // floor for the interval, never below 1ms
}

// DefaultOptions mirrors the interactive defaults: 300ms between generations,
// adjusted in 100ms steps
func DefaultOptions() Options {
	return Options{
		Interval:    DefaultInterval,
		Step:        DefaultStep,
		MinInterval: DefaultMinInterval,
	}
}

// Frame is a published snapshot of the simulation
type Frame struct {
	Generation int
	Grid       *model.Grid
	Running    bool
	Interval   time.Duration
}

// Observer receives every new frame, in the order the grid was replaced.
// It is called without the state lock held, so it may use the getters and
// Stop, but must not call Toggle, Clear, Step, LoadPattern or Close
// synchronously.
type Observer func(Frame)

// errSkip aborts a mutation without publishing
var errSkip = errors.New("skip")

// Scheduler owns the current grid and the run/stop state
type Scheduler struct {
	// pubMu is always taken before mu and held across the observer call so
	// frames go out in mutation order
	pubMu    sync.Mutex
	observer Observer

	mu         sync.Mutex
	grid       *model.Grid
	generation int
	running    bool
	interval   time.Duration
	step       time.Duration
	min        time.Duration
	cancel     context.CancelFunc

	loops sync.WaitGroup
}

// New creates a stopped scheduler around the given grid
func New(grid *model.Grid, opts Options, observer Observer) *Scheduler {
	if opts.MinInterval < DefaultMinInterval {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.Step < 0 {
		opts.Step = -opts.Step
	}
	s := &Scheduler{
		grid:     grid,
		step:     opts.Step,
		min:      opts.MinInterval,
		observer: observer,
	}
	s.interval = s.clamp(opts.Interval)
	return s
}

func (s *Scheduler) clamp(d time.Duration) time.Duration {
	return max(d, s.min)
}

// Start begins the generation loop. It is a no-op while already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel

	s.loops.Add(1)
	go s.loop(ctx)
}

// Stop halts the generation loop. A generation already being computed is
// completed and published; nothing is scheduled after it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
	s.cancel = nil
}

// Close stops the scheduler and waits for every loop goroutine, including
// ones canceled by earlier Stop calls, to exit
func (s *Scheduler) Close() {
	s.Stop()
	s.loops.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.loops.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		var wait time.Duration
		err := s.mutate(func() error {
			if !s.running || ctx.Err() != nil {
				return errSkip
			}
			s.advanceLocked()
			wait = s.interval
			return nil
		})
		if err != nil {
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// advanceLocked replaces the grid with its next generation
func (s *Scheduler) advanceLocked() {
	s.grid = s.grid.NextGeneration()
	s.generation++
}

func (s *Scheduler) frameLocked() Frame {
	return Frame{
		Generation: s.generation,
		Grid:       s.grid,
		Running:    s.running,
		Interval:   s.interval,
	}
}

// mutate runs fn under mu and, unless fn fails, hands the resulting frame to
// the observer after mu is released
func (s *Scheduler) mutate(fn func() error) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	frame := s.frameLocked()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(frame)
	}
	return nil
}

// Step computes and publishes a single generation. It does nothing while the
// loop is running.
func (s *Scheduler) Step() {
	_ = s.mutate(func() error {
		if s.running {
			return errSkip
		}
		s.advanceLocked()
		return nil
	})
}

// Toggle flips one cell of the current grid
func (s *Scheduler) Toggle(row, col int) error {
	return s.mutate(func() error {
		next, err := s.grid.Toggle(row, col)
		if err != nil {
			return err
		}
		s.grid = next
		return nil
	})
}

// Clear replaces the current grid with an empty one of the same size
func (s *Scheduler) Clear() {
	_ = s.mutate(func() error {
		s.grid = model.NewGrid(s.grid.Rows(), s.grid.Cols())
		s.generation = 0
		return nil
	})
}

// LoadPattern replaces the current grid with an empty one carrying the named
// pattern at its center
func (s *Scheduler) LoadPattern(name string) error {
	return s.mutate(func() error {
		next, err := model.NewGrid(s.grid.Rows(), s.grid.Cols()).WithPattern(name)
		if err != nil {
			return err
		}
		s.grid = next
		s.generation = 0
		return nil
	})
}

// SetInterval changes the delay between generations. A wait that is already
// pending keeps its old duration.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = s.clamp(d)
}

// IncreaseSpeed shortens the interval by one step, never below the floor
func (s *Scheduler) IncreaseSpeed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = s.clamp(s.interval - s.step)
}

// DecreaseSpeed lengthens the interval by one step
func (s *Scheduler) DecreaseSpeed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval += s.step
}

// Grid returns the current grid
func (s *Scheduler) Grid() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Generation returns the number of generations computed since the last reset
func (s *Scheduler) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Running reports whether the generation loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the current delay between generations
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Frame returns a snapshot of the current state without publishing it
func (s *Scheduler) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}
