package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uilive"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

// LiveOptions controls when a non-interactive run ends
type LiveOptions struct {
	MaxGenerations      int // 0 runs until canceled
	StopWhenStagnant    bool
	StagnationThreshold int
}

// Live redraws every frame in place on a plain terminal and runs the
// scheduler without user input
type Live struct {
	writer   *uilive.Writer
	renderer *model.TextRenderer
	stats    *utils.Stats
	opts     LiveOptions

	frames chan scheduler.Frame
	done   chan struct{}
}

// NewLive returns a frontend writing to out
func NewLive(out io.Writer, stats *utils.Stats, opts LiveOptions) *Live {
	writer := uilive.New()
	writer.Out = out
	return &Live{
		writer:   writer,
		renderer: model.NewTextRenderer(),
		stats:    stats,
		opts:     opts,
		frames:   make(chan scheduler.Frame, 1),
		done:     make(chan struct{}),
	}
}

// Observe is the scheduler callback. It hands frames to Run and drops them
// once Run has returned.
func (l *Live) Observe(f scheduler.Frame) {
	select {
	case l.frames <- f:
	case <-l.done:
	}
}

// Run starts the scheduler and draws frames until the context is canceled or
// one of the LiveOptions limits is reached
func (l *Live) Run(ctx context.Context, s *scheduler.Scheduler) error {
	defer s.Close()
	defer close(l.done)

	if err := l.draw(s.Frame()); err != nil {
		return err
	}
	s.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-l.frames:
			l.stats.Update(f.Generation, f.Grid.CountLivingCells(), f.Grid.Hash())
			if err := l.draw(f); err != nil {
				return err
			}
			if l.finished(f) {
				return nil
			}
		}
	}
}

func (l *Live) finished(f scheduler.Frame) bool {
	if l.opts.MaxGenerations > 0 && f.Generation >= l.opts.MaxGenerations {
		return true
	}
	return l.opts.StopWhenStagnant && l.stats.Status(l.opts.StagnationThreshold) != utils.StatusActive
}

func (l *Live) draw(f scheduler.Frame) error {
	fmt.Fprintln(l.writer, StatusLine(f, l.stats, l.opts.StagnationThreshold))
	if err := l.renderer.Render(l.writer, f.Grid); err != nil {
		return err
	}
	return errors.Wrap(l.writer.Flush(), "[Live.draw] failed to flush frame")
}
