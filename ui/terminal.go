package ui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

const (
	cellWidth = 2
	helpLine  = "space start/stop | c clear | +/- speed | n step | p pattern | q quit"
)

var (
	AliveColor = tcell.GetColor("#9afcb3")
	DeadColor  = tcell.GetColor("#5a5e77")
)

// frameEvent carries a scheduler frame into the tcell event loop
type frameEvent struct {
	when  time.Time
	frame scheduler.Frame
}

func (e *frameEvent) When() time.Time { return e.when }

type quitEvent struct {
	when time.Time
}

func (e *quitEvent) When() time.Time { return e.when }

// Terminal is the interactive frontend. Mouse clicks toggle cells and keys
// drive the scheduler. All drawing happens on the event loop goroutine.
type Terminal struct {
	screen    tcell.Screen
	stats     *utils.Stats
	threshold int

	sched    *scheduler.Scheduler
	frame    scheduler.Frame
	patterns []string
	pattern  int // index into patterns, -1 before the first load
	pressed  bool
}

// NewTerminal wraps an initialized screen. The caller owns the screen and
// finalizes it after Run returns.
func NewTerminal(screen tcell.Screen, stats *utils.Stats, stagnationThreshold int) *Terminal {
	return &Terminal{
		screen:    screen,
		stats:     stats,
		threshold: stagnationThreshold,
		patterns:  model.PatternNames(),
		pattern:   -1,
	}
}

// Observe is the scheduler callback. Stats are updated for every frame here;
// the redraw is posted to the event loop and dropped when its queue is full,
// in which case the next frame redraws.
func (t *Terminal) Observe(f scheduler.Frame) {
	t.stats.Update(f.Generation, f.Grid.CountLivingCells(), f.Grid.Hash())
	_ = t.screen.PostEvent(&frameEvent{when: time.Now(), frame: f})
}

// Run handles input until the user quits or the context is canceled
func (t *Terminal) Run(ctx context.Context, s *scheduler.Scheduler) error {
	defer s.Close()

	t.sched = s
	t.frame = s.Frame()
	t.screen.EnableMouse()

	eg, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)

	eg.Go(func() error {
		<-ctx.Done()
		// wakes PollEvent when the context was canceled from outside. A full
		// queue drops this event, but then eventLoop sees ctx on its next event.
		_ = t.screen.PostEvent(&quitEvent{when: time.Now()})
		return nil
	})
	eg.Go(func() error {
		defer cancel()
		t.eventLoop(ctx)
		return nil
	})

	return eg.Wait()
}

func (t *Terminal) eventLoop(ctx context.Context) {
	t.draw()
	for {
		ev := t.screen.PollEvent()
		if ctx.Err() != nil {
			return
		}
		switch ev := ev.(type) {
		case nil, *quitEvent:
			return
		case *frameEvent:
			t.frame = ev.frame
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if t.handleKey(ev) {
				return
			}
			t.frame = t.sched.Frame()
		case *tcell.EventMouse:
			t.handleMouse(ev)
			t.frame = t.sched.Frame()
		}
		t.draw()
	}
}

// handleKey applies a key press and reports whether the user asked to quit
func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case ' ':
		if t.sched.Running() {
			t.sched.Stop()
		} else {
			t.sched.Start()
		}
	case 'c':
		t.sched.Clear()
		t.stats.Reset()
	case '+', '=':
		t.sched.IncreaseSpeed()
	case '-':
		t.sched.DecreaseSpeed()
	case 'n':
		t.sched.Step()
	case 'p':
		t.nextPattern()
	}
	return false
}

func (t *Terminal) nextPattern() {
	// skip patterns too large for the grid
	for range t.patterns {
		t.pattern = (t.pattern + 1) % len(t.patterns)
		if err := t.sched.LoadPattern(t.patterns[t.pattern]); err == nil {
			t.stats.Reset()
			return
		}
	}
}

// handleMouse toggles the cell under the pointer once per button press
func (t *Terminal) handleMouse(ev *tcell.EventMouse) {
	down := ev.Buttons()&tcell.Button1 != 0
	if down && !t.pressed {
		x, y := ev.Position()
		// clicks outside the grid land on ErrInvalidCoordinate and are ignored
		if err := t.sched.Toggle(y, x/cellWidth); err == nil {
			t.stats.Reset()
		}
	}
	t.pressed = down
}

func (t *Terminal) draw() {
	t.screen.Clear()

	g := t.frame.Grid
	alive := tcell.StyleDefault.Background(AliveColor)
	dead := tcell.StyleDefault.Background(DeadColor)
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			style := dead
			if g.Alive(row, col) {
				style = alive
			}
			for i := 0; i < cellWidth; i++ {
				t.screen.SetContent(col*cellWidth+i, row, ' ', nil, style)
			}
		}
	}

	status := StatusLine(t.frame, t.stats, t.threshold)
	if t.pattern >= 0 {
		status += " | Pattern: " + t.patterns[t.pattern]
	}
	drawText(t.screen, 0, g.Rows()+1, status)
	drawText(t.screen, 0, g.Rows()+2, helpLine)
	t.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}
