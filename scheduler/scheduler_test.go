package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
)

type recorder struct {
	mu     sync.Mutex
	frames []Frame
	ch     chan Frame
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Frame, 1024)}
}

func (r *recorder) observe(f Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
	r.ch <- f
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) next(t *testing.T, within time.Duration) Frame {
	t.Helper()
	select {
	case f := <-r.ch:
		return f
	case <-time.After(within):
		t.Fatalf("no frame within %v", within)
		return Frame{}
	}
}

func blinkerGrid(t *testing.T) *model.Grid {
	t.Helper()
	g, err := model.NewGrid(30, 50).WithPattern("Blinker")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewClampsOptions(t *testing.T) {
	s := New(model.NewGrid(3, 3), Options{Interval: -5 * time.Millisecond, Step: -10 * time.Millisecond}, nil)
	if got := s.Interval(); got != DefaultMinInterval {
		t.Fatalf("interval = %v, want %v", got, DefaultMinInterval)
	}
	s.DecreaseSpeed()
	if got := s.Interval(); got != DefaultMinInterval+10*time.Millisecond {
		t.Fatalf("interval = %v after DecreaseSpeed", got)
	}
}

func TestSpeedControlsClampToFloor(t *testing.T) {
	s := New(model.NewGrid(3, 3), DefaultOptions(), nil)
	if got := s.Interval(); got != 300*time.Millisecond {
		t.Fatalf("default interval = %v", got)
	}

	s.IncreaseSpeed()
	s.IncreaseSpeed()
	if got := s.Interval(); got != 100*time.Millisecond {
		t.Fatalf("interval = %v, want 100ms", got)
	}

	for i := 0; i < 5; i++ {
		s.IncreaseSpeed()
	}
	if got := s.Interval(); got != time.Millisecond {
		t.Fatalf("interval = %v, want floor of 1ms", got)
	}

	s.DecreaseSpeed()
	if got := s.Interval(); got != 101*time.Millisecond {
		t.Fatalf("interval = %v, want 101ms", got)
	}

	s.SetInterval(0)
	if got := s.Interval(); got != time.Millisecond {
		t.Fatalf("SetInterval(0) gave %v", got)
	}
}

func TestCustomFloor(t *testing.T) {
	opts := Options{Interval: 250 * time.Millisecond, Step: 100 * time.Millisecond, MinInterval: 50 * time.Millisecond}
	s := New(model.NewGrid(3, 3), opts, nil)
	s.IncreaseSpeed()
	s.IncreaseSpeed()
	s.IncreaseSpeed()
	if got := s.Interval(); got != 50*time.Millisecond {
		t.Fatalf("interval = %v, want 50ms", got)
	}
}

func TestStartPublishesGenerations(t *testing.T) {
	rec := newRecorder()
	start := blinkerGrid(t)
	s := New(start, Options{Interval: 5 * time.Millisecond}, rec.observe)
	defer s.Close()

	s.Start()
	if !s.Running() {
		t.Fatal("not running after Start")
	}

	first := rec.next(t, time.Second)
	if first.Generation != 1 || !first.Running {
		t.Fatalf("first frame = gen %d running %v", first.Generation, first.Running)
	}
	if !first.Grid.Equal(start.NextGeneration()) {
		t.Fatal("first frame is not the next generation of the start grid")
	}

	second := rec.next(t, time.Second)
	if second.Generation != 2 {
		t.Fatalf("second frame generation = %d", second.Generation)
	}
	if !second.Grid.Equal(start) {
		t.Fatal("blinker did not return after two generations")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	rec := newRecorder()
	s := New(blinkerGrid(t), Options{Interval: 40 * time.Millisecond}, rec.observe)
	defer s.Close()

	s.Start()
	s.Start()
	s.Start()

	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// one loop yields one frame immediately plus one per 40ms
	if n := rec.count(); n > 4 {
		t.Fatalf("got %d frames, more than a single loop can produce", n)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, f := range rec.frames {
		if f.Generation != i+1 {
			t.Fatalf("frame %d has generation %d; generations must be sequential", i, f.Generation)
		}
	}
}

func TestStopHaltsLoop(t *testing.T) {
	rec := newRecorder()
	s := New(blinkerGrid(t), Options{Interval: 5 * time.Millisecond}, rec.observe)
	defer s.Close()

	s.Start()
	for i := 0; i < 3; i++ {
		rec.next(t, time.Second)
	}
	s.Stop()
	if s.Running() {
		t.Fatal("still running after Stop")
	}

	gen := s.Generation()
	grid := s.Grid()
	time.Sleep(50 * time.Millisecond)

	if s.Generation() != gen {
		t.Fatalf("generation moved from %d to %d after Stop", gen, s.Generation())
	}
	if s.Grid() != grid {
		t.Fatal("grid replaced after Stop")
	}
}

func TestStopThenStartRunsSingleLoop(t *testing.T) {
	rec := newRecorder()
	s := New(blinkerGrid(t), Options{Interval: 30 * time.Millisecond}, rec.observe)
	defer s.Close()

	s.Start()
	rec.next(t, time.Second)
	s.Stop()
	s.Start()

	time.Sleep(100 * time.Millisecond)
	s.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, f := range rec.frames {
		if f.Generation != i+1 {
			t.Fatalf("frame %d has generation %d", i, f.Generation)
		}
	}
	// 1 before restart, then 1 immediately and at most one per 30ms
	if n := len(rec.frames); n > 6 {
		t.Fatalf("got %d frames, a stale loop kept running", n)
	}
}

func TestSetIntervalAppliesToNextWait(t *testing.T) {
	rec := newRecorder()
	s := New(blinkerGrid(t), Options{Interval: 50 * time.Millisecond}, rec.observe)
	defer s.Close()

	s.Start()
	rec.next(t, time.Second)

	// the wait for generation 2 was scheduled with 50ms before this call
	s.SetInterval(time.Hour)

	if f := rec.next(t, 2*time.Second); f.Generation != 2 {
		t.Fatalf("generation = %d, want 2", f.Generation)
	}

	select {
	case f := <-rec.ch:
		t.Fatalf("generation %d published before the new interval elapsed", f.Generation)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestToggleAndClearPublish(t *testing.T) {
	rec := newRecorder()
	s := New(model.NewGrid(4, 4), DefaultOptions(), rec.observe)

	if err := s.Toggle(1, 2); err != nil {
		t.Fatal(err)
	}
	f := rec.next(t, time.Second)
	if !f.Grid.Alive(1, 2) || f.Running {
		t.Fatal("toggle frame does not show the toggled cell")
	}

	if err := s.Toggle(9, 9); !errors.Is(err, model.ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
	if rec.count() != 1 {
		t.Fatal("failed toggle published a frame")
	}

	s.Step()
	if s.Generation() != 1 {
		t.Fatalf("generation = %d after Step", s.Generation())
	}
	rec.next(t, time.Second)

	s.Clear()
	f = rec.next(t, time.Second)
	if f.Grid.CountLivingCells() != 0 || f.Generation != 0 {
		t.Fatalf("clear frame has %d cells at generation %d", f.Grid.CountLivingCells(), f.Generation)
	}
	if f.Grid.Rows() != 4 || f.Grid.Cols() != 4 {
		t.Fatal("clear changed the grid dimensions")
	}
}

func TestToggleDoesNotMutatePublishedGrid(t *testing.T) {
	s := New(model.NewGrid(4, 4), DefaultOptions(), nil)
	before := s.Grid()
	if err := s.Toggle(0, 0); err != nil {
		t.Fatal(err)
	}
	if before.Alive(0, 0) {
		t.Fatal("toggle mutated a grid already handed out")
	}
	if !s.Grid().Alive(0, 0) {
		t.Fatal("toggle not applied")
	}
}

func TestStepIgnoredWhileRunning(t *testing.T) {
	s := New(blinkerGrid(t), Options{Interval: time.Hour}, nil)
	defer s.Close()

	s.Start()
	// the first generation runs immediately; wait for it
	deadline := time.Now().Add(time.Second)
	for s.Generation() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Step()
	if got := s.Generation(); got != 1 {
		t.Fatalf("generation = %d, Step ran while the loop was running", got)
	}
}

func TestLoadPattern(t *testing.T) {
	rec := newRecorder()
	s := New(model.NewGrid(30, 50), DefaultOptions(), rec.observe)
	s.Step()
	rec.next(t, time.Second)

	if err := s.LoadPattern("Glider"); err != nil {
		t.Fatal(err)
	}
	f := rec.next(t, time.Second)
	if f.Generation != 0 || f.Grid.CountLivingCells() != 5 {
		t.Fatalf("pattern frame gen %d with %d cells", f.Generation, f.Grid.CountLivingCells())
	}

	if err := s.LoadPattern("Unknown"); !errors.Is(err, model.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
	if s.Grid().CountLivingCells() != 5 {
		t.Fatal("failed pattern load replaced the grid")
	}
}

func TestCloseWithoutStart(t *testing.T) {
	s := New(model.NewGrid(2, 2), DefaultOptions(), nil)
	s.Close()
	s.Stop()
	if s.Running() {
		t.Fatal("running after Close")
	}
}

func TestObserverCanReadWhileMutationPending(t *testing.T) {
	var (
		s        *Scheduler
		once     sync.Once
		entered  = make(chan struct{})
		release  = make(chan struct{})
		observed = make(chan bool, 1)
	)
	s = New(model.NewGrid(4, 4), DefaultOptions(), func(Frame) {
		once.Do(func() {
			close(entered)
			<-release
			observed <- s.Running()
		})
	})

	first := make(chan error, 1)
	go func() { first <- s.Toggle(0, 0) }()
	<-entered

	// queue a second edit behind the observer call still in progress
	second := make(chan error, 1)
	go func() { second <- s.Toggle(1, 1) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case running := <-observed:
		if running {
			t.Fatal("observer saw a running scheduler")
		}
	case <-time.After(time.Second):
		t.Fatal("observer blocked reading the scheduler while an edit was pending")
	}

	for _, ch := range []chan error{first, second} {
		select {
		case err := <-ch:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(time.Second):
			t.Fatal("toggle did not complete")
		}
	}
	if g := s.Grid(); !g.Alive(0, 0) || !g.Alive(1, 1) {
		t.Fatal("both toggles should be applied")
	}
}

func TestObserverCanStop(t *testing.T) {
	var s *Scheduler
	s = New(blinkerGrid(t), Options{Interval: time.Millisecond}, func(f Frame) {
		if f.Generation >= 3 {
			s.Stop()
		}
	})
	defer s.Close()

	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for s.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Running() {
		t.Fatal("observer could not stop the scheduler")
	}
	if got := s.Generation(); got != 3 {
		t.Fatalf("generation = %d, want 3", got)
	}
}

func TestCloseWaitsForEarlierLoops(t *testing.T) {
	var (
		once     sync.Once
		entered  = make(chan struct{})
		release  = make(chan struct{})
		finished atomic.Bool
	)
	s := New(blinkerGrid(t), Options{Interval: time.Hour}, func(Frame) {
		once.Do(func() {
			close(entered)
			<-release
			finished.Store(true)
		})
	})

	s.Start()
	<-entered
	// the first loop is still inside the observer when it is canceled
	s.Stop()
	s.Start()
	s.Stop()

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a canceled loop was still publishing")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	if !finished.Load() {
		t.Fatal("Close returned before the observer call finished")
	}
}
