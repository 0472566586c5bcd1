package schedule

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
)

// recorder appends its name to a shared log when run.
func recorder(log *[]string, name string) System {
	return SystemFunc(func(w *ecs.World) {
		*log = append(*log, name)
	})
}

func TestPhaseString(t *testing.T) {
	if Startup.String() != "startup" || Variable.String() != "variable" || Fixed.String() != "fixed" {
		t.Errorf("unexpected phase names: %s %s %s", Startup, Variable, Fixed)
	}
}

func TestBuildOrdersByDependencyNotRegistration(t *testing.T) {
	var log []string
	s := New()
	s.Add(Fixed, "integrate", recorder(&log, "integrate"), "velocity")
	s.Add(Fixed, "velocity", recorder(&log, "velocity"))
	s.Add(Variable, "input", recorder(&log, "input"))

	if err := s.Build(); err != nil {
		t.Fatal(err)
	}

	if got := s.Order(Fixed); !reflect.DeepEqual(got, []string{"velocity", "integrate"}) {
		t.Errorf("fixed order = %v", got)
	}
	if got := s.Order(Variable); !reflect.DeepEqual(got, []string{"input"}) {
		t.Errorf("variable order = %v", got)
	}

	w := ecs.NewWorld()
	if err := s.Run(Fixed, w); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(log, []string{"velocity", "integrate"}) {
		t.Errorf("run log = %v", log)
	}
}

func TestChain(t *testing.T) {
	var log []string
	s := New()
	s.Add(Fixed, "trace", recorder(&log, "trace"), "c")
	s.Chain(Fixed, []Named{
		{"a", recorder(&log, "a")},
		{"b", recorder(&log, "b")},
		{"c", recorder(&log, "c")},
	})

	if err := s.Build(); err != nil {
		t.Fatal(err)
	}
	if got := s.Order(Fixed); !reflect.DeepEqual(got, []string{"a", "b", "c", "trace"}) {
		t.Errorf("order = %v", got)
	}
}

func TestTiesKeepRegistrationOrder(t *testing.T) {
	s := New()
	s.Add(Variable, "x", SystemFunc(func(*ecs.World) {}))
	s.Add(Variable, "y", SystemFunc(func(*ecs.World) {}))
	s.Add(Variable, "z", SystemFunc(func(*ecs.World) {}))
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}
	if got := s.Order(Variable); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Errorf("order = %v", got)
	}
}

func TestBuildErrors(t *testing.T) {
	noop := SystemFunc(func(*ecs.World) {})

	tests := []struct {
		name  string
		setup func(s *Schedule)
		want  error
	}{
		{
			name: "duplicate",
			setup: func(s *Schedule) {
				s.Add(Fixed, "a", noop)
				s.Add(Variable, "a", noop)
			},
			want: ErrDuplicateSystem,
		},
		{
			name: "unknown dependency",
			setup: func(s *Schedule) {
				s.Add(Fixed, "integrate", noop, "velocity")
			},
			want: ErrUnknownDependency,
		},
		{
			name: "cross phase",
			setup: func(s *Schedule) {
				s.Add(Variable, "input", noop)
				s.Add(Fixed, "velocity", noop, "input")
			},
			want: ErrCrossPhase,
		},
		{
			name: "cycle",
			setup: func(s *Schedule) {
				s.Add(Fixed, "a", noop, "b")
				s.Add(Fixed, "b", noop, "a")
			},
			want: ErrCycle,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			tc.setup(s)
			err := s.Build()
			if !errors.Is(err, tc.want) {
				t.Errorf("Build() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuildRetryAfterError(t *testing.T) {
	var ran []string
	sys := func(id string) System {
		return SystemFunc(func(*ecs.World) { ran = append(ran, id) })
	}

	s := New()
	s.Add(Fixed, "integrate", sys("integrate"), "velocity")
	if err := s.Build(); !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("first Build() = %v, want ErrUnknownDependency", err)
	}

	s.Add(Fixed, "velocity", sys("velocity"))
	if err := s.Build(); err != nil {
		t.Fatalf("retried Build() = %v", err)
	}
	if err := s.Run(Fixed, ecs.NewWorld()); err != nil {
		t.Fatal(err)
	}
	if len(ran) != 2 || ran[0] != "velocity" || ran[1] != "integrate" {
		t.Errorf("ran %v, want [velocity integrate]", ran)
	}
}

func TestRunBeforeBuild(t *testing.T) {
	s := New()
	if err := s.Run(Fixed, ecs.NewWorld()); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Run() = %v, want ErrNotBuilt", err)
	}
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}
	if err := s.Build(); !errors.Is(err, ErrFrozen) {
		t.Errorf("second Build() = %v, want ErrFrozen", err)
	}
}

func TestFixedClockAccumulator(t *testing.T) {
	c := NewFixedClockStep(10 * time.Millisecond)

	if c.Delta() != 0 {
		t.Errorf("delta before first step = %v, want 0", c.Delta())
	}

	c.Accumulate(25 * time.Millisecond)
	steps := 0
	for c.Expend() {
		steps++
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
	if c.Overstep() != 5*time.Millisecond {
		t.Errorf("overstep = %v, want 5ms", c.Overstep())
	}
	if c.Delta() != 10*time.Millisecond {
		t.Errorf("delta = %v, want 10ms", c.Delta())
	}

	c.Accumulate(25 * time.Millisecond)
	for c.Expend() {
		steps++
	}
	if steps != 5 {
		t.Errorf("total steps = %d, want 5", steps)
	}
	if c.Overstep() != 0 {
		t.Errorf("overstep = %v, want 0", c.Overstep())
	}
	if c.Elapsed() != 50*time.Millisecond || c.Steps() != 5 {
		t.Errorf("elapsed=%v steps=%d", c.Elapsed(), c.Steps())
	}

	c.Accumulate(-time.Second)
	if c.Overstep() != 0 {
		t.Errorf("negative accumulate changed overstep to %v", c.Overstep())
	}
}

func TestFixedClockFromHz(t *testing.T) {
	c := NewFixedClock(60)
	hz := 60.0
	want := time.Duration(float64(time.Second) / hz)
	if c.Step() != want {
		t.Errorf("step = %v, want %v", c.Step(), want)
	}

	if NewFixedClock(0).Step() != want {
		t.Error("zero hz should fall back to DefaultHz")
	}
}

func TestFixedClockClamp(t *testing.T) {
	c := NewFixedClockStep(10 * time.Millisecond)
	c.Accumulate(123 * time.Millisecond)

	dropped := c.Clamp(4)
	if dropped != 8 {
		t.Errorf("dropped = %d, want 8", dropped)
	}
	if c.Overstep() != 43*time.Millisecond {
		t.Errorf("overstep = %v, want 43ms", c.Overstep())
	}
	if c.Dropped() != 8 {
		t.Errorf("Dropped() = %d", c.Dropped())
	}
	if c.Clamp(0) != 0 {
		t.Error("Clamp(0) should be disabled")
	}
}

func newTestRunner(t *testing.T, step time.Duration, log *[]string) *Runner {
	t.Helper()
	w := ecs.NewWorld()
	ecs.AddResource(w, NewFixedClockStep(step))

	s := New()
	s.Add(Startup, "setup", recorder(log, "setup"))
	s.Add(Variable, "input", recorder(log, "input"))
	s.Chain(Fixed, []Named{
		{"velocity", recorder(log, "velocity")},
		{"integrate", recorder(log, "integrate")},
	})
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}
	return NewRunner(w, s)
}

func TestRunnerStateMachine(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)

	if r.State() != Uninitialized {
		t.Errorf("initial state = %s", r.State())
	}
	if _, err := r.Frame(time.Millisecond); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Frame before Start = %v", err)
	}

	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	if r.State() != Running {
		t.Errorf("state after Start = %s", r.State())
	}
	if err := r.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}

	r.Terminate()
	if r.State() != Terminated {
		t.Errorf("state after Terminate = %s", r.State())
	}
	if _, err := r.Frame(time.Millisecond); !errors.Is(err, ErrTerminated) {
		t.Errorf("Frame after Terminate = %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrTerminated) {
		t.Errorf("Start after Terminate = %v", err)
	}

	if !reflect.DeepEqual(log, []string{"setup"}) {
		t.Errorf("startup should run exactly once, log = %v", log)
	}
}

func TestRunnerStartRequiresClock(t *testing.T) {
	s := New()
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(ecs.NewWorld(), s)
	if err := r.Start(); err == nil {
		t.Error("expected error without FixedClock")
	}
	if r.Clock() != nil {
		t.Error("Clock() should be nil without resource")
	}
}

func TestRunnerFrameInterleaving(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	log = nil

	// 4ms: no fixed step yet.
	stats, err := r.Frame(4 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FixedSteps != 0 {
		t.Errorf("fixed steps = %d, want 0", stats.FixedSteps)
	}

	// 4+17 = 21ms: two steps, 1ms carried.
	stats, err = r.Frame(17 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FixedSteps != 2 {
		t.Errorf("fixed steps = %d, want 2", stats.FixedSteps)
	}
	if r.Clock().Overstep() != time.Millisecond {
		t.Errorf("overstep = %v, want 1ms", r.Clock().Overstep())
	}

	want := []string{
		"input",
		"input", "velocity", "integrate", "velocity", "integrate",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestRunnerStepCap(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)
	r.SetMaxSteps(3)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}

	stats, err := r.Frame(105 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FixedSteps != 3 || stats.DroppedSteps != 7 {
		t.Errorf("steps=%d dropped=%d, want 3/7", stats.FixedSteps, stats.DroppedSteps)
	}
	if r.Clock().Overstep() != 5*time.Millisecond {
		t.Errorf("overstep = %v, want 5ms", r.Clock().Overstep())
	}
}

func TestRunnerPause(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	log = nil

	r.SetPaused(true)
	stats, err := r.Frame(50 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FixedSteps != 0 {
		t.Errorf("paused runner ran %d fixed steps", stats.FixedSteps)
	}
	if !reflect.DeepEqual(log, []string{"input"}) {
		t.Errorf("variable phase should still run while paused, log = %v", log)
	}
}

func TestRunnerRunSteppedFrames(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)

	frames := 0
	src := &SteppedFrames{Delta: 10 * time.Millisecond, Limit: 5}
	err := r.Run(context.Background(), src, func(stats FrameStats) {
		frames++
		if stats.FixedSteps != 1 {
			t.Errorf("frame %d: fixed steps = %d, want 1", frames, stats.FixedSteps)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if frames != 5 {
		t.Errorf("frames = %d, want 5", frames)
	}
	if r.State() != Terminated {
		t.Errorf("state after Run = %s", r.State())
	}
	if r.Clock().Steps() != 5 {
		t.Errorf("clock steps = %d, want 5", r.Clock().Steps())
	}
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	var log []string
	r := newTestRunner(t, 10*time.Millisecond, &log)

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	src := &SteppedFrames{Delta: 10 * time.Millisecond}
	err := r.Run(ctx, src, func(FrameStats) {
		frames++
		if frames == 3 {
			cancel()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if frames != 3 {
		t.Errorf("frames = %d, want 3", frames)
	}
	if r.State() != Terminated {
		t.Errorf("state = %s", r.State())
	}
}
