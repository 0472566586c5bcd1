package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlange-42/ark/ecs"
)

// State is the lifecycle state of a Runner.
type State uint8

const (
	Uninitialized State = iota
	Running
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Runner errors.
var (
	ErrAlreadyStarted = errors.New("runner already started")
	ErrNotStarted     = errors.New("runner not started")
	ErrTerminated     = errors.New("runner terminated")
)

// DefaultMaxSteps bounds fixed steps per frame.
const DefaultMaxSteps = 8

// FrameStats describes what one frame did.
type FrameStats struct {
	Delta        time.Duration // wall-clock delta handed to Frame
	Variable     time.Duration // time spent in the variable phase
	Fixed        time.Duration // time spent in all fixed steps
	FixedSteps   int           // fixed steps run this frame
	DroppedSteps int           // whole steps discarded by the step cap
}

// Runner drives a built schedule against a world: startup once, then
// frames that interleave the variable phase with catch-up fixed steps.
//
// The FixedClock lives in the world as a resource so that fixed systems
// read Δt from the same clock the runner advances.
type Runner struct {
	world    *ecs.World
	schedule *Schedule
	clock    ecs.Resource[FixedClock]
	state    State
	paused   bool
	maxSteps int
}

// NewRunner returns a runner for s. The world must hold a FixedClock
// resource by the time Start is called.
func NewRunner(w *ecs.World, s *Schedule) *Runner {
	return &Runner{
		world:    w,
		schedule: s,
		clock:    ecs.NewResource[FixedClock](w),
		maxSteps: DefaultMaxSteps,
	}
}

// SetMaxSteps sets the per-frame fixed step cap. Zero or negative disables it.
func (r *Runner) SetMaxSteps(n int) { r.maxSteps = n }

// State returns the current lifecycle state.
func (r *Runner) State() State { return r.state }

// Paused reports whether fixed time accumulation is paused.
func (r *Runner) Paused() bool { return r.paused }

// SetPaused pauses or resumes fixed time accumulation. The variable phase
// keeps running while paused.
func (r *Runner) SetPaused(p bool) { r.paused = p }

// Clock returns the world's fixed clock, or nil if none was added.
func (r *Runner) Clock() *FixedClock {
	if !r.clock.Has() {
		return nil
	}
	return r.clock.Get()
}

// Start runs the startup phase once and enters Running.
func (r *Runner) Start() error {
	switch r.state {
	case Running:
		return ErrAlreadyStarted
	case Terminated:
		return ErrTerminated
	}
	if !r.clock.Has() {
		return fmt.Errorf("starting runner: no FixedClock resource")
	}
	if err := r.schedule.Run(Startup, r.world); err != nil {
		return fmt.Errorf("running startup: %w", err)
	}
	r.state = Running
	return nil
}

// Frame runs one variable tick, then as many fixed steps as the accumulated
// time allows. Leftover time below one step carries to the next frame.
func (r *Runner) Frame(delta time.Duration) (FrameStats, error) {
	stats := FrameStats{Delta: delta}
	switch r.state {
	case Uninitialized:
		return stats, ErrNotStarted
	case Terminated:
		return stats, ErrTerminated
	}

	start := time.Now()
	if err := r.schedule.Run(Variable, r.world); err != nil {
		return stats, err
	}
	stats.Variable = time.Since(start)

	clock := r.clock.Get()
	if !r.paused {
		clock.Accumulate(delta)
	}
	stats.DroppedSteps = clock.Clamp(r.maxSteps)

	start = time.Now()
	for clock.Expend() {
		if err := r.schedule.Run(Fixed, r.world); err != nil {
			return stats, err
		}
		stats.FixedSteps++
	}
	stats.Fixed = time.Since(start)

	return stats, nil
}

// Terminate ends the run. Further frames fail with ErrTerminated.
func (r *Runner) Terminate() {
	r.state = Terminated
}

// FrameSource yields the wall-clock delta of each frame. It returns false
// when there are no more frames.
type FrameSource interface {
	Next(ctx context.Context) (time.Duration, bool)
}

// FrameHook observes each completed frame.
type FrameHook func(stats FrameStats)

// Run starts the runner if needed and drives frames from src until ctx is
// cancelled or src is exhausted, then terminates. Cancellation is observed
// between frames only.
func (r *Runner) Run(ctx context.Context, src FrameSource, hook FrameHook) error {
	if r.state == Uninitialized {
		if err := r.Start(); err != nil {
			return err
		}
	}
	defer r.Terminate()

	for ctx.Err() == nil {
		delta, ok := src.Next(ctx)
		if !ok {
			return nil
		}
		stats, err := r.Frame(delta)
		if err != nil {
			return err
		}
		if hook != nil {
			hook(stats)
		}
	}
	return nil
}

// SteppedFrames is a FrameSource yielding a constant delta without waiting.
// Limit of zero means unlimited.
type SteppedFrames struct {
	Delta time.Duration
	Limit int

	n int
}

// Next returns the next constant delta.
func (s *SteppedFrames) Next(ctx context.Context) (time.Duration, bool) {
	if s.Limit > 0 && s.n >= s.Limit {
		return 0, false
	}
	s.n++
	return s.Delta, true
}

// TickerFrames is a FrameSource paced by wall-clock time; each frame's delta
// is the real time elapsed since the previous one.
type TickerFrames struct {
	ticker *time.Ticker
	last   time.Time
}

// NewTickerFrames returns a source ticking every interval.
func NewTickerFrames(interval time.Duration) *TickerFrames {
	return &TickerFrames{ticker: time.NewTicker(interval), last: time.Now()}
}

// Next waits for the next tick.
func (t *TickerFrames) Next(ctx context.Context) (time.Duration, bool) {
	select {
	case now := <-t.ticker.C:
		d := now.Sub(t.last)
		t.last = now
		return d, true
	case <-ctx.Done():
		return 0, false
	}
}

// Stop releases the ticker.
func (t *TickerFrames) Stop() {
	t.ticker.Stop()
}
