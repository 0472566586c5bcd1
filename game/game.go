// Package game composes the world, the movement schedule and the run loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/config"
	"github.com/pthm-cable/freeroam/input"
	"github.com/pthm-cable/freeroam/schedule"
	"github.com/pthm-cable/freeroam/systems"
	"github.com/pthm-cable/freeroam/telemetry"
)

// ErrKeybindingsLocked is returned when keybindings are overridden after the
// loop has started or more than once.
var ErrKeybindingsLocked = errors.New("keybindings can only be overridden once before start")

// Options configures a game instance beyond the loaded config.
type Options struct {
	OutputDir string      // trace.csv, perf.csv and config snapshot (empty = disabled)
	LogStats  bool        // log perf stats every telemetry.stats_window frames
	Hold      []input.Key // keys held for the whole run (headless driving)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	schedule *schedule.Schedule
	runner   *schedule.Runner
	registry *systems.SystemRegistry

	spawn *systems.SpawnSystem
	trace *systems.TraceSystem

	bindings ecs.Resource[input.Keybindings]
	keys     *input.ButtonInput
	hold     []input.Key

	players *ecs.Filter2[components.Transform, components.Velocity]

	// Telemetry
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	lastFrame     schedule.FrameStats

	overridden bool
	closed     bool
	frames     uint64
}

// RegisterMovement adds the movement pipeline to s: the input sampler in the
// variable phase, then velocity resolution and integration chained in the
// fixed phase. Later fixed systems that read positions should run after
// systems.IDIntegrate.
func RegisterMovement(s *schedule.Schedule, w *ecs.World) {
	s.Add(schedule.Variable, systems.IDInput, systems.NewInputSystem(w))
	s.Chain(schedule.Fixed, []schedule.Named{
		{ID: systems.IDVelocity, System: systems.NewVelocitySystem(w)},
		{ID: systems.IDIntegrate, System: systems.NewIntegrateSystem(w)},
	})
}

// NewGame creates a game from cfg. The loop is not started.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()

	kb := cfg.Derived.Keybindings
	keys := input.NewButtonInput()
	ecs.AddResource(world, &kb)
	ecs.AddResource(world, keys)
	ecs.AddResource(world, schedule.NewFixedClockStep(cfg.Derived.FixedStep))

	g := &Game{
		cfg:           cfg,
		world:         world,
		schedule:      schedule.New(),
		registry:      systems.NewSystemRegistry(),
		bindings:      ecs.NewResource[input.Keybindings](world),
		keys:          keys,
		hold:          opts.Hold,
		players:       ecs.NewFilter2[components.Transform, components.Velocity](world),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:      opts.LogStats,
	}

	g.spawn = systems.NewSpawnSystem(world, cfg.Derived.SpawnVec, cfg.Player.Speed)
	g.spawn.Yaw = cfg.Player.Yaw
	g.schedule.Add(schedule.Startup, systems.IDSpawn, g.spawn)

	RegisterMovement(g.schedule, world)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		g.trace = systems.NewTraceSystem(world, om.Trace())
		g.schedule.Add(schedule.Fixed, systems.IDTrace, g.trace, systems.IDIntegrate)
	}

	if err := g.schedule.Build(); err != nil {
		om.Close()
		return nil, fmt.Errorf("building schedule: %w", err)
	}

	g.runner = schedule.NewRunner(world, g.schedule)
	g.runner.SetMaxSteps(cfg.Physics.MaxStepsPerFrame)

	slog.Info("schedule built",
		"startup", g.schedule.Order(schedule.Startup),
		"variable", g.schedule.Order(schedule.Variable),
		"fixed", g.schedule.Order(schedule.Fixed),
		"fixed_step", cfg.Derived.FixedStep,
	)

	return g, nil
}

// OverrideKeybindings replaces the default bindings. It is allowed exactly
// once and only before Start.
func (g *Game) OverrideKeybindings(kb input.Keybindings) error {
	if g.overridden || g.runner.State() != schedule.Uninitialized {
		return ErrKeybindingsLocked
	}
	*g.bindings.Get() = kb
	g.overridden = true
	slog.Debug("keybindings overridden",
		"forward", kb.Forward.String(), "back", kb.Back.String(),
		"left", kb.Left.String(), "right", kb.Right.String(),
		"up", kb.Up.String(), "down", kb.Down.String(),
	)
	return nil
}

// Start runs startup systems and spawns the player.
func (g *Game) Start() error {
	if err := g.runner.Start(); err != nil {
		return err
	}
	if err := g.spawn.Err(); err != nil {
		return err
	}
	slog.Info("simulation started", "players", len(g.spawn.Spawned()))
	return nil
}

// Frame advances the simulation by one wall-clock frame of length delta.
// A failed trace write is reported by the frame that hit it and every
// frame after.
func (g *Game) Frame(delta time.Duration) (schedule.FrameStats, error) {
	g.applyHold()
	stats, err := g.runner.Frame(delta)
	if err != nil {
		return stats, err
	}
	g.recordFrame(stats)
	return stats, g.traceErr()
}

// Run drives frames from src until ctx is cancelled or src is exhausted.
// Start is called first if needed.
func (g *Game) Run(ctx context.Context, src schedule.FrameSource) error {
	if g.runner.State() == schedule.Uninitialized {
		if err := g.Start(); err != nil {
			return err
		}
	}
	g.applyHold()
	err := g.runner.Run(ctx, src, func(stats schedule.FrameStats) {
		g.recordFrame(stats)
	})
	if err != nil {
		return err
	}
	return g.traceErr()
}

// applyHold presses the configured held keys.
func (g *Game) applyHold() {
	for _, k := range g.hold {
		g.keys.Press(k)
	}
}

func (g *Game) traceErr() error {
	if g.trace == nil {
		return nil
	}
	return g.trace.Err()
}

// Keys returns the held-key state refreshed by the platform layer.
func (g *Game) Keys() *input.ButtonInput { return g.keys }

// Keybindings returns the active bindings.
func (g *Game) Keybindings() input.Keybindings { return *g.bindings.Get() }

// World returns the ECS world.
func (g *Game) World() *ecs.World { return g.world }

// Clock returns the fixed clock.
func (g *Game) Clock() *schedule.FixedClock { return g.runner.Clock() }

// Registry returns system metadata.
func (g *Game) Registry() *systems.SystemRegistry { return g.registry }

// Order returns the execution order of phase.
func (g *Game) Order(p schedule.Phase) []string { return g.schedule.Order(p) }

// Paused reports whether fixed time is paused.
func (g *Game) Paused() bool { return g.runner.Paused() }

// SetPaused pauses or resumes fixed time.
func (g *Game) SetPaused(p bool) {
	g.runner.SetPaused(p)
	slog.Info("pause toggled", "paused", p, "frame", g.frames)
}

// Frames returns the number of completed frames.
func (g *Game) Frames() uint64 { return g.frames }

// LastFrame returns stats of the most recent frame.
func (g *Game) LastFrame() schedule.FrameStats { return g.lastFrame }

// Players calls fn for every entity with a transform and velocity.
func (g *Game) Players(fn func(e ecs.Entity, tr *components.Transform, vel *components.Velocity)) {
	query := g.players.Query()
	for query.Next() {
		tr, vel := query.Get()
		fn(query.Entity(), tr, vel)
	}
}

// Close terminates the runner and flushes telemetry output. Calls after the
// first are no-ops.
func (g *Game) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.runner.Terminate()
	if g.outputManager != nil {
		if err := g.outputManager.WritePerf(g.perfCollector.Stats(), g.frames); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	clock := g.runner.Clock()
	slog.Info("simulation stopped",
		"frames", g.frames,
		"fixed_steps", clock.Steps(),
		"dropped_steps", clock.Dropped(),
		"elapsed", clock.Elapsed(),
	)
	return g.outputManager.Close()
}
