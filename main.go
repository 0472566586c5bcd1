package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/freeroam/camera"
	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/config"
	"github.com/pthm-cable/freeroam/game"
	"github.com/pthm-cable/freeroam/input"
	"github.com/pthm-cable/freeroam/platform"
	"github.com/pthm-cable/freeroam/renderer"
	"github.com/pthm-cable/freeroam/schedule"
	"github.com/pthm-cable/freeroam/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or config.toml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for trace/perf CSV and config snapshot")
	traceDir := flag.String("trace-dir", "", "Alias for -output-dir")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N frames (0 = unlimited)")
	hold := flag.String("hold", "", "Comma-separated keys held for the whole run, e.g. W,D")
	realtime := flag.Bool("realtime", false, "Pace headless frames by wall clock instead of stepping")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	level := cfg.Derived.LogLevel
	if *logLevel != "" {
		if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
			slog.Error("invalid log level", "level", *logLevel, "error", err)
			os.Exit(1)
		}
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	held, err := input.ParseKeys(*hold)
	if err != nil {
		slog.Error("invalid -hold", "error", err)
		os.Exit(1)
	}

	dir := *outputDir
	if dir == "" {
		dir = *traceDir
	}

	opts := game.Options{
		OutputDir: dir,
		LogStats:  *logStats,
		Hold:      held,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		err = runHeadless(ctx, cfg, opts, *maxTicks, *realtime)
	} else {
		err = runWindowed(ctx, cfg, opts, *maxTicks)
	}
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless drives the loop without raylib.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int, realtime bool) (err error) {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing game: %w", cerr)
		}
	}()

	slog.Info("starting headless simulation",
		"fixed_hz", cfg.Physics.FixedHz,
		"frame_delta", cfg.Derived.FrameDelta,
		"max_ticks", maxTicks,
		"hold", opts.Hold,
		"realtime", realtime,
	)

	var src schedule.FrameSource = &schedule.SteppedFrames{Delta: cfg.Derived.FrameDelta, Limit: maxTicks}
	if realtime {
		ticker := schedule.NewTickerFrames(cfg.Derived.FrameDelta)
		defer ticker.Stop()
		src = &limitFrames{src: ticker, limit: maxTicks}
	}

	if err := g.Run(ctx, src); err != nil {
		return err
	}
	if ctx.Err() != nil {
		slog.Info("shutdown requested", "frames", g.Frames())
	} else if maxTicks > 0 {
		slog.Info("max ticks reached", "frames", g.Frames())
	}
	logPlayers(g)
	return nil
}

// runWindowed opens a raylib window and polls the keyboard each frame.
func runWindowed(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) (err error) {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Freeroam")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing game: %w", cerr)
		}
	}()

	if err := g.Start(); err != nil {
		return err
	}

	keyboard := platform.NewKeyboard(g.Keybindings())
	cam := camera.New(cfg.Derived.SpawnVec, camera.DefaultOffset)
	scene := renderer.NewScene(cam)
	hud := ui.NewHUD()
	panel := ui.NewSchedulePanel(int32(cfg.Screen.Width)-220, 10)

	order := make(map[string][]string)
	for _, p := range []schedule.Phase{schedule.Startup, schedule.Variable, schedule.Fixed} {
		order[p.String()] = g.Order(p)
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		keyboard.Poll(g.Keys())
		if platform.Pressed(input.KeyP) {
			g.SetPaused(!g.Paused())
		}
		if rl.IsWindowResized() {
			panel.SetPosition(int32(rl.GetScreenWidth())-220, 10)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1 + 0.1*float64(wheel))
		}

		dt := rl.GetFrameTime()
		stats, err := g.Frame(time.Duration(float64(dt) * float64(time.Second)))
		if err != nil {
			return err
		}

		var pos, vel r3.Vec
		g.Players(func(_ ecs.Entity, tr *components.Transform, v *components.Velocity) {
			pos, vel = tr.Translation, v.Vec
		})
		cam.Follow(pos, float64(dt))

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 24, G: 26, B: 32, A: 255})

		scene.Begin()
		g.Players(func(_ ecs.Entity, tr *components.Transform, v *components.Velocity) {
			scene.DrawPlayer(tr.Translation, v.Vec)
		})
		scene.End()

		clock := g.Clock()
		if hud.Draw(ui.HUDData{
			Title:      "Freeroam",
			Frames:     g.Frames(),
			FixedSteps: clock.Steps(),
			Dropped:    clock.Dropped(),
			Elapsed:    clock.Elapsed(),
			Overstep:   clock.OverstepFraction(),
			FPS:        rl.GetFPS(),
			Paused:     g.Paused(),
			Position:   pos,
			Velocity:   vel,
			Input:      heldNames(g.Keys()),
		}) {
			g.SetPaused(!g.Paused())
		}
		panel.Draw(ui.SchedulePanelData{
			Phases: g.Registry().Categories(),
			Order:  order,
			Timings: map[string]time.Duration{
				schedule.Variable.String(): stats.Variable,
				schedule.Fixed.String():    stats.Fixed,
			},
			Registry: g.Registry(),
		})
		kb := g.Keybindings()
		hud.DrawControls(int32(rl.GetScreenHeight()), fmt.Sprintf(
			"Move: %s/%s/%s/%s  Up/Down: %s/%s  Pause: P  Zoom: wheel",
			kb.Forward, kb.Left, kb.Back, kb.Right, kb.Up, kb.Down,
		))

		rl.EndDrawing()

		if maxTicks > 0 && g.Frames() >= uint64(maxTicks) {
			slog.Info("max ticks reached", "frames", g.Frames())
			break
		}
	}
	logPlayers(g)
	return nil
}

// limitFrames stops src after limit frames. Zero means unlimited.
type limitFrames struct {
	src   schedule.FrameSource
	limit int
	n     int
}

func (l *limitFrames) Next(ctx context.Context) (time.Duration, bool) {
	if l.limit > 0 && l.n >= l.limit {
		return 0, false
	}
	l.n++
	return l.src.Next(ctx)
}

func logPlayers(g *game.Game) {
	g.Players(func(e ecs.Entity, tr *components.Transform, v *components.Velocity) {
		slog.Info("player state",
			"entity", e.ID(),
			"x", tr.Translation.X, "y", tr.Translation.Y, "z", tr.Translation.Z,
			"vx", v.Vec.X, "vy", v.Vec.Y, "vz", v.Vec.Z,
		)
	})
}

func heldNames(b *input.ButtonInput) string {
	keys := b.Pressed()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return strings.Join(names, " ")
}
