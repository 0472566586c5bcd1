package game

import (
	"log/slog"

	"github.com/pthm-cable/freeroam/schedule"
)

// recordFrame feeds the perf collector and flushes stats every window.
func (g *Game) recordFrame(stats schedule.FrameStats) {
	g.frames++
	g.lastFrame = stats
	g.perfCollector.Record(stats.Delta, stats.Variable, stats.Fixed, stats.FixedSteps, stats.DroppedSteps)

	if stats.DroppedSteps > 0 {
		slog.Warn("dropped fixed steps",
			"frame", g.frames,
			"dropped", stats.DroppedSteps,
			"delta", stats.Delta,
		)
	}

	window := uint64(g.cfg.Telemetry.StatsWindow)
	if window == 0 || g.frames%window != 0 {
		return
	}

	perfStats := g.perfCollector.Stats()
	if g.logStats {
		slog.Info("perf", "frame", g.frames, "stats", perfStats)
	}
	if g.outputManager != nil {
		if err := g.outputManager.WritePerf(perfStats, g.frames); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
