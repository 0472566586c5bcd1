package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/config"
	"github.com/pthm-cable/freeroam/game"
	"github.com/pthm-cable/freeroam/input"
)

// Case is one point of the sweep.
type Case struct {
	FixedHz    float64
	FrameDelta time.Duration
	Jitter     float64 // relative frame delta noise in [0, 1)
}

// Result is the outcome of one case, written as a CSV row.
type Result struct {
	FixedHz       float64 `csv:"fixed_hz"`
	FrameMS       float64 `csv:"frame_ms"`
	Jitter        float64 `csv:"jitter"`
	Frames        int     `csv:"frames"`
	FixedSteps    uint64  `csv:"fixed_steps"`
	DroppedSteps  uint64  `csv:"dropped_steps"`
	SimSeconds    float64 `csv:"sim_seconds"`
	ExpectedDist  float64 `csv:"expected_dist"`
	ActualDist    float64 `csv:"actual_dist"`
	AbsError      float64 `csv:"abs_error"`
	StepsMean     float64 `csv:"steps_per_frame_mean"`
	StepsStdDev   float64 `csv:"steps_per_frame_std"`
	OverstepFinal float64 `csv:"overstep_final"`
}

// Evaluate runs frames frames of c with forward held and compares the
// distance travelled against speed × simulated time.
func Evaluate(base *config.Config, c Case, frames int, seed int64) (Result, error) {
	cfg := *base
	cfg.Physics.FixedHz = c.FixedHz
	if err := cfg.Refresh(); err != nil {
		return Result{}, err
	}

	g, err := game.NewGame(&cfg, game.Options{
		Hold: []input.Key{cfg.Derived.Keybindings.Forward},
	})
	if err != nil {
		return Result{}, err
	}
	defer g.Close()

	if err := g.Start(); err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	steps := make([]float64, 0, frames)
	for i := 0; i < frames; i++ {
		d := c.FrameDelta
		if c.Jitter > 0 {
			d = time.Duration(float64(d) * (1 + c.Jitter*(2*rng.Float64()-1)))
		}
		stats, err := g.Frame(d)
		if err != nil {
			return Result{}, fmt.Errorf("frame %d: %w", i, err)
		}
		steps = append(steps, float64(stats.FixedSteps))
	}

	var pos r3.Vec
	g.Players(func(_ ecs.Entity, tr *components.Transform, _ *components.Velocity) {
		pos = tr.Translation
	})

	clock := g.Clock()
	sim := clock.Elapsed().Seconds()
	expected := cfg.Player.Speed * sim
	actual := r3.Norm(r3.Sub(pos, cfg.Derived.SpawnVec))
	mean, std := stat.MeanStdDev(steps, nil)

	return Result{
		FixedHz:       c.FixedHz,
		FrameMS:       float64(c.FrameDelta) / float64(time.Millisecond),
		Jitter:        c.Jitter,
		Frames:        frames,
		FixedSteps:    clock.Steps(),
		DroppedSteps:  clock.Dropped(),
		SimSeconds:    sim,
		ExpectedDist:  expected,
		ActualDist:    actual,
		AbsError:      abs(actual - expected),
		StepsMean:     mean,
		StepsStdDev:   std,
		OverstepFinal: clock.OverstepFraction(),
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
