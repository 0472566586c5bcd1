// Package telemetry records frame timing and fixed-step traces.
package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for a frame.
const (
	PhaseVariable = "variable"
	PhaseFixed    = "fixed"
)

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
	FixedSteps    int
	DroppedSteps  int
}

// PerfCollector tracks frame metrics over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	totalFixed   uint64
	totalDropped uint64
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds one frame's sample to the window.
func (p *PerfCollector) Record(frame time.Duration, variable, fixed time.Duration, fixedSteps, dropped int) {
	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: frame,
		Phases: map[string]time.Duration{
			PhaseVariable: variable,
			PhaseFixed:    fixed,
		},
		FixedSteps:   fixedSteps,
		DroppedSteps: dropped,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.totalFixed += uint64(fixedSteps)
	p.totalDropped += uint64(dropped)
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Frame timing (wall-clock delta handed to the runner)
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Fixed steps per frame over the window
	AvgFixedSteps float64
	MaxFixedSteps int

	// Totals since start
	TotalFixedSteps   uint64
	TotalDroppedSteps uint64

	FPS float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:          make(map[string]time.Duration),
		TotalFixedSteps:   p.totalFixed,
		TotalDroppedSteps: p.totalDropped,
	}
	if p.sampleCount == 0 {
		return stats
	}

	var totalFrame time.Duration
	var totalSteps int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalFrame += s.FrameDuration
		totalSteps += s.FixedSteps

		if i == 0 || s.FrameDuration < stats.MinFrame {
			stats.MinFrame = s.FrameDuration
		}
		if s.FrameDuration > stats.MaxFrame {
			stats.MaxFrame = s.FrameDuration
		}
		if s.FixedSteps > stats.MaxFixedSteps {
			stats.MaxFixedSteps = s.FixedSteps
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	n := time.Duration(p.sampleCount)
	stats.AvgFrame = totalFrame / n
	stats.AvgFixedSteps = float64(totalSteps) / float64(p.sampleCount)
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / n
	}
	if stats.AvgFrame > 0 {
		stats.FPS = float64(time.Second) / float64(stats.AvgFrame)
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("fps", s.FPS),
		slog.Int64("variable_us", s.PhaseAvg[PhaseVariable].Microseconds()),
		slog.Int64("fixed_us", s.PhaseAvg[PhaseFixed].Microseconds()),
		slog.Float64("avg_fixed_steps", s.AvgFixedSteps),
		slog.Int("max_fixed_steps", s.MaxFixedSteps),
		slog.Uint64("total_fixed_steps", s.TotalFixedSteps),
		slog.Uint64("total_dropped_steps", s.TotalDroppedSteps),
	)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame         uint64  `csv:"frame"`
	AvgFrameUS    int64   `csv:"avg_frame_us"`
	MinFrameUS    int64   `csv:"min_frame_us"`
	MaxFrameUS    int64   `csv:"max_frame_us"`
	FPS           float64 `csv:"fps"`
	VariableUS    int64   `csv:"variable_us"`
	FixedUS       int64   `csv:"fixed_us"`
	AvgFixedSteps float64 `csv:"avg_fixed_steps"`
	MaxFixedSteps int     `csv:"max_fixed_steps"`
	TotalFixed    uint64  `csv:"total_fixed_steps"`
	TotalDropped  uint64  `csv:"total_dropped_steps"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame uint64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:         frame,
		AvgFrameUS:    s.AvgFrame.Microseconds(),
		MinFrameUS:    s.MinFrame.Microseconds(),
		MaxFrameUS:    s.MaxFrame.Microseconds(),
		FPS:           s.FPS,
		VariableUS:    s.PhaseAvg[PhaseVariable].Microseconds(),
		FixedUS:       s.PhaseAvg[PhaseFixed].Microseconds(),
		AvgFixedSteps: s.AvgFixedSteps,
		MaxFixedSteps: s.MaxFixedSteps,
		TotalFixed:    s.TotalFixedSteps,
		TotalDropped:  s.TotalDroppedSteps,
	}
}
