package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/schedule"
	"github.com/pthm-cable/freeroam/telemetry"
)

// TraceSink receives one batch of records per fixed step.
type TraceSink interface {
	Write(records []telemetry.TraceRecord) error
}

// TraceSystem records each player's post-step state. It only reads
// components, so it must be ordered after IntegrateSystem.
type TraceSystem struct {
	filter *ecs.Filter4[components.Player, components.Transform, components.Velocity, components.MoveInput]
	clock  ecs.Resource[schedule.FixedClock]
	sink   TraceSink

	buf []telemetry.TraceRecord
	err error
}

// NewTraceSystem creates a trace system writing to sink.
func NewTraceSystem(w *ecs.World, sink TraceSink) *TraceSystem {
	return &TraceSystem{
		filter: ecs.NewFilter4[components.Player, components.Transform, components.Velocity, components.MoveInput](w),
		clock:  ecs.NewResource[schedule.FixedClock](w),
		sink:   sink,
	}
}

// Update writes one record per entity. The first write error disables the
// system and is kept for Err.
func (s *TraceSystem) Update(w *ecs.World) {
	if s.sink == nil || s.err != nil || !s.clock.Has() {
		return
	}
	clock := s.clock.Get()
	step := clock.Steps()
	elapsed := clock.Elapsed().Seconds()

	s.buf = s.buf[:0]
	query := s.filter.Query()
	for query.Next() {
		_, tr, vel, in := query.Get()
		s.buf = append(s.buf, telemetry.TraceRecord{
			Step:    step,
			Elapsed: elapsed,
			Entity:  query.Entity().ID(),
			PosX:    tr.Translation.X,
			PosY:    tr.Translation.Y,
			PosZ:    tr.Translation.Z,
			VelX:    vel.Vec.X,
			VelY:    vel.Vec.Y,
			VelZ:    vel.Vec.Z,
			InputX:  in.Dir.X,
			InputY:  in.Dir.Y,
			InputZ:  in.Dir.Z,
		})
	}

	s.err = s.sink.Write(s.buf)
}

// Err returns the write error that stopped tracing, if any.
func (s *TraceSystem) Err() error { return s.err }
