// Package schedule assigns systems to phases, orders them by explicit
// dependencies and drives the variable/fixed dual-rate loop.
package schedule

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// Phase is a scheduling lane.
type Phase uint8

const (
	// Startup runs once before the steady-state loop.
	Startup Phase = iota
	// Variable runs once per frame.
	Variable
	// Fixed runs zero or more times per frame at the fixed clock's rate.
	Fixed

	phaseCount
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Startup:
		return "startup"
	case Variable:
		return "variable"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// System is a unit of work run against the world.
type System interface {
	Update(w *ecs.World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *ecs.World)

// Update calls f(w).
func (f SystemFunc) Update(w *ecs.World) { f(w) }

// Named pairs a system with its id for Chain.
type Named struct {
	ID     string
	System System
}

// Schedule errors.
var (
	ErrDuplicateSystem   = errors.New("duplicate system id")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCrossPhase        = errors.New("dependency in another phase")
	ErrCycle             = errors.New("dependency cycle")
	ErrFrozen            = errors.New("schedule already built")
	ErrNotBuilt          = errors.New("schedule not built")
)

type entry struct {
	id     string
	phase  Phase
	system System
	after  []string
}

// Schedule is an explicit list of phase-tagged systems. Order within a phase
// is determined by After dependencies; registration order only breaks ties.
type Schedule struct {
	entries []entry
	order   [phaseCount][]entry
	built   bool
}

// New returns an empty schedule.
func New() *Schedule {
	return &Schedule{}
}

// Add registers sys under id in phase, to run after each id in after.
// Validation is deferred to Build.
func (s *Schedule) Add(phase Phase, id string, sys System, after ...string) *Schedule {
	s.entries = append(s.entries, entry{id: id, phase: phase, system: sys, after: after})
	return s
}

// Chain registers systems in phase so that each runs after the previous one.
// The first system runs after each id in after.
func (s *Schedule) Chain(phase Phase, systems []Named, after ...string) *Schedule {
	prev := after
	for _, n := range systems {
		s.Add(phase, n.ID, n.System, prev...)
		prev = []string{n.ID}
	}
	return s
}

// Build validates dependencies and fixes the per-phase order. A failed
// Build leaves the schedule unbuilt, so systems can be added and Build
// retried.
func (s *Schedule) Build() error {
	if s.built {
		return ErrFrozen
	}

	byID := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		if _, dup := byID[e.id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSystem, e.id)
		}
		byID[e.id] = i
	}

	for _, e := range s.entries {
		for _, dep := range e.after {
			j, ok := byID[dep]
			if !ok {
				return fmt.Errorf("%w: %q after %q", ErrUnknownDependency, e.id, dep)
			}
			if s.entries[j].phase != e.phase {
				return fmt.Errorf("%w: %q (%s) after %q (%s)",
					ErrCrossPhase, e.id, e.phase, dep, s.entries[j].phase)
			}
		}
	}

	var order [phaseCount][]entry
	for p := Phase(0); p < phaseCount; p++ {
		o, err := s.sortPhase(p, byID)
		if err != nil {
			return err
		}
		order[p] = o
	}

	s.order = order
	s.built = true
	return nil
}

// sortPhase orders one phase with Kahn's algorithm, always picking the
// earliest-registered ready system.
func (s *Schedule) sortPhase(p Phase, byID map[string]int) ([]entry, error) {
	var idx []int
	for i, e := range s.entries {
		if e.phase == p {
			idx = append(idx, i)
		}
	}

	indegree := make(map[int]int, len(idx))
	dependents := make(map[int][]int, len(idx))
	for _, i := range idx {
		for _, dep := range s.entries[i].after {
			j := byID[dep]
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make(map[int]bool, len(idx))
	order := make([]entry, 0, len(idx))
	for len(order) < len(idx) {
		next := -1
		for _, i := range idx {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for _, i := range idx {
				if !done[i] {
					stuck = append(stuck, s.entries[i].id)
				}
			}
			return nil, fmt.Errorf("%w in %s phase: %v", ErrCycle, p, stuck)
		}
		done[next] = true
		order = append(order, s.entries[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return order, nil
}

// Order returns the system ids of phase in execution order.
func (s *Schedule) Order(p Phase) []string {
	ids := make([]string, len(s.order[p]))
	for i, e := range s.order[p] {
		ids[i] = e.id
	}
	return ids
}

// Run executes every system of phase once, in order.
func (s *Schedule) Run(p Phase, w *ecs.World) error {
	if !s.built {
		return ErrNotBuilt
	}
	for _, e := range s.order[p] {
		e.system.Update(w)
	}
	return nil
}
