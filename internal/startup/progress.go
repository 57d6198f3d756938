// Package startup estimates how far a workspace instance has progressed
// through its startup sequence.
//
// The cluster only reports coarse lifecycle phases, so the estimate fills the
// time between phase changes with an exponential approach: every startup
// phase owns a band of the progress bar, and within a band progress closes in
// on the band's upper edge without ever reaching it until the next phase is
// reported.
package startup

import (
	"fmt"
	"math"
	"time"
)

// Phase is a workspace instance lifecycle phase.
type Phase string

// Instance phases, in lifecycle order.
const (
	PhaseUnknown      Phase = "unknown"
	PhasePreparing    Phase = "preparing"
	PhaseBuilding     Phase = "building"
	PhasePending      Phase = "pending"
	PhaseCreating     Phase = "creating"
	PhaseInitializing Phase = "initializing"
	PhaseRunning      Phase = "running"
	PhaseInterrupted  Phase = "interrupted"
	PhaseStopping     Phase = "stopping"
	PhaseStopped      Phase = "stopped"
)

// Phases lists every known phase in lifecycle order.
var Phases = []Phase{
	PhasePreparing,
	PhaseBuilding,
	PhasePending,
	PhaseCreating,
	PhaseInitializing,
	PhaseRunning,
	PhaseInterrupted,
	PhaseStopping,
	PhaseStopped,
}

// ParsePhase returns the Phase named s.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if string(p) == s {
			return p, nil
		}
	}
	return PhaseUnknown, fmt.Errorf("unknown workspace phase %q", s)
}

// IsActive reports whether an instance in phase p is starting or running.
func (p Phase) IsActive() bool {
	switch p {
	case PhasePreparing, PhaseBuilding, PhasePending, PhaseCreating,
		PhaseInitializing, PhaseRunning, PhaseInterrupted:
		return true
	}
	return false
}

// Stage is the progress band owned by a startup phase.
type Stage struct {
	Phase Phase
	// From and To bound the band in percent; progress stays below To.
	From, To float64
	// Expected is the time constant of the exponential approach.
	Expected time.Duration
	Message  string
}

// DefaultStages is the startup sequence used when none is configured.
var DefaultStages = []Stage{
	{PhasePreparing, 0, 10, 5 * time.Second, "Preparing workspace"},
	{PhaseBuilding, 10, 40, 60 * time.Second, "Building workspace image"},
	{PhasePending, 40, 50, 10 * time.Second, "Allocating resources"},
	{PhaseCreating, 50, 70, 20 * time.Second, "Pulling container image"},
	{PhaseInitializing, 70, 95, 30 * time.Second, "Initializing content"},
}

// Progress is a point-in-time startup estimate.
type Progress struct {
	Phase    Phase   `json:"phase"`
	Percent  float64 `json:"percent"`
	Starting bool    `json:"starting"`
	Message  string  `json:"message"`
}

// Process maps phases and elapsed time to progress estimates.
type Process struct {
	stages []Stage
}

// NewProcess creates a Process over stages, which must be ordered with
// contiguous, increasing bands. A nil slice selects DefaultStages.
func NewProcess(stages []Stage) (*Process, error) {
	if stages == nil {
		stages = DefaultStages
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("at least one startup stage is required")
	}

	prevTo := 0.0
	seen := make(map[Phase]bool, len(stages))
	for _, s := range stages {
		if s.From != prevTo {
			return nil, fmt.Errorf("stage %s starts at %.1f, expected %.1f", s.Phase, s.From, prevTo)
		}
		if s.To <= s.From || s.To > 100 {
			return nil, fmt.Errorf("stage %s has invalid band [%.1f, %.1f)", s.Phase, s.From, s.To)
		}
		if s.Expected <= 0 {
			return nil, fmt.Errorf("stage %s expected duration must be greater than 0", s.Phase)
		}
		if seen[s.Phase] {
			return nil, fmt.Errorf("stage %s listed twice", s.Phase)
		}
		seen[s.Phase] = true
		prevTo = s.To
	}

	return &Process{stages: append([]Stage(nil), stages...)}, nil
}

// Estimate returns the progress of an instance that has been in phase for
// elapsed.
func (p *Process) Estimate(phase Phase, elapsed time.Duration) Progress {
	switch phase {
	case PhaseRunning:
		return Progress{Phase: phase, Percent: 100, Message: "Workspace is running"}
	case PhaseInterrupted:
		// Holds at the start of the last band until the instance recovers.
		last := p.stages[len(p.stages)-1]
		return Progress{Phase: phase, Percent: last.From, Starting: true, Message: "Workspace connection interrupted"}
	case PhaseStopping:
		return Progress{Phase: phase, Message: "Stopping workspace"}
	case PhaseStopped:
		return Progress{Phase: phase, Message: "Workspace stopped"}
	}

	stage, ok := p.stage(phase)
	if !ok {
		return Progress{Phase: phase}
	}

	if elapsed < 0 {
		elapsed = 0
	}
	fraction := 1 - math.Exp(-float64(elapsed)/float64(stage.Expected))
	percent := stage.From + (stage.To-stage.From)*fraction
	// Exp underflow would land exactly on To; keep the band half-open.
	if percent >= stage.To {
		percent = math.Nextafter(stage.To, stage.From)
	}

	return Progress{
		Phase:    phase,
		Percent:  percent,
		Starting: true,
		Message:  stage.Message,
	}
}

func (p *Process) stage(phase Phase) (Stage, bool) {
	for _, s := range p.stages {
		if s.Phase == phase {
			return s, true
		}
	}
	return Stage{}, false
}
