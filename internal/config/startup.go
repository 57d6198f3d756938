package config

import (
	"time"

	"wsadmin/internal/startup"
)

// Stages returns the startup bands with the configured time constants.
func (s StartupConfig) Stages() []startup.Stage {
	expected := map[startup.Phase]time.Duration{
		startup.PhasePreparing:    s.Preparing,
		startup.PhaseBuilding:     s.Building,
		startup.PhasePending:      s.Pending,
		startup.PhaseCreating:     s.Creating,
		startup.PhaseInitializing: s.Initializing,
	}

	stages := make([]startup.Stage, len(startup.DefaultStages))
	for i, st := range startup.DefaultStages {
		if d, ok := expected[st.Phase]; ok && d > 0 {
			st.Expected = d
		}
		stages[i] = st
	}
	return stages
}
