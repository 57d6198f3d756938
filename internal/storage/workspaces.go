package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/startup"
)

// LatestInstance returns the most recent instance of a workspace, or
// ErrNotFound if it was never started.
func (s *Storage) LatestInstance(ctx context.Context, workspaceID int64) (*WorkspaceInstance, error) {
	return latestInstance(ctx, s.repos, workspaceID)
}

func latestInstance(ctx context.Context, repos *Repositories, workspaceID int64) (*WorkspaceInstance, error) {
	instance, err := repos.WorkspaceInstances.Last(ctx, Where("workspace_id = ?", workspaceID))
	if err != nil {
		return nil, fmt.Errorf("latest instance of workspace %d: %w", workspaceID, err)
	}
	return instance, nil
}

// StartWorkspace creates a new instance in the preparing phase. It fails with
// ErrInvalidState while the previous instance has not stopped or when the
// owner is blocked.
func (s *Storage) StartWorkspace(ctx context.Context, workspaceID int64, region string) (*WorkspaceInstance, error) {
	var instance *WorkspaceInstance

	err := s.withTx(ctx, func(repos *Repositories) error {
		ws, err := repos.Workspaces.GetByID(ctx, workspaceID)
		if err != nil {
			return err
		}

		owner, err := repos.Users.GetByID(ctx, ws.OwnerID)
		if err != nil {
			return err
		}
		if owner.Blocked {
			return fmt.Errorf("%w: owner %s is blocked", ErrInvalidState, owner.Name)
		}

		latest, err := latestInstance(ctx, repos, workspaceID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		case latest.Phase != string(startup.PhaseStopped):
			return fmt.Errorf("%w: workspace %d already has a %s instance",
				ErrInvalidState, workspaceID, latest.Phase)
		}

		now := time.Now().UTC()
		instance = &WorkspaceInstance{
			WorkspaceID:    workspaceID,
			InstanceID:     ulid.Make().String(),
			Region:         region,
			Phase:          string(startup.PhasePreparing),
			CreatedAt:      now,
			PhaseChangedAt: now,
		}
		if err := ValidateWorkspaceInstance(instance); err != nil {
			return err
		}
		return repos.WorkspaceInstances.Create(ctx, instance)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("workspace_id", workspaceID).
		Str("instance_id", instance.InstanceID).
		Msg("Workspace instance started")

	return instance, nil
}

// StopWorkspace moves the latest active instance to stopping.
func (s *Storage) StopWorkspace(ctx context.Context, workspaceID int64) (*WorkspaceInstance, error) {
	var instance *WorkspaceInstance

	err := s.withTx(ctx, func(repos *Repositories) error {
		if _, err := repos.Workspaces.GetByID(ctx, workspaceID); err != nil {
			return err
		}

		latest, err := latestInstance(ctx, repos, workspaceID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: workspace %d is not running", ErrInvalidState, workspaceID)
		}
		if err != nil {
			return err
		}
		if !startup.Phase(latest.Phase).IsActive() {
			return fmt.Errorf("%w: workspace %d instance is %s", ErrInvalidState, workspaceID, latest.Phase)
		}

		latest.Phase = string(startup.PhaseStopping)
		latest.PhaseChangedAt = time.Now().UTC()
		instance = latest
		return repos.WorkspaceInstances.Update(ctx, latest)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("workspace_id", workspaceID).
		Str("instance_id", instance.InstanceID).
		Msg("Workspace instance stopping")

	return instance, nil
}

// RecordPhase applies a phase reported for the latest instance of a
// workspace. Stopped instances are final.
func (s *Storage) RecordPhase(ctx context.Context, workspaceID int64, phase startup.Phase) (*WorkspaceInstance, error) {
	if phase == startup.PhaseUnknown {
		return nil, invalidf("cannot record phase %s", phase)
	}

	var instance *WorkspaceInstance

	err := s.withTx(ctx, func(repos *Repositories) error {
		latest, err := latestInstance(ctx, repos, workspaceID)
		if err != nil {
			return err
		}
		if latest.Phase == string(startup.PhaseStopped) {
			return fmt.Errorf("%w: instance %s has already stopped", ErrInvalidState, latest.InstanceID)
		}
		if latest.Phase == string(phase) {
			instance = latest
			return nil
		}

		now := time.Now().UTC()
		latest.Phase = string(phase)
		latest.PhaseChangedAt = now
		if phase == startup.PhaseStopped {
			latest.StoppedAt = &now
		}
		instance = latest
		return repos.WorkspaceInstances.Update(ctx, latest)
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("workspace_id", workspaceID).
		Str("instance_id", instance.InstanceID).
		Str("phase", instance.Phase).
		Msg("Workspace phase recorded")

	return instance, nil
}

// FinalizeStopping marks instances that entered stopping at or before cutoff
// as stopped and returns how many were changed.
func (s *Storage) FinalizeStopping(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE workspace_instances
		 SET phase = ?, phase_changed_at = ?, stopped_at = ?
		 WHERE phase = ? AND phase_changed_at <= ?`,
		string(startup.PhaseStopped), now.UTC(), now.UTC(),
		string(startup.PhaseStopping), cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize stopping instances: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Stuck workspace instances finalized")
	}
	return n, nil
}
