package storage

import (
	"context"
	"fmt"
	"time"
)

// CreateTeam inserts team and, when ownerID is set, makes that user its
// owner in the same transaction.
func (s *Storage) CreateTeam(ctx context.Context, team *Team, ownerID int64) error {
	if err := ValidateTeam(team); err != nil {
		return err
	}

	return s.withTx(ctx, func(repos *Repositories) error {
		if ownerID > 0 {
			if _, err := repos.Users.GetByID(ctx, ownerID); err != nil {
				return err
			}
		}

		if err := repos.Teams.Create(ctx, team); err != nil {
			return err
		}
		if ownerID == 0 {
			return nil
		}

		return repos.TeamMembers.Create(ctx, &TeamMember{
			TeamID:    team.ID,
			UserID:    ownerID,
			Role:      TeamRoleOwner,
			CreatedAt: time.Now().UTC(),
		})
	})
}

// RemoveTeamMember deletes a membership. The last owner of a team cannot be
// removed while other members remain.
func (s *Storage) RemoveTeamMember(ctx context.Context, teamID, userID int64) error {
	return s.withTx(ctx, func(repos *Repositories) error {
		member, err := repos.TeamMembers.First(ctx,
			Where("team_id = ?", teamID),
			Where("user_id = ?", userID),
		)
		if err != nil {
			return fmt.Errorf("member %d of team %d: %w", userID, teamID, err)
		}

		if member.Role == TeamRoleOwner {
			owners, err := repos.TeamMembers.Count(ctx,
				Where("team_id = ?", teamID),
				Where("role = ?", TeamRoleOwner),
			)
			if err != nil {
				return err
			}
			others, err := repos.TeamMembers.Count(ctx,
				Where("team_id = ?", teamID),
				Where("user_id != ?", userID),
			)
			if err != nil {
				return err
			}
			if owners == 1 && others > 0 {
				return fmt.Errorf("%w: cannot remove the last owner of team %d", ErrConflict, teamID)
			}
		}

		return repos.TeamMembers.Delete(ctx, member.ID)
	})
}
