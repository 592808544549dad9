package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	store
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB, opts ...Option) TeamRepository {
	return &GormTeamRepository{store: newStore(db, opts)}
}

// Create checks the lead and inserts the team in one transaction
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, "lead_id", team.LeadID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(team).Error
	})
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Team, error) {
	var team models.Team
	err := r.run(ctx, func(db *gorm.DB) error {
		query := db
		for _, p := range preload {
			query = query.Preload(p)
		}
		return query.Where("id = ?", id).First(&team).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// List retrieves teams in insertion order
func (r *GormTeamRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error) {
	var (
		teams []models.Team
		total int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		teams, total, err = findPage[models.Team](db, "teams", page, nil)
		return err
	})
	return teams, total, err
}

// Update locks the team, applies mutate, re-checks the lead and writes the
// changed columns
func (r *GormTeamRepository) Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Team]) (*models.Team, error) {
	var team *models.Team
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		team, err = updateLocked(tx, id, mutate, func(tx *gorm.DB, t *models.Team) error {
			return requireRow(tx, &models.User{}, "lead_id", t.LeadID)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Delete removes a team and its memberships. A team still owning projects
// is left alone.
func (r *GormTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := rejectIfReferenced(tx, &models.Project{}, "projects", "team_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Team{}, id)
	})
}

// AddMember adds a user to a team. The (team, user) unique index rejects
// duplicates that slip past the pre-check.
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMembership) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Team{}, "team_id", &member.TeamID); err != nil {
			return err
		}
		if err := requireRow(tx, &models.User{}, "user_id", &member.UserID); err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.TeamMembership{}).
			Where("team_id = ? AND user_id = ?", member.TeamID, member.UserID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}

		return tx.Omit(clause.Associations).Create(member).Error
	})
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMembership, error) {
	var member models.TeamMembership
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Preload("User").
			Where("team_id = ? AND user_id = ?", teamID, userID).
			First(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMember saves the role of a membership
func (r *GormTeamRepository) UpdateMember(ctx context.Context, member *models.TeamMembership) error {
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.TeamMembership{}).
			Where("team_id = ? AND user_id = ?", member.TeamID, member.UserID).
			UpdateColumn("role", member.Role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RemoveMember removes a user from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("team_id = ? AND user_id = ?", teamID, userID).
			Delete(&models.TeamMembership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListMembers lists the members of a team with their users loaded
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uuid.UUID, page utils.PaginationParams) ([]models.TeamMembership, int64, error) {
	var (
		members []models.TeamMembership
		total   int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		members, total, err = findPage[models.TeamMembership](db, "team_memberships", page,
			func(q *gorm.DB) *gorm.DB {
				return q.Where("team_memberships.team_id = ?", teamID)
			}, "User")
		return err
	})
	return members, total, err
}
