package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	store
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB, opts ...Option) ProjectRepository {
	return &GormProjectRepository{store: newStore(db, opts)}
}

func checkProjectRefs(tx *gorm.DB, project *models.Project) error {
	if err := requireRow(tx, &models.Team{}, "team_id", project.TeamID); err != nil {
		return err
	}
	return requireRow(tx, &models.Category{}, "category_id", project.CategoryID)
}

// Create checks the team and category and inserts the project in one transaction
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := checkProjectRefs(tx, project); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(project).Error
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Project, error) {
	var project models.Project
	err := r.run(ctx, func(db *gorm.DB) error {
		query := db
		for _, p := range preload {
			query = query.Preload(p)
		}
		return query.Where("id = ?", id).First(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects with filtering and pagination
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	var (
		projects []models.Project
		total    int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		projects, total, err = findPage[models.Project](db, "projects", filter.Page, func(q *gorm.DB) *gorm.DB {
			if filter.TeamID != nil {
				q = q.Where("projects.team_id = ?", *filter.TeamID)
			}
			if filter.CategoryID != nil {
				q = q.Where("projects.category_id = ?", *filter.CategoryID)
			}
			if filter.Status != nil {
				q = q.Where("projects.status = ?", *filter.Status)
			}
			return q
		})
		return err
	})
	return projects, total, err
}

// Update locks the project, applies mutate, re-checks the team and category
// and writes the changed columns
func (r *GormProjectRepository) Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Project]) (*models.Project, error) {
	var project *models.Project
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		project, err = updateLocked(tx, id, mutate, checkProjectRefs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project no task belongs to
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := rejectIfReferenced(tx, &models.Task{}, "tasks", "project_id = ?", id); err != nil {
			return err
		}
		return deleteByID(tx, &models.Project{}, id)
	})
}
