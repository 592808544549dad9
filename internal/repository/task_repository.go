package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	store
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB, opts ...Option) TaskRepository {
	return &GormTaskRepository{store: newStore(db, opts)}
}

func checkTaskRefs(tx *gorm.DB, task *models.Task) error {
	if err := requireRow(tx, &models.Project{}, "project_id", task.ProjectID); err != nil {
		return err
	}
	if err := requireRow(tx, &models.User{}, "assignee_id", task.AssigneeID); err != nil {
		return err
	}
	if err := requireRow(tx, &models.User{}, "created_by", task.CreatedBy); err != nil {
		return err
	}
	return requireRow(tx, &models.User{}, "updated_by", task.UpdatedBy)
}

// Create checks every reference and inserts the task in one transaction
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := checkTaskRefs(tx, task); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(task).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Task, error) {
	var task models.Task
	err := r.run(ctx, func(db *gorm.DB) error {
		query := db
		for _, p := range preload {
			query = query.Preload(p)
		}
		return query.Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var (
		tasks []models.Task
		total int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		tasks, total, err = findPage[models.Task](db, "tasks", filter.Page, func(q *gorm.DB) *gorm.DB {
			if filter.TeamID != nil {
				q = q.Joins("JOIN projects ON projects.id = tasks.project_id").
					Where("projects.team_id = ?", *filter.TeamID)
			}
			if filter.ProjectID != nil {
				q = q.Where("tasks.project_id = ?", *filter.ProjectID)
			}
			if filter.AssigneeID != nil {
				q = q.Where("tasks.assignee_id = ?", *filter.AssigneeID)
			}
			if filter.Status != nil {
				q = q.Where("tasks.status = ?", *filter.Status)
			}
			return q
		})
		return err
	})
	return tasks, total, err
}

// Update locks the task, applies mutate, re-checks every reference and
// writes the changed columns
func (r *GormTaskRepository) Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Task]) (*models.Task, error) {
	var task *models.Task
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		task, err = updateLocked(tx, id, mutate, checkTaskRefs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.run(ctx, func(db *gorm.DB) error {
		return deleteByID(db, &models.Task{}, id)
	})
}
