package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	store
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB, opts ...Option) CategoryRepository {
	return &GormCategoryRepository{store: newStore(db, opts)}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.run(ctx, func(db *gorm.DB) error {
		return db.Create(category).Error
	})
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List retrieves categories in insertion order
func (r *GormCategoryRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.Category, int64, error) {
	var (
		categories []models.Category
		total      int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		categories, total, err = findPage[models.Category](db, "categories", page, nil)
		return err
	})
	return categories, total, err
}

// Update locks the category, applies mutate and writes the changed columns
func (r *GormCategoryRepository) Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Category]) (*models.Category, error) {
	var category *models.Category
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		category, err = updateLocked(tx, id, mutate, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category no project uses
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := rejectIfReferenced(tx, &models.Project{}, "projects", "category_id = ?", id); err != nil {
			return err
		}
		return deleteByID(tx, &models.Category{}, id)
	})
}
