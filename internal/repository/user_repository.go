package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB, opts ...Option) UserRepository {
	return &GormUserRepository{store: newStore(db, opts)}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.run(ctx, func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(user).Error
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Taken reports which of username and email already belong to another user
func (r *GormUserRepository) Taken(ctx context.Context, username, email string, excludeID uuid.UUID) (bool, bool, error) {
	var holders []models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Select("id", "username", "email").
			Where("(username = ? OR email = ?) AND id <> ?", username, email, excludeID).
			Find(&holders).Error
	})
	if err != nil {
		return false, false, err
	}

	var usernameTaken, emailTaken bool
	for _, u := range holders {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}
	return usernameTaken, emailTaken, nil
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Count(&n).Error
	})
	return n, err
}

// List retrieves users in insertion order
func (r *GormUserRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		var err error
		users, total, err = findPage[models.User](db, "users", page, nil)
		return err
	})
	return users, total, err
}

// Update locks the user, applies mutate and writes the changed columns
func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.User]) (*models.User, error) {
	var user *models.User
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = updateLocked(tx, id, mutate, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// TouchLastLogin records a successful login
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("last_login", now).Error
	})
	if err != nil {
		return err
	}
	user.LastLogin = &now
	return nil
}

// Delete removes a user. Leading a team or being assigned a task blocks the
// delete; memberships go with the user and task audit columns are cleared.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := rejectIfReferenced(tx, &models.Team{}, "teams", "lead_id = ?", id); err != nil {
			return err
		}
		if err := rejectIfReferenced(tx, &models.Task{}, "tasks", "assignee_id = ?", id); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("created_by = ?", id).
			UpdateColumn("created_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("updated_by = ?", id).
			UpdateColumn("updated_by", nil).Error; err != nil {
			return err
		}

		return deleteByID(tx, &models.User{}, id)
	})
}
