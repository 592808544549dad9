package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrForeignKey is returned when a write references a row that does not exist.
	ErrForeignKey = errors.New("repository: dangling reference")
	// ErrInUse is returned when a delete is rejected because other rows still
	// reference the target.
	ErrInUse = errors.New("repository: record still referenced")
)

// ReferenceError names the column whose referenced row is missing.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("repository: %s references a missing row", e.Field)
}

// Is makes ReferenceError match ErrForeignKey.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrForeignKey
}

// InUseError names the table that still references the deleted row.
type InUseError struct {
	By string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("repository: record still referenced by %s", e.By)
}

// Is makes InUseError match ErrInUse.
func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// Mutation changes a row loaded under a lock and returns the columns it
// changed. lookup reads related rows inside the same transaction. An error
// aborts the update and is returned unchanged.
type Mutation[T any] func(lookup Lookup, row *T) ([]string, error)

// Lookup reads rows an update depends on without leaving its transaction.
type Lookup interface {
	// TeamLead returns the lead of team id, nil when id is nil or the team
	// has no lead, and ErrNotFound when the team does not exist.
	TeamLead(id *uuid.UUID) (*uuid.UUID, error)

	// ProjectLead returns the lead of the team owning project id, and
	// ErrNotFound when the project does not exist.
	ProjectLead(id *uuid.UUID) (*uuid.UUID, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Taken reports whether username or email belong to a user other than excludeID
	Taken(ctx context.Context, username, email string, excludeID uuid.UUID) (usernameTaken, emailTaken bool, err error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)

	// List retrieves users in insertion order
	List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error)

	// Update applies mutate to the locked user and writes the changed columns
	Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.User]) (*models.User, error)

	// TouchLastLogin records a successful login
	TouchLastLogin(ctx context.Context, user *models.User) error

	// Delete removes a user that no team or task depends on
	Delete(ctx context.Context, id uuid.UUID) error
}

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// Create creates a new team
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a team by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Team, error)

	// List retrieves teams in insertion order
	List(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error)

	// Update applies mutate to the locked team and writes the changed columns
	Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Team]) (*models.Team, error)

	// Delete removes a team and its memberships
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember adds a user to a team
	AddMember(ctx context.Context, member *models.TeamMembership) error

	// FindMember finds a specific team membership
	FindMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMembership, error)

	// UpdateMember saves the role of a membership
	UpdateMember(ctx context.Context, member *models.TeamMembership) error

	// RemoveMember removes a user from a team
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// ListMembers lists the members of a team
	ListMembers(ctx context.Context, teamID uuid.UUID, page utils.PaginationParams) ([]models.TeamMembership, int64, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, page utils.PaginationParams) ([]models.Category, int64, error)
	Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Category]) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	TeamID     *uuid.UUID
	CategoryID *uuid.UUID
	Status     *models.ProjectStatus
	Page       utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)

	// Update applies mutate to the locked project and writes the changed columns
	Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Project]) (*models.Project, error)

	// Delete removes a project no task belongs to
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  *uuid.UUID
	TeamID     *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *models.TaskStatus
	Page       utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update applies mutate to the locked task and writes the changed columns
	Update(ctx context.Context, id uuid.UUID, mutate Mutation[models.Task]) (*models.Task, error)

	// Delete removes a task
	Delete(ctx context.Context, id uuid.UUID) error
}

// translate maps gorm errors onto the repository sentinels. Everything else
// passes through untouched so the retry policy can still classify it.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	default:
		return err
	}
}

// requireRow fails with a ReferenceError unless a row with id exists in model's table.
func requireRow(tx *gorm.DB, model interface{}, field string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return &ReferenceError{Field: field}
	}
	return nil
}

// rejectIfReferenced fails with an InUseError when any row of model matches query.
func rejectIfReferenced(tx *gorm.DB, model interface{}, by string, query string, args ...interface{}) error {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return &InUseError{By: by}
	}
	return nil
}

// deleteByID deletes one row and reports ErrNotFound when nothing matched.
func deleteByID(tx *gorm.DB, model interface{}, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
