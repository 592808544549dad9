package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles the identity and credential store.
type UserService struct {
	userRepo   repository.UserRepository
	publisher  events.Publisher
	bcryptCost int
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, publisher events.Publisher, bcryptCost int) *UserService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
	}
}

// CreateUserInput represents input for registering a user
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     models.UserRole
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *models.UserRole
}

// Create registers a user. actor is nil for anonymous registration. The admin
// role needs an admin actor, except for the very first account.
func (s *UserService) Create(ctx context.Context, actor *authz.Actor, input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.UserRoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if role == models.UserRoleAdmin && (actor == nil || !actor.IsAdmin()) {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return nil, ErrAdminRequired
		}
	}

	if err := s.ensureAvailable(ctx, username, email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New("user", events.Created, user.ID, actorID(actor)))
	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, onFind(err, ErrUserNotFound)
	}
	return user, nil
}

// List returns one page of users
func (s *UserService) List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, page)
}

// Update applies a partial update. Members may edit their own record but
// never their role.
func (s *UserService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.Update(ctx, id, func(_ repository.Lookup, user *models.User) ([]string, error) {
		elevates := input.Role != nil && *input.Role != user.Role
		if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindUser, UserID: &user.ID, Elevates: elevates}) {
			return nil, ErrForbidden
		}

		var changed []string
		if input.Username != nil {
			username := strings.TrimSpace(*input.Username)
			if username == "" {
				return nil, ErrUsernameRequired
			}
			user.Username = username
			changed = append(changed, "username")
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" {
				return nil, ErrEmailRequired
			}
			user.Email = email
			changed = append(changed, "email")
		}
		if input.Role != nil {
			user.Role = *input.Role
			changed = append(changed, "role")
		}
		if input.Password != nil {
			if err := validatePassword(*input.Password); err != nil {
				return nil, err
			}
			hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
			changed = append(changed, "password_hash")
		}
		return changed, nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, s.duplicateOf(ctx, id, input)
	}
	if err != nil {
		return nil, onUpdate(err, ErrUserNotFound, ErrUserExists)
	}

	events.Emit(ctx, s.publisher, events.New("user", events.Updated, user.ID, actor.ID))
	return user, nil
}

// Delete removes a user that leads no team and is assigned no task
func (s *UserService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return onFind(err, ErrUserNotFound)
	}

	if !authz.CanPerform(actor, authz.ActionDelete, authz.Target{Kind: authz.KindUser, UserID: &user.ID}) {
		return ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return onDelete(err, ErrUserNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("user", events.Deleted, user.ID, actor.ID))
	return nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string, exclude uuid.UUID) error {
	usernameTaken, emailTaken, err := s.userRepo.Taken(ctx, username, email, exclude)
	if err != nil {
		return fmt.Errorf("failed to check uniqueness: %w", err)
	}
	switch {
	case usernameTaken:
		return ErrUsernameTaken
	case emailTaken:
		return ErrEmailTaken
	}
	return nil
}

// duplicateOf names the field of a rejected update that another user holds.
func (s *UserService) duplicateOf(ctx context.Context, id uuid.UUID, input UpdateUserInput) error {
	var username, email string
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if err := s.ensureAvailable(ctx, username, email, id); err != nil {
		return err
	}
	return ErrUserExists
}

func validatePassword(password string) error {
	switch {
	case len(password) < constants.MinPasswordLength:
		return ErrPasswordTooShort.WithMessage("password must be at least %d characters", constants.MinPasswordLength)
	case len(password) > constants.MaxPasswordLength:
		return ErrPasswordTooLong.WithMessage("password must be at most %d bytes", constants.MaxPasswordLength)
	}
	return nil
}

func actorID(actor *authz.Actor) uuid.UUID {
	if actor == nil {
		return uuid.Nil
	}
	return actor.ID
}
