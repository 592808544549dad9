package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryService handles project categories. Only admins write them.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	publisher    events.Publisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, publisher events.Publisher) *CategoryService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// CategoryInput represents input for creating or updating a category
type CategoryInput struct {
	Name  *string
	Color *string
}

var categoryTarget = authz.Target{Kind: authz.KindCategory}

// Create creates a category
func (s *CategoryService) Create(ctx context.Context, actor authz.Actor, input CategoryInput) (*models.Category, error) {
	if !authz.CanPerform(actor, authz.ActionCreate, categoryTarget) {
		return nil, ErrForbidden
	}

	category := &models.Category{Color: constants.DefaultColor}
	if input.Name == nil {
		return nil, ErrNameRequired
	}
	if _, err := applyCategory(category, input); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, onCreate(err, ErrCategoryTaken)
	}

	events.Emit(ctx, s.publisher, events.New("category", events.Created, category.ID, actor.ID))
	return category, nil
}

// Get returns a category
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, onFind(err, ErrCategoryNotFound)
	}
	return category, nil
}

// List returns one page of categories
func (s *CategoryService) List(ctx context.Context, page utils.PaginationParams) ([]models.Category, int64, error) {
	return s.categoryRepo.List(ctx, page)
}

// Update applies a partial update
func (s *CategoryService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.Update(ctx, id, func(_ repository.Lookup, category *models.Category) ([]string, error) {
		if !authz.CanPerform(actor, authz.ActionUpdate, categoryTarget) {
			return nil, ErrForbidden
		}
		return applyCategory(category, input)
	})
	if err != nil {
		return nil, onUpdate(err, ErrCategoryNotFound, ErrCategoryTaken)
	}

	events.Emit(ctx, s.publisher, events.New("category", events.Updated, category.ID, actor.ID))
	return category, nil
}

// Delete removes a category no project uses
func (s *CategoryService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return onFind(err, ErrCategoryNotFound)
	}
	if !authz.CanPerform(actor, authz.ActionDelete, categoryTarget) {
		return ErrForbidden
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		return onDelete(err, ErrCategoryNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("category", events.Deleted, category.ID, actor.ID))
	return nil
}

// applyCategory copies the supplied fields onto category and returns the
// columns it changed.
func applyCategory(category *models.Category, input CategoryInput) ([]string, error) {
	var changed []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		category.Name = name
		changed = append(changed, "name")
	}
	if input.Color != nil {
		if !colorPattern.MatchString(*input.Color) {
			return nil, ErrInvalidColor
		}
		category.Color = *input.Color
		changed = append(changed, "color")
	}
	return changed, nil
}
