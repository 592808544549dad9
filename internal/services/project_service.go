package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/authz"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
)

// ProjectService handles projects. A project is governed by the lead of the
// team it belongs to.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	publisher   events.Publisher
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, publisher events.Publisher) *ProjectService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ProjectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		publisher:   publisher,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Title       string
	Description string
	Status      models.ProjectStatus
	Deadline    *time.Time
	TeamID      *uuid.UUID
	CategoryID  *uuid.UUID
}

// UpdateProjectInput represents a partial project update
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *models.ProjectStatus
	Deadline    utils.Optional[time.Time]
	TeamID      utils.Optional[uuid.UUID]
	CategoryID  utils.Optional[uuid.UUID]
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	TeamID     *uuid.UUID
	CategoryID *uuid.UUID
	Status     *models.ProjectStatus
	Page       utils.PaginationParams
}

// Create creates a project. Members may only create projects for a team they lead.
func (s *ProjectService) Create(ctx context.Context, actor authz.Actor, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	leadID, err := s.teamLead(ctx, input.TeamID, ErrTeamNotFound)
	if err != nil {
		return nil, err
	}
	if !authz.CanPerform(actor, authz.ActionCreate, authz.Target{Kind: authz.KindProject, LeadID: leadID}) {
		return nil, ErrForbidden
	}

	project := &models.Project{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Deadline:    input.Deadline,
		TeamID:      input.TeamID,
		CategoryID:  input.CategoryID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, onCreate(err, nil)
	}

	events.Emit(ctx, s.publisher, events.New("project", events.Created, project.ID, actor.ID))
	return project, nil
}

// Get returns a project
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, onFind(err, ErrProjectNotFound)
	}
	return project, nil
}

// List returns projects matching the filters
func (s *ProjectService) List(ctx context.Context, input ListProjectsInput) ([]models.Project, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.projectRepo.List(ctx, repository.ProjectFilter{
		TeamID:     input.TeamID,
		CategoryID: input.CategoryID,
		Status:     input.Status,
		Page:       input.Page,
	})
}

// Update applies a partial update. Moving a project to another team needs
// permission on both teams.
func (s *ProjectService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.Update(ctx, id, func(lookup repository.Lookup, project *models.Project) ([]string, error) {
		leadID, err := lookup.TeamLead(project.TeamID)
		if err != nil {
			return nil, missingAs(err, ErrTeamNotFound)
		}
		if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindProject, LeadID: leadID}) {
			return nil, ErrForbidden
		}

		var changed []string
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return nil, ErrTitleRequired
			}
			project.Title = title
			changed = append(changed, "title")
		}
		if input.Description != nil {
			project.Description = *input.Description
			changed = append(changed, "description")
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return nil, ErrInvalidStatus
			}
			project.Status = *input.Status
			changed = append(changed, "status")
		}
		if input.Deadline.Set {
			input.Deadline.Apply(&project.Deadline)
			changed = append(changed, "deadline")
		}
		if input.CategoryID.Set {
			input.CategoryID.Apply(&project.CategoryID)
			changed = append(changed, "category_id")
		}

		if input.TeamID.Set && !sameID(input.TeamID.Value, project.TeamID) {
			newLead, err := lookup.TeamLead(input.TeamID.Value)
			if err != nil {
				return nil, missingAs(err, invalidReference("team_id"))
			}
			if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindProject, LeadID: newLead}) {
				return nil, ErrForbidden
			}
			project.TeamID = input.TeamID.Value
			changed = append(changed, "team_id")
		}
		return changed, nil
	})
	if err != nil {
		return nil, onUpdate(err, ErrProjectNotFound, nil)
	}

	events.Emit(ctx, s.publisher, events.New("project", events.Updated, project.ID, actor.ID))
	return project, nil
}

// Delete removes a project that has no tasks
func (s *ProjectService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return onFind(err, ErrProjectNotFound)
	}

	leadID, err := s.teamLead(ctx, project.TeamID, ErrTeamNotFound)
	if err != nil {
		return err
	}
	if !authz.CanPerform(actor, authz.ActionDelete, authz.Target{Kind: authz.KindProject, LeadID: leadID}) {
		return ErrForbidden
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return onDelete(err, ErrProjectNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("project", events.Deleted, project.ID, actor.ID))
	return nil
}

// teamLead returns the lead of the team with id, or nil when id is nil or the
// team has no lead. missing is returned when the team does not exist.
func (s *ProjectService) teamLead(ctx context.Context, id *uuid.UUID, missing error) (*uuid.UUID, error) {
	return lookupTeamLead(ctx, s.teamRepo, id, missing)
}

func lookupTeamLead(ctx context.Context, teams repository.TeamRepository, id *uuid.UUID, missing error) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	team, err := teams.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing
		}
		return nil, err
	}
	return team.LeadID, nil
}

// missingAs replaces repository.ErrNotFound with missing.
func missingAs(err, missing error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return missing
	}
	return err
}

func invalidReference(field string) error {
	return apierrors.Validation(apierrors.ErrCodeInvalidReference, field+" does not reference an existing row")
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
