package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/utils"
)

// TaskService handles tasks. A task may be changed by its assignee or by the
// lead of its project's team.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	publisher   events.Publisher
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, publisher events.Publisher) *TaskService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		publisher:   publisher,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    *int
	Deadline    *time.Time
	ProjectID   *uuid.UUID
	AssigneeID  *uuid.UUID
}

// UpdateTaskInput represents a partial task update
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *int
	Deadline    utils.Optional[time.Time]
	ProjectID   utils.Optional[uuid.UUID]
	AssigneeID  utils.Optional[uuid.UUID]
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID  *uuid.UUID
	TeamID     *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *models.TaskStatus
	Page       utils.PaginationParams
}

// Create creates a task. Members may create tasks in projects of teams they
// lead, or tasks assigned to themselves.
func (s *TaskService) Create(ctx context.Context, actor authz.Actor, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	priority := constants.DefaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	leadID, err := s.projectLead(ctx, input.ProjectID, ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	target := authz.Target{Kind: authz.KindTask, LeadID: leadID, AssigneeID: input.AssigneeID}
	if !authz.CanPerform(actor, authz.ActionCreate, target) {
		return nil, ErrForbidden
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    input.Deadline,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, onCreate(err, nil)
	}

	events.Emit(ctx, s.publisher, events.New("task", events.Created, task.ID, actor.ID))
	return task, nil
}

// Get returns a task
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, onFind(err, ErrTaskNotFound)
	}
	return task, nil
}

// List returns tasks matching every supplied filter
func (s *TaskService) List(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.taskRepo.List(ctx, repository.TaskFilter{
		ProjectID:  input.ProjectID,
		TeamID:     input.TeamID,
		AssigneeID: input.AssigneeID,
		Status:     input.Status,
		Page:       input.Page,
	})
}

// Update applies a partial update. The actor must be allowed on the task both
// as stored and as it will be saved.
func (s *TaskService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.Update(ctx, id, func(lookup repository.Lookup, task *models.Task) ([]string, error) {
		leadID, err := lookup.ProjectLead(task.ProjectID)
		if err != nil {
			return nil, missingAs(err, ErrProjectNotFound)
		}
		if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindTask, LeadID: leadID, AssigneeID: task.AssigneeID}) {
			return nil, ErrForbidden
		}

		var changed []string
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return nil, ErrTitleRequired
			}
			task.Title = title
			changed = append(changed, "title")
		}
		if input.Description != nil {
			task.Description = *input.Description
			changed = append(changed, "description")
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return nil, ErrInvalidStatus
			}
			task.Status = *input.Status
			changed = append(changed, "status")
		}
		if input.Priority != nil {
			if err := validatePriority(*input.Priority); err != nil {
				return nil, err
			}
			task.Priority = *input.Priority
			changed = append(changed, "priority")
		}
		if input.Deadline.Set {
			input.Deadline.Apply(&task.Deadline)
			changed = append(changed, "deadline")
		}

		moved := input.ProjectID.Set && !sameID(input.ProjectID.Value, task.ProjectID)
		reassigned := input.AssigneeID.Set && !sameID(input.AssigneeID.Value, task.AssigneeID)
		if input.ProjectID.Set {
			input.ProjectID.Apply(&task.ProjectID)
			changed = append(changed, "project_id")
		}
		if input.AssigneeID.Set {
			input.AssigneeID.Apply(&task.AssigneeID)
			changed = append(changed, "assignee_id")
		}

		if moved || reassigned {
			newLead := leadID
			if moved {
				newLead, err = lookup.ProjectLead(task.ProjectID)
				if err != nil {
					return nil, missingAs(err, invalidReference("project_id"))
				}
			}
			if !authz.CanPerform(actor, authz.ActionUpdate, authz.Target{Kind: authz.KindTask, LeadID: newLead, AssigneeID: task.AssigneeID}) {
				return nil, ErrForbidden
			}
		}

		if len(changed) > 0 {
			task.UpdatedBy = &actor.ID
			changed = append(changed, "updated_by")
		}
		return changed, nil
	})
	if err != nil {
		return nil, onUpdate(err, ErrTaskNotFound, nil)
	}

	events.Emit(ctx, s.publisher, events.New("task", events.Updated, task.ID, actor.ID))
	return task, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return onFind(err, ErrTaskNotFound)
	}

	leadID, err := s.projectLead(ctx, task.ProjectID, ErrProjectNotFound)
	if err != nil {
		return err
	}
	if !authz.CanPerform(actor, authz.ActionDelete, authz.Target{Kind: authz.KindTask, LeadID: leadID, AssigneeID: task.AssigneeID}) {
		return ErrForbidden
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return onDelete(err, ErrTaskNotFound)
	}

	events.Emit(ctx, s.publisher, events.New("task", events.Deleted, task.ID, actor.ID))
	return nil
}

// projectLead returns the lead of the team owning the project with id.
func (s *TaskService) projectLead(ctx context.Context, id *uuid.UUID, missing error) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	project, err := s.projectRepo.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing
		}
		return nil, err
	}
	return lookupTeamLead(ctx, s.teamRepo, project.TeamID, ErrTeamNotFound)
}

func validatePriority(p int) error {
	if p < constants.MinPriority || p > constants.MaxPriority {
		return ErrInvalidPriority.WithMessage("priority must be between %d and %d", constants.MinPriority, constants.MaxPriority)
	}
	return nil
}
