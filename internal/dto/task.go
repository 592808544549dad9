package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Priority    int               `json:"priority"`
	Deadline    *time.Time        `json:"deadline"`
	ProjectID   *uuid.UUID        `json:"project_id"`
	AssigneeID  *uuid.UUID        `json:"assignee_id"`
	CreatedBy   *uuid.UUID        `json:"created_by"`
	UpdatedBy   *uuid.UUID        `json:"updated_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Links       Links             `json:"_links"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	links := standardLinks("/tasks", task.ID.String())
	if task.ProjectID != nil {
		links["project"] = get("/projects/" + task.ProjectID.String())
	}
	if task.AssigneeID != nil {
		links["assignee"] = get("/users/" + task.AssigneeID.String())
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		CreatedBy:   task.CreatedBy,
		UpdatedBy:   task.UpdatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Links:       links,
	}
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	return mapAll(tasks, ToTaskDTO)
}
