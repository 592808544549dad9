package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
	"github.com/yukikurage/team-task-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks, optionally filtered by project_id, assignee_id
// and status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	assigneeID, ok := queryID(c, "assignee_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.List(c.Request.Context(), services.ListTasksInput{
		ProjectID:  projectID,
		AssigneeID: assigneeID,
		Status:     queryValue[models.TaskStatus](c, "status"),
		Page:       params,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToTaskDTOs(tasks), c.Request.URL, params, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required,max=255"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		Priority    *int              `json:"priority"`
		Deadline    *time.Time        `json:"deadline"`
		ProjectID   *uuid.UUID        `json:"project_id"`
		AssigneeID  *uuid.UUID        `json:"assignee_id"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actor, services.CreateTaskInput(req))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Null clears deadline, project_id and
// assignee_id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string                   `json:"title" binding:"omitempty,max=255"`
		Description *string                   `json:"description"`
		Status      *models.TaskStatus        `json:"status"`
		Priority    *int                      `json:"priority"`
		Deadline    utils.Optional[time.Time] `json:"deadline"`
		ProjectID   utils.Optional[uuid.UUID] `json:"project_id"`
		AssigneeID  utils.Optional[uuid.UUID] `json:"assignee_id"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actor, id, services.UpdateTaskInput(req))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
