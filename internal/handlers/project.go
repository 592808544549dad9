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

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project owned by a team the actor leads
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Title       string               `json:"title" binding:"required,max=255"`
		Description string               `json:"description"`
		Status      models.ProjectStatus `json:"status"`
		Deadline    *time.Time           `json:"deadline"`
		TeamID      *uuid.UUID           `json:"team_id"`
		CategoryID  *uuid.UUID           `json:"category_id"`
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    req.Deadline,
		TeamID:      req.TeamID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns projects, optionally filtered by team_id, category_id
// and status
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	teamID, ok := queryID(c, "team_id")
	if !ok {
		return
	}
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(c.Request.Context(), services.ListProjectsInput{
		TeamID:     teamID,
		CategoryID: categoryID,
		Status:     queryValue[models.ProjectStatus](c, "status"),
		Page:       params,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToProjectDTOs(projects), c.Request.URL, params, total))
}

// GetProject returns a specific project by ID
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update. Null clears deadline, team_id and
// category_id.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Title       *string                   `json:"title" binding:"omitempty,max=255"`
		Description *string                   `json:"description"`
		Status      *models.ProjectStatus     `json:"status"`
		Deadline    utils.Optional[time.Time] `json:"deadline"`
		TeamID      utils.Optional[uuid.UUID] `json:"team_id"`
		CategoryID  utils.Optional[uuid.UUID] `json:"category_id"`
	}

	var req UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, id, services.UpdateProjectInput(req))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project without tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}
