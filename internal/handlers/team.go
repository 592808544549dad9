package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/services"
	"github.com/yukikurage/team-task-api/internal/utils"
)

type TeamHandler struct {
	teamService    *services.TeamService
	projectService *services.ProjectService
	taskService    *services.TaskService
}

func NewTeamHandler(teamService *services.TeamService, projectService *services.ProjectService, taskService *services.TaskService) *TeamHandler {
	return &TeamHandler{
		teamService:    teamService,
		projectService: projectService,
		taskService:    taskService,
	}
}

// CreateTeam creates a new team
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name        string     `json:"name" binding:"required,max=255"`
		Description string     `json:"description"`
		LeadID      *uuid.UUID `json:"lead_id"`
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), actor, services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeadID:      req.LeadID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListTeams returns all teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	teams, total, err := h.teamService.List(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToTeamDTOs(teams), c.Request.URL, params, total))
}

// GetTeam returns a specific team by ID
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// UpdateTeam applies a partial update. A null lead_id removes the lead.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name        *string                   `json:"name" binding:"omitempty,max=255"`
		Description *string                   `json:"description"`
		LeadID      utils.Optional[uuid.UUID] `json:"lead_id"`
	}

	var req UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), actor, id, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeadID:      req.LeadID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// DeleteTeam deletes a team and its memberships
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// ListTeamProjects returns the projects owned by a team
func (h *TeamHandler) ListTeamProjects(c *gin.Context) {
	team, ok := h.loadTeam(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(c.Request.Context(), services.ListProjectsInput{
		TeamID: &team.ID,
		Status: queryValue[models.ProjectStatus](c, "status"),
		Page:   params,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToProjectDTOs(projects), c.Request.URL, params, total))
}

// ListTeamTasks returns the tasks of every project owned by a team
func (h *TeamHandler) ListTeamTasks(c *gin.Context) {
	team, ok := h.loadTeam(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.List(c.Request.Context(), services.ListTasksInput{
		TeamID: &team.ID,
		Status: queryValue[models.TaskStatus](c, "status"),
		Page:   params,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToTaskDTOs(tasks), c.Request.URL, params, total))
}

// AddMember adds a user to a team
func (h *TeamHandler) AddMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uuid.UUID             `json:"user_id" binding:"required"`
		Role   models.MembershipRole `json:"role"`
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.AddMember(c.Request.Context(), actor, teamID, services.AddMemberInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// ListMembers returns the members of a team
func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	members, total, err := h.teamService.ListMembers(c.Request.Context(), teamID, params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToMemberDTOs(members), c.Request.URL, params, total))
}

// UpdateMember changes a member's role within the team
func (h *TeamHandler) UpdateMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		Role models.MembershipRole `json:"role" binding:"required"`
	}

	var req UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.UpdateMember(c.Request.Context(), actor, teamID, userID, req.Role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// RemoveMember removes a user from a team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), actor, teamID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// loadTeam resolves the :id team so sub-collections of a missing team are 404.
func (h *TeamHandler) loadTeam(c *gin.Context) (*models.Team, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	team, err := h.teamService.Get(c.Request.Context(), id)
	if err != nil {
		apierrors.Respond(c, err)
		return nil, false
	}
	return team, true
}
