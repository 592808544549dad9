package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/models"
)

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Links     Links     `json:"_links"`
}

func ToCategoryDTO(category models.Category) CategoryDTO {
	id := category.ID.String()
	links := standardLinks("/categories", id)
	links["projects"] = get("/projects?category_id=" + id)

	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Color:     category.Color,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
		Links:     links,
	}
}

func ToCategoryDTOs(categories []models.Category) []CategoryDTO {
	return mapAll(categories, ToCategoryDTO)
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Deadline    *time.Time           `json:"deadline"`
	TeamID      *uuid.UUID           `json:"team_id"`
	CategoryID  *uuid.UUID           `json:"category_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Links       Links                `json:"_links"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	id := project.ID.String()
	links := standardLinks("/projects", id)
	links["tasks"] = get("/tasks?project_id=" + id)
	if project.TeamID != nil {
		links["team"] = get("/teams/" + project.TeamID.String())
	}
	if project.CategoryID != nil {
		links["category"] = get("/categories/" + project.CategoryID.String())
	}

	return ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Status:      project.Status,
		Deadline:    project.Deadline,
		TeamID:      project.TeamID,
		CategoryID:  project.CategoryID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
		Links:       links,
	}
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	return mapAll(projects, ToProjectDTO)
}
