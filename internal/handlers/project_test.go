package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestCategories_AdminWrites() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)
	member := suite.createTestUser("member", models.UserRoleMember)

	w := suite.request(http.MethodPost, "/categories", map[string]string{"name": "Backend"}, member)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/categories", map[string]string{"name": "Backend"}, admin)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category dto.CategoryDTO
	suite.decode(w, &category)
	suite.Equal("#64748b", category.Color)

	w = suite.request(http.MethodPost, "/categories", map[string]string{"name": "Backend"}, admin)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPut, "/categories/"+category.ID.String(), map[string]string{"color": "blue"}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPut, "/categories/"+category.ID.String(), map[string]string{"color": "#FF0000"}, admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/categories", nil, member)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListResponse[dto.CategoryDTO]
	suite.decode(w, &list)
	suite.Len(list.Items, 1)
}

func (suite *HandlerTestSuite) TestCreateProject_Defaults() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)

	w := suite.request(http.MethodPost, "/projects", map[string]interface{}{
		"title":    "Website",
		"team_id":  team.ID,
		"deadline": "2030-01-02T15:04:05Z",
	}, lead)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var project dto.ProjectDTO
	suite.decode(w, &project)
	suite.Equal(models.ProjectStatusPlanning, project.Status)
	suite.Require().NotNil(project.Deadline)
	suite.Equal(2030, project.Deadline.Year())
	suite.Equal("/tasks?project_id="+project.ID.String(), project.Links["tasks"].Href)
	suite.Equal("/teams/"+team.ID.String(), project.Links["team"].Href)
}

func (suite *HandlerTestSuite) TestCreateProject_Validation() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)

	w := suite.request(http.MethodPost, "/projects", map[string]interface{}{"description": "no title"}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/projects", map[string]interface{}{"title": "X", "status": "someday"}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/projects", map[string]interface{}{"title": "X", "category_id": uuid.New()}, admin)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("CATEGORY_NOT_FOUND", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestUpdateProject_GuardAndNull() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	stranger := suite.createTestUser("stranger", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)
	project := suite.createTestProject("Website", team)
	url := "/projects/" + project.ID.String()

	w := suite.request(http.MethodPut, url, map[string]string{"status": "active"}, stranger)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, url, map[string]interface{}{"status": "active", "deadline": nil}, lead)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.ProjectDTO
	suite.decode(w, &updated)
	suite.Equal(models.ProjectStatusActive, updated.Status)
	suite.Nil(updated.Deadline)
	suite.Require().NotNil(updated.TeamID)
}

func (suite *HandlerTestSuite) TestListProjects_Filters() {
	viewer := suite.createTestUser("viewer", models.UserRoleMember)
	dev := suite.createTestTeam("Dev", nil)
	ops := suite.createTestTeam("Ops", nil)
	suite.createTestProject("Website", dev)
	suite.createTestProject("Infra", ops)

	w := suite.request(http.MethodGet, "/projects?team_id="+ops.ID.String(), nil, viewer)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListResponse[dto.ProjectDTO]
	suite.decode(w, &list)
	suite.Require().Len(list.Items, 1)
	suite.Equal("Infra", list.Items[0].Title)

	w = suite.request(http.MethodGet, "/projects?team_id=nope", nil, viewer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidFormat, suite.errorCode(w))

	w = suite.request(http.MethodGet, "/projects?status=someday", nil, viewer)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteProject_RejectedWithTasks() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)
	project := suite.createTestProject("Website", team)
	suite.Require().NoError(suite.db.Omit("Project", "Assignee", "Creator", "Updater").
		Create(&models.Task{Title: "Landing page", ProjectID: &project.ID}).Error)

	w := suite.request(http.MethodDelete, "/projects/"+project.ID.String(), nil, lead)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeInUse, suite.errorCode(w))
}
