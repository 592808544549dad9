package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	"github.com/yukikurage/team-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestCreateTeam_MemberMustLead() {
	member := suite.createTestUser("member", models.UserRoleMember)
	other := suite.createTestUser("other", models.UserRoleMember)

	w := suite.request(http.MethodPost, "/teams", map[string]interface{}{
		"name":    "Dev",
		"lead_id": member.ID,
	}, member)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var team dto.TeamDTO
	suite.decode(w, &team)
	suite.Require().NotNil(team.LeadID)
	suite.Equal(member.ID, *team.LeadID)
	suite.Equal("/teams/"+team.ID.String()+"/members", team.Links["members"].Href)

	w = suite.request(http.MethodPost, "/teams", map[string]interface{}{
		"name":    "Ops",
		"lead_id": other.ID,
	}, member)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTeam_DanglingLead() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)

	w := suite.request(http.MethodPost, "/teams", map[string]interface{}{
		"name":    "Dev",
		"lead_id": uuid.New(),
	}, admin)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("USER_NOT_FOUND", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestUpdateTeam_NullClearsLead() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)

	w := suite.request(http.MethodPut, "/teams/"+team.ID.String(), map[string]interface{}{
		"description": "core team",
		"lead_id":     nil,
	}, lead)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated dto.TeamDTO
	suite.decode(w, &updated)
	suite.Nil(updated.LeadID)
	suite.Equal("core team", updated.Description)
	suite.Equal("Dev", updated.Name)
}

func (suite *HandlerTestSuite) TestUpdateTeam_DanglingLeadIsValidationError() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)
	team := suite.createTestTeam("Dev", nil)

	w := suite.request(http.MethodPut, "/teams/"+team.ID.String(), map[string]interface{}{
		"lead_id": uuid.New(),
	}, admin)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTeam_Guard() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	stranger := suite.createTestUser("stranger", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)

	w := suite.request(http.MethodDelete, "/teams/"+team.ID.String(), nil, stranger)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/teams/"+team.ID.String(), nil, lead)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/teams/"+team.ID.String(), nil, lead)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTeam_RejectedWithProjects() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)
	team := suite.createTestTeam("Dev", nil)
	suite.createTestProject("Website", team)

	w := suite.request(http.MethodDelete, "/teams/"+team.ID.String(), nil, admin)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestMembers_Lifecycle() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	dev := suite.createTestUser("dev", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)
	members := "/teams/" + team.ID.String() + "/members"

	w := suite.request(http.MethodPost, members, map[string]interface{}{"user_id": dev.ID}, lead)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var added dto.MemberDTO
	suite.decode(w, &added)
	suite.Equal(models.MembershipRoleMember, added.Role)

	w = suite.request(http.MethodPost, members, map[string]interface{}{"user_id": dev.ID}, lead)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPut, members+"/"+dev.ID.String(), map[string]string{"role": "developer"}, lead)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodPut, members+"/"+dev.ID.String(), map[string]string{"role": "wizard"}, lead)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, members, nil, dev)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListResponse[dto.MemberDTO]
	suite.decode(w, &list)
	suite.Require().Len(list.Items, 1)
	suite.Equal("dev", list.Items[0].Username)
	suite.Equal(models.MembershipRoleDeveloper, list.Items[0].Role)

	w = suite.request(http.MethodDelete, members+"/"+dev.ID.String(), nil, dev)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, members+"/"+dev.ID.String(), nil, lead)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, members+"/"+dev.ID.String(), nil, lead)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestTeamSubCollections() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	team := suite.createTestTeam("Dev", lead)
	other := suite.createTestTeam("Ops", nil)
	project := suite.createTestProject("Website", team)
	suite.createTestProject("Infra", other)
	suite.Require().NoError(suite.db.Omit("Project", "Assignee", "Creator", "Updater").
		Create(&models.Task{Title: "Landing page", ProjectID: &project.ID}).Error)

	w := suite.request(http.MethodGet, "/teams/"+team.ID.String()+"/projects", nil, lead)
	suite.Require().Equal(http.StatusOK, w.Code)
	var projects dto.ListResponse[dto.ProjectDTO]
	suite.decode(w, &projects)
	suite.Require().Len(projects.Items, 1)
	suite.Equal("Website", projects.Items[0].Title)

	w = suite.request(http.MethodGet, "/teams/"+team.ID.String()+"/tasks", nil, lead)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tasks dto.ListResponse[dto.TaskDTO]
	suite.decode(w, &tasks)
	suite.Require().Len(tasks.Items, 1)
	suite.Equal("Landing page", tasks.Items[0].Title)

	w = suite.request(http.MethodGet, "/teams/"+uuid.NewString()+"/tasks", nil, lead)
	suite.Equal(http.StatusNotFound, w.Code)
}
