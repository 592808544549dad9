package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	"github.com/yukikurage/team-task-api/internal/models"
)

func (suite *HandlerTestSuite) createTestTask(title string, project *models.Project, status models.TaskStatus, assignee *models.User) *models.Task {
	task := &models.Task{Title: title, ProjectID: &project.ID, Status: status}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	suite.Require().NoError(suite.db.Omit("Project", "Assignee", "Creator", "Updater").Create(task).Error)
	return task
}

// TestCreateTask_Success tests successful task creation
func (suite *HandlerTestSuite) TestCreateTask_Success() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	project := suite.createTestProject("Website", suite.createTestTeam("Dev", lead))

	w := suite.request(http.MethodPost, "/tasks", map[string]interface{}{
		"title":      "Landing page",
		"project_id": project.ID,
	}, lead)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Equal(3, task.Priority)
	suite.Require().NotNil(task.CreatedBy)
	suite.Equal(lead.ID, *task.CreatedBy)
	suite.Equal("/projects/"+project.ID.String(), task.Links["project"].Href)
}

func (suite *HandlerTestSuite) TestCreateTask_Validation() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	project := suite.createTestProject("Website", suite.createTestTeam("Dev", lead))

	cases := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"missing title", map[string]interface{}{"project_id": project.ID}, http.StatusBadRequest},
		{"bad priority", map[string]interface{}{"title": "T", "project_id": project.ID, "priority": 9}, http.StatusBadRequest},
		{"bad status", map[string]interface{}{"title": "T", "project_id": project.ID, "status": "later"}, http.StatusBadRequest},
		{"bad deadline", map[string]interface{}{"title": "T", "project_id": project.ID, "deadline": "tomorrow"}, http.StatusBadRequest},
		{"dangling project", map[string]interface{}{"title": "T", "project_id": uuid.New()}, http.StatusNotFound},
	}

	for _, tc := range cases {
		w := suite.request(http.MethodPost, "/tasks", tc.body, lead)
		suite.Equal(tc.status, w.Code, tc.name)
	}
}

func (suite *HandlerTestSuite) TestCreateTask_Forbidden() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	stranger := suite.createTestUser("stranger", models.UserRoleMember)
	project := suite.createTestProject("Website", suite.createTestTeam("Dev", lead))

	w := suite.request(http.MethodPost, "/tasks", map[string]interface{}{
		"title":      "Sneaky",
		"project_id": project.ID,
	}, stranger)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/tasks", map[string]interface{}{
		"title":       "Mine",
		"project_id":  project.ID,
		"assignee_id": stranger.ID,
	}, stranger)
	suite.Equal(http.StatusCreated, w.Code)
}

// TestListTasks_Filters tests project_id, status and assignee_id filters
func (suite *HandlerTestSuite) TestListTasks_Filters() {
	viewer := suite.createTestUser("viewer", models.UserRoleMember)
	dev := suite.createTestUser("dev", models.UserRoleMember)
	team := suite.createTestTeam("Dev", nil)
	website := suite.createTestProject("Website", team)
	infra := suite.createTestProject("Infra", team)

	suite.createTestTask("a", website, models.TaskStatusPending, dev)
	suite.createTestTask("b", website, models.TaskStatusDone, nil)
	suite.createTestTask("c", website, models.TaskStatusPending, nil)
	suite.createTestTask("d", infra, models.TaskStatusPending, dev)

	list := func(query string) []string {
		w := suite.request(http.MethodGet, "/tasks"+query, nil, viewer)
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var resp dto.ListResponse[dto.TaskDTO]
		suite.decode(w, &resp)
		titles := make([]string, len(resp.Items))
		for i, t := range resp.Items {
			titles[i] = t.Title
		}
		return titles
	}

	suite.Equal([]string{"a", "b", "c", "d"}, list(""))
	suite.Equal([]string{"a", "c"}, list("?project_id="+website.ID.String()+"&status=pending"))
	suite.Equal([]string{"a", "d"}, list("?assignee_id="+dev.ID.String()))
	suite.Empty(list("?status=cancelled"))

	w := suite.request(http.MethodGet, "/tasks?project_id=42", nil, viewer)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestUpdateTask_Assignee tests that the assignee may update their task
func (suite *HandlerTestSuite) TestUpdateTask_Assignee() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	dev := suite.createTestUser("dev", models.UserRoleMember)
	stranger := suite.createTestUser("stranger", models.UserRoleMember)
	project := suite.createTestProject("Website", suite.createTestTeam("Dev", lead))
	task := suite.createTestTask("Landing page", project, models.TaskStatusPending, dev)
	url := "/tasks/" + task.ID.String()

	w := suite.request(http.MethodPut, url, map[string]string{"status": "done"}, stranger)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, url, map[string]string{"status": "in_progress"}, dev)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Require().NotNil(updated.UpdatedBy)
	suite.Equal(dev.ID, *updated.UpdatedBy)

	w = suite.request(http.MethodPut, url, map[string]interface{}{"assignee_id": nil}, lead)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &updated)
	suite.Nil(updated.AssigneeID)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	w = suite.request(http.MethodPut, url, map[string]interface{}{"project_id": uuid.New()}, lead)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *HandlerTestSuite) TestDeleteTask_Success() {
	lead := suite.createTestUser("lead", models.UserRoleMember)
	project := suite.createTestProject("Website", suite.createTestTeam("Dev", lead))
	task := suite.createTestTask("Landing page", project, models.TaskStatusPending, nil)

	w := suite.request(http.MethodDelete, "/tasks/"+task.ID.String(), nil, lead)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.decode(w, &response)
	suite.Equal("Task deleted successfully", response["message"])
	suite.Equal(int64(0), suite.countRows(&models.Task{}))

	w = suite.request(http.MethodDelete, "/tasks/"+task.ID.String(), nil, lead)
	suite.Equal(http.StatusNotFound, w.Code)
}
