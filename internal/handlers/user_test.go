package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestCreateUser_Public() {
	w := suite.request(http.MethodPost, "/users", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": testPassword,
	}, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal("newuser", user.Username)
	suite.Equal(models.UserRoleMember, user.Role)
	suite.NotEqual(uuid.Nil, user.ID)
	suite.NotContains(w.Body.String(), "password")
}

func (suite *HandlerTestSuite) TestCreateUser_Duplicate() {
	suite.createTestUser("alice", models.UserRoleMember)

	w := suite.request(http.MethodPost, "/users", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": testPassword,
	}, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeAlreadyExists, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestCreateUser_AdminNeedsAdminToken() {
	member := suite.createTestUser("member", models.UserRoleMember)
	admin := suite.createTestUser("root", models.UserRoleAdmin)
	body := map[string]string{
		"username": "boss",
		"email":    "boss@example.com",
		"password": testPassword,
		"role":     "admin",
	}

	w := suite.request(http.MethodPost, "/users", body, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/users", body, member)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/users", body, admin)
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestCreateUser_InvalidEmail() {
	w := suite.request(http.MethodPost, "/users", map[string]string{
		"username": "x",
		"email":    "not-an-email",
		"password": testPassword,
	}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUser_PasswordOverBcryptLimit() {
	long := strings.Repeat("x", 80)

	w := suite.request(http.MethodPost, "/users", map[string]string{
		"username": "longpass",
		"email":    "longpass@example.com",
		"password": long,
	}, nil)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	suite.Equal(apierrors.ErrCodeInvalidInput, suite.errorCode(w))

	alice := suite.createTestUser("alice", models.UserRoleMember)
	w = suite.request(http.MethodPut, "/users/"+alice.ID.String(), map[string]string{"password": strings.Repeat("x", 100)}, alice)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	suite.Equal(apierrors.ErrCodeInvalidInput, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestUpdateUser_UnknownRole() {
	alice := suite.createTestUser("alice", models.UserRoleMember)

	w := suite.request(http.MethodPut, "/users/"+alice.ID.String(), map[string]string{"role": "bogus"}, alice)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	suite.Equal(apierrors.ErrCodeInvalidInput, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestListUsers_Paginated() {
	viewer := suite.createTestUser("viewer", models.UserRoleMember)
	suite.createTestUser("bob", models.UserRoleMember)
	suite.createTestUser("carol", models.UserRoleMember)

	w := suite.request(http.MethodGet, "/users?page=1&limit=2", nil, viewer)
	suite.Require().Equal(http.StatusOK, w.Code)

	var list dto.ListResponse[dto.UserDTO]
	suite.decode(w, &list)
	suite.Len(list.Items, 2)
	suite.Equal(int64(3), list.Pagination.Total)
	suite.Equal("viewer", list.Items[0].Username)
	suite.Contains(list.Links, "next")
}

func (suite *HandlerTestSuite) TestGetUser_InvalidAndMissingID() {
	viewer := suite.createTestUser("viewer", models.UserRoleMember)

	w := suite.request(http.MethodGet, "/users/not-a-uuid", nil, viewer)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidFormat, suite.errorCode(w))

	w = suite.request(http.MethodGet, "/users/"+uuid.NewString(), nil, viewer)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("USER_NOT_FOUND", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestUpdateUser_OwnRecordOnly() {
	alice := suite.createTestUser("alice", models.UserRoleMember)
	bob := suite.createTestUser("bob", models.UserRoleMember)

	w := suite.request(http.MethodPut, "/users/"+alice.ID.String(), map[string]string{"username": "alice2"}, alice)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.UserDTO
	suite.decode(w, &updated)
	suite.Equal("alice2", updated.Username)
	suite.Equal("alice@example.com", updated.Email)

	w = suite.request(http.MethodPut, "/users/"+alice.ID.String(), map[string]string{"username": "hacked"}, bob)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, "/users/"+alice.ID.String(), map[string]string{"role": "admin"}, alice)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteUser_RejectedWhileLeadingTeam() {
	admin := suite.createTestUser("root", models.UserRoleAdmin)
	lead := suite.createTestUser("lead", models.UserRoleMember)
	suite.createTestTeam("Dev", lead)

	w := suite.request(http.MethodDelete, "/users/"+lead.ID.String(), nil, admin)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeInUse, suite.errorCode(w))

	loner := suite.createTestUser("loner", models.UserRoleMember)
	w = suite.request(http.MethodDelete, "/users/"+loner.ID.String(), nil, loner)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(2), suite.countRows(&models.User{}))
}
