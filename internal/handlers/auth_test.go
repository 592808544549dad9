package handlers

import (
	"net/http"

	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestLogin_Success() {
	user := suite.createTestUser("alice", models.UserRoleMember)

	w := suite.request(http.MethodPost, "/login", map[string]string{
		"email":    "ALICE@example.com",
		"password": testPassword,
	}, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(user.ID, resp.UserID)
	suite.Equal("alice", resp.Username)
	suite.Equal("/users/"+user.ID.String(), resp.Links["user_profile"].Href)

	claims, err := suite.tokens.VerifyToken(resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(user.ID.String(), claims.Subject)

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, "id = ?", user.ID).Error)
	suite.NotNil(stored.LastLogin)
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.createTestUser("alice", models.UserRoleMember)

	for _, body := range []map[string]string{
		{"email": "alice@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": testPassword},
	} {
		w := suite.request(http.MethodPost, "/login", body, nil)
		suite.Equal(http.StatusUnauthorized, w.Code)
		suite.Equal(apierrors.ErrCodeInvalidCredentials, suite.errorCode(w))
	}
}

func (suite *HandlerTestSuite) TestLogin_MissingFields() {
	w := suite.request(http.MethodPost, "/login", map[string]string{"email": "alice@example.com"}, nil)
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	var body apierrors.APIError
	suite.decode(w, &body)
	suite.Equal(apierrors.ErrCodeInvalidInput, body.Code)
	suite.NotNil(body.Details)
}

func (suite *HandlerTestSuite) TestProtectedRoute_RequiresToken() {
	w := suite.request(http.MethodGet, "/tasks", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestRootAndHealth() {
	w := suite.request(http.MethodGet, "/", nil, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var root dto.EntryPoint
	suite.decode(w, &root)
	suite.Equal("/tasks", root.Links["tasks"].Href)

	w = suite.request(http.MethodGet, "/health", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
}
