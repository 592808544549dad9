package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/authz"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/middleware"
)

// pathID parses the named path parameter as a UUID, answering 400 otherwise.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidFormat, "Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query filter. An absent key yields nil.
func queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		apierrors.Respond(c, apierrors.Validation(apierrors.ErrCodeInvalidFormat, "Invalid "+key))
		return nil, false
	}
	return &id, true
}

// queryValue returns a pointer to a non-empty query value.
func queryValue[T ~string](c *gin.Context, key string) *T {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// currentActor returns the authenticated actor or answers 401.
func currentActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return authz.Actor{}, false
	}
	return actor, true
}

// bindJSON decodes the request body into req, answering 400 with field
// details on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.RespondBindingError(c, err)
		return false
	}
	return true
}
