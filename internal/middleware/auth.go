package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/constants"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
)

// Authenticator turns a bearer token into an actor.
type Authenticator interface {
	Authenticate(token string) (authz.Actor, error)
}

// RequireAuth checks the bearer token and stores the actor in the context
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		actor, err := authn.Authenticate(raw)
		if err != nil {
			rejectToken(c, err)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth stores the actor when a valid bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		actor, err := authn.Authenticate(raw)
		if err != nil {
			rejectToken(c, err)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from context
func GetActor(c *gin.Context) (authz.Actor, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return authz.Actor{}, false
	}
	role, _ := c.Get(constants.ContextKeyRole)
	r, ok := role.(models.UserRole)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{ID: userID, Role: r}, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	switch v := userID.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}

func setActor(c *gin.Context, actor authz.Actor) {
	c.Set(constants.ContextKeyUserID, actor.ID)
	c.Set(constants.ContextKeyRole, actor.Role)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectToken(c *gin.Context, err error) {
	slog.InfoContext(c.Request.Context(), "rejected bearer token",
		"reason", err.Error(),
		"path", c.Request.URL.Path,
		"request_id", c.GetString(constants.ContextKeyRequestID),
	)

	if errors.Is(err, auth.ErrTokenExpired) {
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.Unauthenticated(apierrors.ErrCodeTokenExpired, "Token has expired"))
		return
	}
	apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.Unauthenticated(apierrors.ErrCodeInvalidToken, "Invalid token"))
}
