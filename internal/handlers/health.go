package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	name    string
	version string
}

func NewHealthHandler(db Pinger, name, version string) *HealthHandler {
	return &HealthHandler{db: db, name: name, version: version}
}

// Root lists the top-level resources
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewEntryPoint(h.name, h.version))
}

// Health reports whether the database answers
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		apierrors.RespondWithError(c, http.StatusServiceUnavailable, apierrors.ErrServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": h.name + " is running",
	})
}
