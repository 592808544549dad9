package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/cache"
	"github.com/yukikurage/team-task-api/internal/constants"
)

// captureWriter captures the response body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// CacheResponse serves GET responses for resource from the cache and stores
// fresh 200 responses for ttl. Keys include the caller, so one user never sees
// another user's cached view.
func CacheResponse(store cache.Cache, resource string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID, _ := c.Get(constants.ContextKeyUserID)
		key := store.Key(resource, toString(userID), c.Request.URL.Path, c.Request.URL.RawQuery)

		if raw, found, err := store.Get(ctx, key); err != nil {
			slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		} else if found {
			var hit cachedResponse
			if err := json.Unmarshal(raw, &hit); err == nil {
				c.Header("X-Cache", "HIT")
				c.Data(hit.Status, hit.ContentType, hit.Body)
				c.Abort()
				return
			}
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")

		c.Next()

		if cw.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      cw.Status(),
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, key, payload, ttl); err != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
}

// InvalidateCache drops the cached views of resources after any successful
// write handled by the wrapped route.
func InvalidateCache(store cache.Cache, resources ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}

		ctx := c.Request.Context()
		for _, resource := range resources {
			if err := store.Invalidate(ctx, resource); err != nil {
				slog.WarnContext(ctx, "cache invalidation failed", "resource", resource, "error", err)
			}
		}
	}
}

func toString(v interface{}) string {
	if v == nil {
		return "anonymous"
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
