package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/cache"
	"github.com/yukikurage/team-task-api/internal/constants"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/models"
	"golang.org/x/time/rate"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type tokenAuthenticator struct {
	tokens *auth.TokenManager
}

func (a tokenAuthenticator) Authenticate(raw string) (authz.Actor, error) {
	claims, err := a.tokens.VerifyToken(raw)
	if err != nil {
		return authz.Actor{}, err
	}
	id, _ := claims.UserID()
	return authz.Actor{ID: id, Role: claims.Role}, nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "team-task-api", time.Hour)
	userID := uuid.New()
	issued, err := tokens.IssueToken(userID, models.UserRoleMember)
	require.NoError(t, err)

	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		IssueToken(userID, models.UserRoleMember)
	require.NoError(t, err)

	router := setupTestGin()
	router.GET("/me", RequireAuth(tokenAuthenticator{tokens}), func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, apierrors.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, apierrors.ErrCodeUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, apierrors.ErrCodeInvalidToken},
		{"expired token", "Bearer " + expired.Token, http.StatusUnauthorized, apierrors.ErrCodeTokenExpired},
		{"valid token", "Bearer " + issued.Token, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Code)
				return
			}
			assert.Contains(t, w.Body.String(), userID.String())
		})
	}
}

func TestOptionalAuth_LetsAnonymousThrough(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "team-task-api", time.Hour)

	router := setupTestGin()
	router.POST("/users", OptionalAuth(tokenAuthenticator{tokens}), func(c *gin.Context) {
		_, ok := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated": false}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func setupTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client, "test")
}

func TestCacheResponse_HitMissAndInvalidate(t *testing.T) {
	store := setupTestCache(t)
	calls := 0

	router := setupTestGin()
	router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uuid.MustParse("00000000-0000-0000-0000-000000000001"))
		c.Next()
	})
	tasks := router.Group("/tasks", CacheResponse(store, "tasks", time.Minute), InvalidateCache(store, "tasks"))
	tasks.GET("", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	tasks.POST("", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks?status=pending", nil))
		return w
	}

	first := get()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte(`{}`))))
	require.Equal(t, http.StatusCreated, w.Code)

	third := get()
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestCacheResponse_SkipsErrors(t *testing.T) {
	store := setupTestCache(t)

	router := setupTestGin()
	router.GET("/missing", CacheResponse(store, "tasks", time.Minute), func(c *gin.Context) {
		apierrors.NotFound(c, "")
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	}
}

func TestInvalidateCache_IgnoresFailedWrites(t *testing.T) {
	store := setupTestCache(t)
	ctx := context.Background()
	key := store.Key("tasks", "x")
	require.NoError(t, store.Set(ctx, key, []byte("v"), time.Minute))

	router := setupTestGin()
	router.POST("/tasks", InvalidateCache(store, "tasks"), func(c *gin.Context) {
		apierrors.BadRequest(c, "")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRateLimiter_Allow(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req1.RemoteAddr = "127.0.0.1:12345"
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req2.RemoteAddr = "127.0.0.1:12345"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, apierrors.ErrCodeRateLimited, decodeError(t, w2).Code)

	req3 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req3.RemoteAddr = "192.168.1.1:12345"
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusOK, w3.Code, "other clients keep their own budget")
}

func TestRequestID(t *testing.T) {
	router := setupTestGin()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
}

func TestRecoveryAndLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	router := setupTestGin()
	router.Use(RequestLogger(logger), Recovery(logger))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.ErrCodeInternalError, decodeError(t, w).Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"status":500`)
}
