package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/cache"
	"github.com/yukikurage/team-task-api/internal/config"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/handlers"
	"github.com/yukikurage/team-task-api/internal/middleware"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	apiName    = "Team Task API"
	apiVersion = "1.0"
)

// Deps are the process-wide collaborators the routes are built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Cache     cache.Cache
	Publisher events.Publisher
	Logger    *slog.Logger
}

// New wires repositories, services and handlers and returns the route table.
func New(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, err
	}

	// Repositories
	retry := repository.WithRetryPolicy(database.RetryPolicy{
		Attempts: cfg.DBMaxRetries,
		Delay:    cfg.DBRetryDelay,
	})
	userRepo := repository.NewUserRepository(deps.DB, retry)
	teamRepo := repository.NewTeamRepository(deps.DB, retry)
	categoryRepo := repository.NewCategoryRepository(deps.DB, retry)
	projectRepo := repository.NewProjectRepository(deps.DB, retry)
	taskRepo := repository.NewTaskRepository(deps.DB, retry)

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo, deps.Publisher, cfg.BcryptCost)
	teamService := services.NewTeamService(teamRepo, deps.Publisher)
	categoryService := services.NewCategoryService(categoryRepo, deps.Publisher)
	projectService := services.NewProjectService(projectRepo, teamRepo, deps.Publisher)
	taskService := services.NewTaskService(taskRepo, projectRepo, teamRepo, deps.Publisher)

	// Handlers
	healthHandler := handlers.NewHealthHandler(sqlDB, apiName, apiVersion)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, projectService, taskService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))

	// Public routes
	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.POST("/login", middleware.RateLimiter(rate.Limit(cfg.LoginRateLimit), cfg.LoginRateBurst),
		middleware.InvalidateCache(deps.Cache, "users"), authHandler.Login)
	r.POST("/users", middleware.OptionalAuth(authService),
		middleware.InvalidateCache(deps.Cache, "users", "teams"), userHandler.CreateUser)

	// Protected routes
	ttl := cfg.CacheTTL
	protected := r.Group("")
	protected.Use(middleware.RequireAuth(authService))
	{
		users := protected.Group("/users")
		users.Use(middleware.CacheResponse(deps.Cache, "users", ttl), middleware.InvalidateCache(deps.Cache, "users", "teams", "tasks"))
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		teams := protected.Group("/teams")
		teams.Use(middleware.CacheResponse(deps.Cache, "teams", ttl), middleware.InvalidateCache(deps.Cache, "teams"))
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.PUT("/:id", teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamHandler.DeleteTeam)
			teams.GET("/:id/projects", teamHandler.ListTeamProjects)
			teams.GET("/:id/tasks", teamHandler.ListTeamTasks)
			teams.GET("/:id/members", teamHandler.ListMembers)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.PUT("/:id/members/:user_id", teamHandler.UpdateMember)
			teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
		}

		categories := protected.Group("/categories")
		categories.Use(middleware.CacheResponse(deps.Cache, "categories", ttl), middleware.InvalidateCache(deps.Cache, "categories", "projects"))
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		projects := protected.Group("/projects")
		projects.Use(middleware.CacheResponse(deps.Cache, "projects", ttl), middleware.InvalidateCache(deps.Cache, "projects", "teams"))
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		tasks := protected.Group("/tasks")
		tasks.Use(middleware.CacheResponse(deps.Cache, "tasks", ttl), middleware.InvalidateCache(deps.Cache, "tasks", "teams"))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-Cache"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
