package v1

import (
	"github.com/gin-gonic/gin"

	"wsadmin/internal/api/v1/pages"
	"wsadmin/internal/api/v1/projects"
	"wsadmin/internal/api/v1/teams"
	"wsadmin/internal/api/v1/users"
	"wsadmin/internal/api/v1/workspaces"
	"wsadmin/internal/config"
	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

// Dependencies are the services shared by the v1 handlers.
type Dependencies struct {
	Storage    *storage.Storage
	Process    *startup.Process
	Pagination config.PaginationConfig
}

// SetupRoutes configures API routes.
func SetupRoutes(routerGroup *gin.RouterGroup, deps Dependencies) {
	// Initialize handlers
	usersHandler := users.NewHandler(deps.Storage, deps.Pagination)
	teamsHandler := teams.NewHandler(deps.Storage, deps.Pagination)
	projectsHandler := projects.NewHandler(deps.Storage, deps.Pagination)
	workspacesHandler := workspaces.NewHandler(deps.Storage, deps.Process, deps.Pagination)
	pagesHandler := pages.NewHandler()

	// Users management
	usersGroup := routerGroup.Group("/users")
	{
		usersGroup.GET("", usersHandler.List)
		usersGroup.GET("/:id", usersHandler.Get)
		usersGroup.PATCH("/:id", usersHandler.Update)
		usersGroup.DELETE("/:id", usersHandler.Delete)
		usersGroup.GET("/:id/workspaces", usersHandler.Workspaces)
		usersGroup.GET("/:id/tokens", usersHandler.Tokens)
		usersGroup.POST("/:id/tokens", usersHandler.CreateToken)
		usersGroup.DELETE("/:id/tokens/:token_id", usersHandler.DeleteToken)
	}

	// Teams management
	teamsGroup := routerGroup.Group("/teams")
	{
		teamsGroup.GET("", teamsHandler.List)
		teamsGroup.POST("", teamsHandler.Create)
		teamsGroup.GET("/:id", teamsHandler.Get)
		teamsGroup.DELETE("/:id", teamsHandler.Delete)
		teamsGroup.GET("/:id/members", teamsHandler.Members)
		teamsGroup.POST("/:id/members", teamsHandler.AddMember)
		teamsGroup.DELETE("/:id/members/:user_id", teamsHandler.RemoveMember)
	}

	// Projects management
	projectsGroup := routerGroup.Group("/projects")
	{
		projectsGroup.GET("", projectsHandler.List)
		projectsGroup.POST("", projectsHandler.Create)
		projectsGroup.GET("/:id", projectsHandler.Get)
		projectsGroup.DELETE("/:id", projectsHandler.Delete)
	}

	// Workspaces and instance lifecycle
	workspacesGroup := routerGroup.Group("/workspaces")
	{
		workspacesGroup.GET("", workspacesHandler.List)
		workspacesGroup.GET("/:id", workspacesHandler.Get)
		workspacesGroup.POST("/:id/start", workspacesHandler.Start)
		workspacesGroup.POST("/:id/stop", workspacesHandler.Stop)
		workspacesGroup.POST("/:id/phase", workspacesHandler.Phase)
		workspacesGroup.GET("/:id/progress", workspacesHandler.Progress)
	}

	routerGroup.GET("/pagination/window", pagesHandler.Window)
}
