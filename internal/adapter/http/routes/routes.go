package routes

import (
	"fmt"

	"todoapi/internal/adapter/http/handler"
	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Todo     *handler.TodoHandler
	Category *handler.CategoryHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

// NewEngine builds a gin engine with recovery, request ids and the 404
// fallbacks installed. setup, when given, adds the boundary middleware before
// any route is registered.
func NewEngine(prefix string, handlers Handlers, setup func(*gin.Engine)) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		SendInternalError(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	}))
	router.Use(middleware.CurrentMiddleware())

	if setup != nil {
		setup(router)
	}

	router.NoRoute(SendNotFoundError)
	router.NoMethod(SendNotFoundError)

	Register(router.Group(prefix), handlers)

	return router
}

func Register(api *gin.RouterGroup, handlers Handlers) {
	if handlers.Health != nil {
		api.GET("/health", handlers.Health.Check)
	}

	if handlers.Todo != nil {
		todos := api.Group("/todos")
		{
			todos.GET("", handlers.Todo.List)
			todos.GET("/search", handlers.Todo.Search)
			todos.GET("/:id", handlers.Todo.Show)
			todos.POST("", handlers.Todo.Create)
			todos.PUT("/:id", handlers.Todo.Update)
			todos.PATCH("/:id/status", handlers.Todo.UpdateStatus)
			todos.DELETE("/:id", handlers.Todo.Delete)
		}
	}

	if handlers.Category != nil {
		categories := api.Group("/categories")
		{
			categories.GET("", handlers.Category.List)
			categories.GET("/:id", handlers.Category.Show)
			categories.POST("", handlers.Category.Create)
			categories.PUT("/:id", handlers.Category.Update)
			categories.DELETE("/:id", handlers.Category.Delete)
			categories.GET("/:id/todos", handlers.Category.Todos)
		}
	}

	if handlers.Stats != nil {
		stats := api.Group("/stats")
		{
			stats.GET("/todos", handlers.Stats.Todos)
			stats.GET("/priorities", handlers.Stats.Priorities)
		}
	}
}
