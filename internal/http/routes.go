package http

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	middleware "client-tasks.com/client-tasks/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, limiter middleware.Limiter, logger *zap.Logger) {
	api := e.Group("/api")
	api.Use(middleware.RateLimiter(limiter, logger))

	api.GET("/health", h.Health)
	api.GET("/clients", h.ListClients)

	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/overdue-count", h.OverdueCount)
	api.GET("/tasks/:id", h.GetTask)
	api.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	api.DELETE("/tasks/:id", h.DeleteTask)
}
