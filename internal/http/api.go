package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-manager/internal/auth"
	"task-manager/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tasks  service.TaskService
	issuer *auth.TokenIssuer
	logger *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, issuer *auth.TokenIssuer, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		tasks:  tasks,
		issuer: issuer,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(metricsMiddleware())

	router.GET("/metrics", metricsHandler())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
			authGroup.POST("/refresh", h.requireAuth(auth.TokenTypeRefresh), h.refresh)
			authGroup.GET("/me", h.requireAuth(auth.TokenTypeAccess), h.me)
			authGroup.PUT("/change-password", h.requireAuth(auth.TokenTypeAccess), h.changePassword)
			authGroup.PUT("/email", h.requireAuth(auth.TokenTypeAccess), h.updateEmail)
			authGroup.DELETE("/me", h.requireAuth(auth.TokenTypeAccess), h.deleteAccount)
		}

		taskGroup := api.Group("/tasks", h.requireAuth(auth.TokenTypeAccess))
		{
			taskGroup.GET("", h.listTasks)
			taskGroup.POST("", h.createTask)
			taskGroup.GET("/overdue", h.overdueTasks)
			taskGroup.GET("/stats/summary", h.taskStats)
			taskGroup.GET("/:id", h.getTask)
			taskGroup.PUT("/:id", h.updateTask)
			taskGroup.PATCH("/:id/status", h.updateTaskStatus)
			taskGroup.DELETE("/:id", h.deleteTask)
		}
	}
}
