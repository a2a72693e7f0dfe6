package routes

import (
	"net/http"

	"taskdesk/internal/handlers"
	"taskdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes wires the task API onto a new gin engine.
func SetupRoutes(h *handlers.Handler, log logrus.FieldLogger) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.CORS())
	ginRouter.Use(middleware.RequestLogger(log))
	ginRouter.Use(middleware.Metrics())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "taskdesk API is running",
		})
	})
	ginRouter.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", h.GetTasks)
		protectedRoutes.GET("/tasks/my-tasks", h.GetMyTasks)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.PUT("/tasks/:id", h.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)

		// Attachment endpoints
		protectedRoutes.POST("/files/upload", h.UploadFile)
		protectedRoutes.GET("/files/:id", h.DownloadFile)
		protectedRoutes.DELETE("/files/:id", h.DeleteFile)

		protectedRoutes.GET("/users", h.GetAllUsers)
		protectedRoutes.GET("/dashboard/stats", h.GetDashboardStats)

		// Realtime task change events
		protectedRoutes.GET("/ws", h.Events)
	}

	return ginRouter
}
