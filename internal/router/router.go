package router

import (
	"github.com/gin-gonic/gin"

	"clinex/internal/handler"
	"clinex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(runH *handler.RunHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/tasks", runH.ListTasks)
	v1.GET("/runs", runH.List)
	v1.GET("/runs/:id", runH.GetByID)
	v1.GET("/runs/:id/judgments", runH.ListJudgments)

	return r
}
