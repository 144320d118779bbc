package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported on the index route
const Version = "3.0.0"

// NewRouter wires every route onto a new gin engine. A nil gatherer leaves
// /metrics unregistered.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Duty Rotation API",
			"version": Version,
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Scheduler Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule", h.ScheduleJSON)
		api.POST("/schedule/csv", h.ScheduleCSV)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
	}

	return r
}
