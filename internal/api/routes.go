package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the operator API
func SetupRoutes(h *Handler, frontendURL string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS(frontendURL))
	router.Use(gin.Logger())

	router.GET("/api/health", h.HealthCheck)

	api := router.Group("/api")
	{
		hunt := api.Group("/hunt")
		{
			hunt.POST("/start", h.StartHunt)
			hunt.POST("/stop", h.StopHunt)
			hunt.POST("/trigger", h.TriggerHunt)
			hunt.GET("/status", h.HuntStatus)
		}

		sched := api.Group("/scheduler")
		{
			sched.POST("/pause", h.PauseScheduler)
			sched.POST("/resume", h.ResumeScheduler)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.ListJobs)
			jobs.GET("/morning-brief", h.MorningBrief)
			jobs.GET("/:id", h.GetJob)
			jobs.PATCH("/:id/mark-viewed", h.MarkJobViewed)
			jobs.PATCH("/:id/star", h.StarJob)
			jobs.DELETE("/:id", h.DeleteJob)
		}

		targets := api.Group("/targets")
		{
			targets.GET("", h.ListTargets)
			targets.POST("", h.CreateTarget)
			targets.GET("/:id", h.GetTarget)
			targets.PUT("/:id", h.UpdateTarget)
			targets.DELETE("/:id", h.DeleteTarget)
		}

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		api.GET("/logs", h.ListLogs)
		api.GET("/logs/today", h.TodayLogs)
	}

	return router
}

// CORS allows the dashboard origin; an empty origin allows any
func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
