package api

import (
	"github.com/gin-gonic/gin"

	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/pkg/ratelimiter"
)

// NewRouter assembles the gin engine with auth, optional rate limiting
// and all v1 routes.
func NewRouter(h *Handler, auth config.AuthConfig, rl config.RateLimiterConfig) *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if rl.Enabled {
		v1.Use(RateLimitMiddleware(ratelimiter.NewTokenBucket(rl.Rate, rl.Capacity)))
	}
	v1.Use(AuthMiddleware(auth.JwtSecret))
	{
		v1.POST("/agents", h.CreateAgent)
		v1.GET("/agents/:id", h.GetAgent)
		v1.PUT("/agents/:id", h.UpdateAgent)
		v1.POST("/agents/:id/chat", h.Chat)
		v1.GET("/agents/:id/history", h.History)

		v1.GET("/availability", h.ListWindows)
		v1.POST("/availability", h.CreateWindow)
		v1.PUT("/availability/:id", h.UpdateWindow)
		v1.DELETE("/availability/:id", h.DeleteWindow)

		v1.POST("/calendar/connection", h.ConnectCalendar)
	}

	return router
}
