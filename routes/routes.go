package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonbot/handlers"
	"salonbot/middleware"
	"salonbot/utils"
)

// RegisterWebhookRoutes registers the inbound channel endpoint.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhook")
	{
		api.POST("/message", hb.WebhookMessage)
	}
}

// RegisterSalonRoutes registers per-salon inspection endpoints.
func RegisterSalonRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/salons")
	{
		api.GET("/:salonId/popular-times", hb.PopularTimes)
		api.GET("/:salonId/sessions/count", hb.SessionCount)
	}
}

// RegisterCacheRoutes registers the invalidation hook the booking system
// calls after writing a booking.
func RegisterCacheRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cache")
	{
		api.POST("/invalidate", hb.InvalidateCache)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterWebhookRoutes(r, hb)
	RegisterSalonRoutes(r, hb)
	RegisterCacheRoutes(r, hb)
	RegisterHealthRoute(r)
}
