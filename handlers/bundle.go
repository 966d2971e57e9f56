package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Webhook endpoint.
	WebhookMessage gin.HandlerFunc

	// Popularity and session endpoints.
	PopularTimes    gin.HandlerFunc
	SessionCount    gin.HandlerFunc
	InvalidateCache gin.HandlerFunc
}
