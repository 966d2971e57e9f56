package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbot/services/popular"
	"salonbot/services/session"
	"salonbot/utils"
)

// PopularTimesHandler exposes the popularity analysis and session bookkeeping
// to operators and to the booking-creation collaborator.
type PopularTimesHandler struct {
	Popular      popular.PopularTimesService
	Sessions     session.ContextStore
	BusinessType string
	Logger       *zap.Logger
}

func NewPopularTimesHandler(svc popular.PopularTimesService, store session.ContextStore, businessType string, logger *zap.Logger) *PopularTimesHandler {
	return &PopularTimesHandler{Popular: svc, Sessions: store, BusinessType: businessType, Logger: logger}
}

// GetPopularTimes answers GET /api/salons/:salonId/popular-times.
func (h *PopularTimesHandler) GetPopularTimes(c *gin.Context) {
	salonID := c.Param("salonId")

	opts := popular.Options{
		ServiceID: c.Query("serviceId"),
		Limit:     10,
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.Limit = n
	}
	if v := c.Query("minConfidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minConfidence must be a number"})
			return
		}
		opts.MinConfidence = f
	}

	times, err := h.Popular.GetPopularTimes(c.Request.Context(), salonID, opts)
	if err != nil {
		var dep *popular.DependencyError
		if errors.As(err, &dep) {
			// History is unreachable; answer with curated defaults rather
			// than failing the caller.
			h.Logger.Warn("popular times degraded to defaults",
				zap.String("salonId", salonID), zap.Error(err))
			defaults := h.Popular.GetDefaultTimes(h.BusinessType)
			if len(defaults) > opts.Limit {
				defaults = defaults[:opts.Limit]
			}
			c.JSON(http.StatusOK, gin.H{"salonId": salonID, "popularTimes": defaults, "source": "defaults"})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to compute popular times", err.Error())
		return
	}

	source := "history"
	if len(times) == 0 {
		times = h.Popular.GetDefaultTimes(h.BusinessType)
		if len(times) > opts.Limit {
			times = times[:opts.Limit]
		}
		source = "defaults"
	}
	c.JSON(http.StatusOK, gin.H{"salonId": salonID, "popularTimes": times, "source": source})
}

// GetSessionCount answers GET /api/salons/:salonId/sessions/count.
func (h *PopularTimesHandler) GetSessionCount(c *gin.Context) {
	salonID := c.Param("salonId")
	count, err := h.Sessions.GetActiveCount(c.Request.Context(), salonID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"salonId": salonID, "activeSessions": count})
}

// InvalidateCache answers POST /api/cache/invalidate. The booking system
// calls this after creating or cancelling a booking so popularity refreshes.
func (h *PopularTimesHandler) InvalidateCache(c *gin.Context) {
	var input struct {
		SalonID   string `json:"salonId" binding:"required"`
		ServiceID string `json:"serviceId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := h.Popular.InvalidateCache(c.Request.Context(), input.SalonID, input.ServiceID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to invalidate cache", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}
