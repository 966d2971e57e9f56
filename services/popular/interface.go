package popular

import (
	"context"
	"time"

	"salonbot/models"
)

// HistoryRepository reads historical bookings for a salon. Implemented by
// database/repository/history.
type HistoryRepository interface {
	GetBookings(ctx context.Context, salonID, serviceID string, since time.Time) ([]models.BookingRecord, error)
}

// Options tunes one popularity query.
type Options struct {
	ServiceID        string
	Limit            int
	MinConfidence    float64
	MinBookings      int
	IncludeCancelled bool
	LookbackDays     int
}

// PopularTimesService analyzes historical bookings into popular (weekday,
// hour) buckets with recency weighting and sample-size confidence.
type PopularTimesService interface {
	GetPopularTimes(ctx context.Context, salonID string, opts Options) ([]models.PopularTimeSlot, error)
	GetDefaultTimes(businessType string) []models.PopularTimeSlot
	CheckAvailability(popularTimes []models.PopularTimeSlot, date time.Time) []models.PopularTimeSlot
	InvalidateCache(ctx context.Context, salonID, serviceID string) error
	WarmCache(ctx context.Context, salonIDs []string) error
	DetectSeasonalPatterns(bookings []models.BookingRecord) []models.SeasonalPattern
}
