package models

import "time"

// Historical booking statuses as the bookings source reports them.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"
)

// BookingRecord is one historical booking row from the bookings source.
type BookingRecord struct {
	ID        string    `json:"id" bson:"_id"`
	SalonID   string    `json:"salonId" bson:"salonId"`
	ServiceID string    `json:"serviceId" bson:"serviceId"`
	MasterID  string    `json:"masterId" bson:"masterId"`
	StartTime time.Time `json:"startTime" bson:"startTime"`
	Status    string    `json:"status" bson:"status"`
}

// PopularTimeSlot is one (weekday, hour) popularity bucket. Rebuilt on each
// analysis call or served from cache; never individually mutated.
type PopularTimeSlot struct {
	DayOfWeek     int     `json:"dayOfWeek"` // 0 = Sunday
	Hour          int     `json:"hour"`
	BookingCount  int     `json:"bookingCount"`
	WeightedScore float64 `json:"weightedScore"`
	Confidence    float64 `json:"confidence"` // [0,1]
}

// SeasonalPattern flags a calendar week whose booking volume deviates from
// the lookback average.
type SeasonalPattern struct {
	Year     int     `json:"year"`
	Week     int     `json:"week"`
	Bookings int     `json:"bookings"`
	Kind     string  `json:"kind"` // "peak" or "quiet"
	Delta    float64 `json:"delta"`
}
