package historyRepo

import (
	"context"
	"time"

	"salonbot/database"
	"salonbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingHistoryRepository reads historical bookings for popularity analysis.
type BookingHistoryRepository interface {
	GetBookings(ctx context.Context, salonID, serviceID string, since time.Time) ([]models.BookingRecord, error)
}

// TransportLogRepository reads the recent channel-level message log for a
// customer. Only the session recovery path consumes it.
type TransportLogRepository interface {
	RecentMessages(ctx context.Context, customerID, salonID string, limit int) ([]models.TransportMessage, error)
}

type mongoHistoryRepo struct {
	bookings *mongo.Collection
	messages *mongo.Collection
}

// NewMongoHistoryRepo returns Mongo-backed history repositories.
func NewMongoHistoryRepo() *mongoHistoryRepo {
	db := database.DB()
	return &mongoHistoryRepo{
		bookings: db.Collection("bookings"),
		messages: db.Collection("transport_messages"),
	}
}
