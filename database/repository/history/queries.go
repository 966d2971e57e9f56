package historyRepo

import (
	"context"
	"time"

	"salonbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// GetBookings returns bookings for a salon starting at or after since,
// optionally filtered by service. Status filtering is left to the analyzer
// so cancelled bookings can be included on demand.
func (r *mongoHistoryRepo) GetBookings(ctx context.Context, salonID, serviceID string, since time.Time) ([]models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"salonId":   salonID,
		"startTime": bson.M{"$gte": since},
	}
	if serviceID != "" {
		filter["serviceId"] = serviceID
	}

	cursor, err := r.bookings.Find(ctx, filter, options.Find().SetSort(bson.M{"startTime": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// RecentMessages returns the newest limit transport messages for a customer,
// reordered oldest first so recovery can replay them.
func (r *mongoHistoryRepo) RecentMessages(ctx context.Context, customerID, salonID string, limit int) ([]models.TransportMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	filter := bson.M{"customerId": customerID, "salonId": salonID}
	cursor, err := r.messages.Find(ctx, filter,
		options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.TransportMessage
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	// Newest-first from Mongo; recovery wants oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
