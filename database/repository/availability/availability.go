package availabilityRepo

import (
	"context"
	"time"

	"salonbot/database"
	"salonbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// SlotRepository reads open appointment slots published by the scheduling
// system. Implements conversation.AvailabilitySource.
type SlotRepository interface {
	GetAvailableSlots(ctx context.Context, salonID, serviceID string, from, to time.Time) ([]models.SlotSuggestion, error)
}

type mongoSlotRepo struct {
	slots *mongo.Collection
}

// NewMongoSlotRepo returns a Mongo-backed slot repository.
func NewMongoSlotRepo() *mongoSlotRepo {
	return &mongoSlotRepo{slots: database.DB().Collection("open_slots")}
}

// GetAvailableSlots returns unbooked slots for a salon within [from, to),
// optionally filtered by service, ordered by date then start time.
func (r *mongoSlotRepo) GetAvailableSlots(ctx context.Context, salonID, serviceID string, from, to time.Time) ([]models.SlotSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"salonId": salonID,
		"booked":  false,
		"date": bson.M{
			"$gte": from.Format("2006-01-02"),
			"$lt":  to.Format("2006-01-02"),
		},
	}
	if serviceID != "" {
		filter["serviceId"] = serviceID
	}

	cursor, err := r.slots.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.SlotSuggestion
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
