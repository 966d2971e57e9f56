package session

import (
	"context"
	"time"

	"salonbot/models"
)

// Default session lifetimes. The hard cap is measured from creation, never
// from the latest write, so a chatty customer cannot keep a conversation
// alive forever.
const (
	DefaultTTL        = 1800 * time.Second
	HardCap           = 3600 * time.Second
	DefaultExtendSecs = 900
)

// ContextStore is the single source of truth for in-flight booking
// conversations. One conversation has exactly one writer (the orchestrator);
// the store itself serializes nothing across a read-modify-write pair.
type ContextStore interface {
	Save(ctx context.Context, bc *models.BookingContext) error
	Get(ctx context.Context, sessionID string) (*models.BookingContext, error)
	GetByCustomer(ctx context.Context, customerID, salonID string) (*models.BookingContext, error)
	Extend(ctx context.Context, sessionID string, seconds int) error
	UpdateState(ctx context.Context, sessionID, state string) error
	AddChoice(ctx context.Context, sessionID string, choice models.ChoiceRecord) (*models.BookingContext, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	GetMetadata(ctx context.Context, sessionID string) (*models.SessionMetadata, error)
	RecoverFromHistory(customerID, salonID string, msgs []models.TransportMessage) (*models.BookingContext, error)
	Cleanup(ctx context.Context) (int, error)
	GetActiveCount(ctx context.Context, salonID string) (int, error)
}

// MessageHistoryReader returns recent transport-level messages for a
// customer, ordered oldest first. Used only by the recovery path.
type MessageHistoryReader interface {
	RecentMessages(ctx context.Context, customerID, salonID string, limit int) ([]models.TransportMessage, error)
}

// SessionKey derives the storage key for a conversation.
func SessionKey(customerID, salonID string) string {
	return "session:" + customerID + ":" + salonID
}
