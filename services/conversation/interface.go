package conversation

import (
	"context"
	"time"

	"salonbot/models"
)

// AvailabilitySource returns candidate slots for a salon/service/date range.
// Provided by the scheduling backend; no further contract assumed.
type AvailabilitySource interface {
	GetAvailableSlots(ctx context.Context, salonID, serviceID string, from, to time.Time) ([]models.SlotSuggestion, error)
}

// ChannelSender delivers interactive payloads to the customer. Delivery and
// retry semantics belong to the transport, not to this engine.
type ChannelSender interface {
	SendPayload(ctx context.Context, customerID string, payload *models.CardPayload) error
}

// InboundEvent is one customer message, already shaped by the gateway.
// Intent, when present, comes from the upstream natural-language parser.
type InboundEvent struct {
	CustomerID string                 `json:"customerId"`
	SalonID    string                 `json:"salonId"`
	Text       string                 `json:"text,omitempty"`
	ButtonID   string                 `json:"buttonId,omitempty"`
	Language   string                 `json:"language,omitempty"`
	Intent     *models.OriginalIntent `json:"intent,omitempty"`
}

// ConversationService drives one inbound event through the booking dialog.
type ConversationService interface {
	HandleInbound(ctx context.Context, ev InboundEvent) (*models.CardPayload, error)
}
