package models

import "time"

// Conversation states. A context is created in StateStarted and deleted once
// it reaches a terminal state (confirmed or abandoned).
const (
	StateStarted         = "started"
	StateSlotsShown      = "slots_shown"
	StateChoicePresented = "choice_presented"
	StateConfirmed       = "confirmed"
	StateAbandoned       = "abandoned"
)

// MaxChoiceHistory bounds the per-conversation choice log; the oldest entry
// is evicted when a new one would exceed it.
const MaxChoiceHistory = 10

// OriginalIntent is the customer's first structured ask. Immutable once set.
type OriginalIntent struct {
	ServiceID      string `json:"serviceId,omitempty"`
	PreferredDate  string `json:"preferredDate,omitempty"` // "2006-01-02"
	PreferredTime  string `json:"preferredTime,omitempty"` // "15:04"
	PreferredStaff string `json:"preferredStaff,omitempty"`
}

// Complete reports whether the intent carries enough to query availability.
func (i OriginalIntent) Complete() bool {
	return i.ServiceID != "" && i.PreferredDate != ""
}

// ChoiceRecord is one entry in a conversation's choice history.
type ChoiceRecord struct {
	ChoiceID    string    `json:"choiceId"`
	SelectedAt  time.Time `json:"selectedAt"`
	ResultShown string    `json:"resultShown,omitempty"`
}

// BookingContext holds everything needed to resume a booking conversation
// between inbound messages. It is JSON-marshalled into the session store.
type BookingContext struct {
	SessionID      string         `json:"sessionId"`
	CustomerID     string         `json:"customerId"`
	SalonID        string         `json:"salonId"`
	OriginalIntent OriginalIntent `json:"originalIntent"`
	Language       string         `json:"language"`
	State          string         `json:"state"`
	ChoiceHistory  []ChoiceRecord `json:"choiceHistory,omitempty"`
	ShownSlotIDs   []string       `json:"shownSlotIds,omitempty"`
	// PendingSlot is the slot awaiting the customer's confirm tap. Set when
	// the confirmation card is shown, cleared when they ask to change.
	PendingSlot *SlotSuggestion `json:"pendingSlot,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Terminal reports whether the conversation has finished one way or another.
func (c *BookingContext) Terminal() bool {
	return c.State == StateConfirmed || c.State == StateAbandoned
}

// SessionMetadata is a cheap view of a stored context, without the payload.
type SessionMetadata struct {
	SessionID    string        `json:"sessionId"`
	State        string        `json:"state"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	TTLRemaining time.Duration `json:"ttlRemaining"`
}
