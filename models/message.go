package models

import "time"

// MessageTemplate is one localized, parametrized customer-facing string.
// Loaded once at startup, read-only thereafter.
type MessageTemplate struct {
	Key      string   `json:"key"`
	Language string   `json:"language"`
	Text     string   `json:"text"`
	Params   []string `json:"params,omitempty"`
	Emotion  string   `json:"emotion,omitempty"`
	Emoji    string   `json:"emoji,omitempty"`
	MaxLines int      `json:"maxLines,omitempty"`
}

// Transport message directions.
const (
	DirectionInbound  = "in"
	DirectionOutbound = "out"
)

// TransportMessage is one channel-level message as the message-history
// reader returns it. Used only by session recovery.
type TransportMessage struct {
	ID        string    `json:"id" bson:"_id"`
	Type      string    `json:"type" bson:"type"` // "text", "button_reply", "interactive"
	Text      string    `json:"text,omitempty" bson:"text,omitempty"`
	ButtonID  string    `json:"buttonId,omitempty" bson:"buttonId,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Direction string    `json:"direction" bson:"direction"`
}
