package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"salonbot/models"
)

func TestClampTTL_HardCapFromCreation(t *testing.T) {
	created := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Fresh session: full default TTL applies.
	if ttl := clampTTL(DefaultTTL, created, created, HardCap); ttl != DefaultTTL {
		t.Fatalf("fresh session should get full TTL, got %s", ttl)
	}

	// Extend(1000) at t=3000 must cap at t=3600, not t=4000.
	at := created.Add(3000 * time.Second)
	ttl := clampTTL(1000*time.Second, created, at, HardCap)
	if ttl != 600*time.Second {
		t.Fatalf("expected 600s clamped TTL, got %s", ttl)
	}

	// Past the hard cap nothing remains.
	at = created.Add(3700 * time.Second)
	if ttl := clampTTL(DefaultTTL, created, at, HardCap); ttl > 0 {
		t.Fatalf("expected non-positive TTL past hard cap, got %s", ttl)
	}
}

func TestAppendChoice_CapsAtTen(t *testing.T) {
	var history []models.ChoiceRecord
	for i := 0; i < 25; i++ {
		// The same choice twice in a row is two entries, never deduplicated.
		history = appendChoice(history, models.ChoiceRecord{ChoiceID: fmt.Sprintf("c%d", i/2)})
	}
	if len(history) != models.MaxChoiceHistory {
		t.Fatalf("expected history capped at %d, got %d", models.MaxChoiceHistory, len(history))
	}
	if history[len(history)-1].ChoiceID != "c12" {
		t.Fatalf("expected newest entry kept, got %s", history[len(history)-1].ChoiceID)
	}
	if history[0].ChoiceID != "c7" {
		t.Fatalf("expected oldest entries evicted, got %s first", history[0].ChoiceID)
	}
}

func TestSessionKey(t *testing.T) {
	if k := SessionKey("cust1", "salon9"); k != "session:cust1:salon9" {
		t.Fatalf("unexpected key %q", k)
	}
}

func msg(dir, typ, text, buttonID string, at int) models.TransportMessage {
	return models.TransportMessage{
		ID: fmt.Sprintf("m%d", at), Type: typ, Text: text, ButtonID: buttonID,
		Direction: dir, Timestamp: time.Date(2026, 8, 20, 12, at, 0, 0, time.UTC),
	}
}

func TestRecoverFromHistory_HappyPath(t *testing.T) {
	s := &RedisContextStore{}
	msgs := []models.TransportMessage{
		msg(models.DirectionInbound, "text", "Хочу записаться на стрижку", "", 0),
		msg(models.DirectionOutbound, "interactive", "", "slot_a1 slot_b2 slot_c3", 1),
		msg(models.DirectionInbound, "button_reply", "", "slot_b2", 2),
		msg(models.DirectionOutbound, "interactive", "", "confirm_b2 change_booking", 3),
	}
	bc, err := s.RecoverFromHistory("cust1", "salon9", msgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.Language != "ru" {
		t.Fatalf("expected ru from cyrillic text, got %s", bc.Language)
	}
	if bc.State != models.StateChoicePresented {
		t.Fatalf("expected pending confirmation state, got %s", bc.State)
	}
	if len(bc.ShownSlotIDs) != 3 || bc.ShownSlotIDs[1] != "b2" {
		t.Fatalf("expected shown slots recovered, got %v", bc.ShownSlotIDs)
	}
	if len(bc.ChoiceHistory) != 1 || bc.ChoiceHistory[0].ChoiceID != "slot_b2" {
		t.Fatalf("expected the tap in choice history, got %v", bc.ChoiceHistory)
	}
	if bc.SessionID != "session:cust1:salon9" {
		t.Fatalf("unexpected session id %s", bc.SessionID)
	}
}

func TestRecoverFromHistory_AmbiguousSelections(t *testing.T) {
	s := &RedisContextStore{}
	msgs := []models.TransportMessage{
		msg(models.DirectionInbound, "text", "haircut tomorrow", "", 0),
		msg(models.DirectionOutbound, "interactive", "", "slot_a1 slot_b2", 1),
		msg(models.DirectionInbound, "button_reply", "", "slot_a1", 2),
		msg(models.DirectionInbound, "button_reply", "", "slot_b2", 3),
	}
	_, err := s.RecoverFromHistory("cust1", "salon9", msgs)
	if !errors.Is(err, ErrAmbiguousRecovery) {
		t.Fatalf("expected ErrAmbiguousRecovery, got %v", err)
	}
}

func TestRecoverFromHistory_Empty(t *testing.T) {
	s := &RedisContextStore{}
	if _, err := s.RecoverFromHistory("cust1", "salon9", nil); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRecoverFromHistory_ConfirmedIsTerminal(t *testing.T) {
	s := &RedisContextStore{}
	msgs := []models.TransportMessage{
		msg(models.DirectionInbound, "text", "book me in", "", 0),
		msg(models.DirectionOutbound, "interactive", "", "slot_a1", 1),
		msg(models.DirectionInbound, "button_reply", "", "slot_a1", 2),
		msg(models.DirectionOutbound, "interactive", "", "confirm_a1 change_booking", 3),
		msg(models.DirectionInbound, "button_reply", "", "confirm_a1", 4),
	}
	if _, err := s.RecoverFromHistory("cust1", "salon9", msgs); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("confirmed conversation must not resume, got %v", err)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"Хочу записаться":          "ru",
		"quiero una cita mañana":   "es",
		"¿Tienen turno el viernes?": "es",
		"book a haircut tomorrow":  "en",
		"":                         "en",
	}
	for text, want := range cases {
		if got := DetectLanguage(text); got != want {
			t.Fatalf("DetectLanguage(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestNewRedisContextStoreLifetimes(t *testing.T) {
	s := NewRedisContextStore(nil, zap.NewNop(), 600*time.Second, 1200*time.Second)
	if s.DefaultTTL != 600*time.Second || s.HardCapTTL != 1200*time.Second {
		t.Fatalf("configured lifetimes not applied: ttl=%s cap=%s", s.DefaultTTL, s.HardCapTTL)
	}

	// Non-positive values fall back to the package defaults.
	s = NewRedisContextStore(nil, zap.NewNop(), 0, -1)
	if s.DefaultTTL != DefaultTTL || s.HardCapTTL != HardCap {
		t.Fatalf("defaults not applied: ttl=%s cap=%s", s.DefaultTTL, s.HardCapTTL)
	}
}
