package session

import (
	"strings"
	"unicode"

	"salonbot/models"
)

// RecoverFromHistory rebuilds a best-effort context from transport messages
// when the store is unreachable or the key expired early. Replay recovers the
// language, the last options shown and whether a confirmation was pending.
// When the replay cannot settle on one selection it returns
// ErrAmbiguousRecovery instead of guessing; the caller restarts the
// conversation.
func (s *RedisContextStore) RecoverFromHistory(customerID, salonID string, msgs []models.TransportMessage) (*models.BookingContext, error) {
	if len(msgs) == 0 {
		return nil, ErrSessionNotFound
	}

	bc := &models.BookingContext{
		SessionID:  SessionKey(customerID, salonID),
		CustomerID: customerID,
		SalonID:    salonID,
		State:      models.StateStarted,
		CreatedAt:  msgs[0].Timestamp,
		UpdatedAt:  msgs[len(msgs)-1].Timestamp,
	}

	pendingConfirm := false
	pendingSelection := ""

	for _, m := range msgs {
		switch m.Direction {
		case models.DirectionInbound:
			if bc.Language == "" && m.Text != "" {
				bc.Language = DetectLanguage(m.Text)
			}
			if m.ButtonID == "" {
				continue
			}
			bc.ChoiceHistory = appendChoice(bc.ChoiceHistory, models.ChoiceRecord{
				ChoiceID:   m.ButtonID,
				SelectedAt: m.Timestamp,
			})
			if strings.HasPrefix(m.ButtonID, "slot_") {
				if pendingSelection != "" && pendingSelection != m.ButtonID && !pendingConfirm {
					// Two competing selections with no confirmation prompt
					// in between: replay cannot tell which ask is current.
					return nil, ErrAmbiguousRecovery
				}
				pendingSelection = m.ButtonID
				pendingConfirm = false
			}
			if strings.HasPrefix(m.ButtonID, "confirm_") {
				bc.State = models.StateConfirmed
				pendingConfirm = false
			}
		case models.DirectionOutbound:
			ids := referencedSlotIDs(m.ButtonID)
			if len(ids) > 0 {
				bc.ShownSlotIDs = ids
				bc.State = models.StateSlotsShown
			}
			if strings.Contains(m.ButtonID, "confirm_") {
				pendingConfirm = true
				bc.State = models.StateChoicePresented
			}
		}
	}

	if bc.Language == "" {
		bc.Language = "en"
	}
	if bc.State == models.StateConfirmed {
		// Terminal conversations have nothing to resume.
		return nil, ErrSessionNotFound
	}
	return bc, nil
}

// referencedSlotIDs extracts slot ids out of an outbound payload's
// space-joined button id list. The transport log stores outbound interactive
// messages with their button ids concatenated this way.
func referencedSlotIDs(buttonIDs string) []string {
	var out []string
	for _, id := range strings.Fields(buttonIDs) {
		if strings.HasPrefix(id, "slot_") {
			out = append(out, strings.TrimPrefix(id, "slot_"))
		}
	}
	return out
}

// DetectLanguage guesses the reply language from a free-text message.
// Cyrillic means Russian; Spanish markers mean Spanish; everything else
// answers in English.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	for _, r := range lower {
		if unicode.Is(unicode.Cyrillic, r) {
			return "ru"
		}
	}
	for _, marker := range []string{"¿", "¡", "ñ", "á", "é", "í", "ó", "ú"} {
		if strings.Contains(lower, marker) {
			return "es"
		}
	}
	for _, word := range []string{"hola", "quiero", "cita", "mañana", "gracias"} {
		if strings.Contains(lower, word) {
			return "es"
		}
	}
	return "en"
}
