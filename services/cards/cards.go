package cards

import (
	"fmt"
	"strconv"
	"time"

	"salonbot/models"
	"salonbot/services/messages"
)

// ValidationError reports input this builder refuses to render.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validationError: " + e.Message
}

// BuildSlotSelectionCard renders ranked slots as an interactive payload:
// 1-3 slots become tap buttons, 4-10 a list grouped by date. More than 10
// candidates must be truncated by the caller; this builder never drops or
// re-ranks entries on its own.
func BuildSlotSelectionCard(slots []models.RankedSlot, language, bodyOverride string) (*models.CardPayload, error) {
	if len(slots) == 0 {
		return nil, &ValidationError{Message: "no slots to render"}
	}
	if len(slots) > models.MaxListRows {
		return nil, &ValidationError{Message: fmt.Sprintf("%d slots exceed the %d-row channel limit", len(slots), models.MaxListRows)}
	}

	body := bodyOverride
	if body == "" {
		msg, err := messages.GetMessage(messages.KeySlotsFound, language, map[string]string{
			"count": strconv.Itoa(len(slots)),
		})
		if err != nil {
			return nil, err
		}
		body = msg
	}

	if len(slots) <= models.MaxButtons {
		return buildSlotButtons(slots, language, body), nil
	}
	return buildSlotList(slots, language, body), nil
}

func buildSlotButtons(slots []models.RankedSlot, language, body string) *models.CardPayload {
	loc := localeFor(language)
	buttons := make([]models.Button, 0, len(slots))
	for _, s := range slots {
		buttons = append(buttons, models.Button{
			ID:    slotButtonID(s.ID),
			Title: truncate(buttonTitle(loc, s), models.MaxButtonTitleLen),
		})
	}
	return &models.CardPayload{
		Kind:    models.CardKindButtons,
		Body:    body,
		Buttons: buttons,
	}
}

func buildSlotList(slots []models.RankedSlot, language, body string) *models.CardPayload {
	loc := localeFor(language)

	// Group rows by date, preserving rank order within and across groups.
	var sections []models.ListSection
	index := make(map[string]int)
	for _, s := range slots {
		title := sectionTitle(loc, s.Date)
		i, ok := index[s.Date]
		if !ok {
			i = len(sections)
			index[s.Date] = i
			sections = append(sections, models.ListSection{Title: title})
		}
		sections[i].Rows = append(sections[i].Rows, models.ListRow{
			ID:          slotButtonID(s.ID),
			Title:       truncate(rowTitle(s), models.MaxRowTitleLen),
			Description: rowDescription(loc, s),
		})
	}
	return &models.CardPayload{
		Kind:        models.CardKindList,
		Body:        body,
		ButtonLabel: listButtonLabel(language),
		Sections:    sections,
	}
}

// BuildChoiceCard turns a message-layer choice spec into a button payload.
func BuildChoiceCard(spec *messages.ChoiceCardSpec) (*models.CardPayload, error) {
	if spec == nil || len(spec.Choices) == 0 {
		return nil, &ValidationError{Message: "empty choice spec"}
	}
	if len(spec.Choices) > models.MaxButtons {
		return nil, &ValidationError{Message: "choice card exceeds button limit"}
	}
	buttons := make([]models.Button, 0, len(spec.Choices))
	for _, c := range spec.Choices {
		buttons = append(buttons, models.Button{ID: c.ID, Title: truncate(c.Label, models.MaxButtonTitleLen)})
	}
	return &models.CardPayload{
		Kind:    models.CardKindButtons,
		Body:    spec.Body,
		Buttons: buttons,
	}, nil
}

// BuildConfirmationCard always offers exactly two actions: confirm and
// change. There is no silent auto-confirm path.
func BuildConfirmationCard(slot models.SlotSuggestion, language string) (*models.CardPayload, error) {
	loc := localeFor(language)
	day := longDate(loc, slot.Date)
	body, err := messages.GetMessage(messages.KeyConfirmPrompt, language, map[string]string{
		"day":    day,
		"time":   slot.StartTime,
		"master": slot.MasterName,
	})
	if err != nil {
		return nil, err
	}
	return &models.CardPayload{
		Kind: models.CardKindButtons,
		Body: body,
		Buttons: []models.Button{
			{ID: confirmButtonID(slot.ID), Title: actionLabel(confirmLabels, language)},
			{ID: ChangeButtonID, Title: actionLabel(changeLabels, language)},
		},
	}, nil
}

// BuildAlternativeSlotsCard renders ranked alternatives under an empathetic
// header, starring what the ranking marked.
func BuildAlternativeSlotsCard(alternatives []models.RankedSlot, language, headerMessage string) (*models.CardPayload, error) {
	if headerMessage == "" {
		return nil, &ValidationError{Message: "alternatives card requires a header message"}
	}
	payload, err := BuildSlotSelectionCard(alternatives, language, headerMessage)
	if err != nil {
		return nil, err
	}
	if payload.Kind == models.CardKindButtons {
		loc := localeFor(language)
		for i, s := range alternatives {
			if s.Indicators.Starred {
				payload.Buttons[i].Title = truncate("⭐ "+buttonTitle(loc, s), models.MaxButtonTitleLen)
			}
		}
	}
	return payload, nil
}

// Composite machine-parsable ids: entity type plus slot identity, so a tap
// resolves without a secondary lookup.
const ChangeButtonID = "change_booking"

func slotButtonID(slotID string) string    { return "slot_" + slotID }
func confirmButtonID(slotID string) string { return "confirm_" + slotID }

// buttonTitle is "short weekday + time", e.g. "Tue 14:00".
func buttonTitle(loc *locale, s models.RankedSlot) string {
	if d, err := time.Parse("2006-01-02", s.Date); err == nil {
		return fmt.Sprintf("%s %s", loc.weekdaysShort[d.Weekday()], s.StartTime)
	}
	return s.StartTime
}

func rowTitle(s models.RankedSlot) string {
	title := fmt.Sprintf("%s · %s", s.StartTime, s.MasterName)
	if s.Indicators.Starred {
		title = "⭐ " + title
	}
	return title
}

func rowDescription(loc *locale, s models.RankedSlot) string {
	desc := fmt.Sprintf("%d min · %s%s", s.Duration, formatPrice(s.Price), loc.currency)
	if s.Indicators.ProximityText != "" {
		desc += " · " + s.Indicators.ProximityText
	}
	return desc
}

func sectionTitle(loc *locale, date string) string {
	if d, err := time.Parse("2006-01-02", date); err == nil {
		return loc.dateFormat(loc, d)
	}
	return date
}

// LongDate renders a "2006-01-02" date the way the confirmation card does,
// e.g. "Tuesday, 1 Sep" / "Вторник, 1 сен". Unparseable input is returned
// unchanged.
func LongDate(language, date string) string {
	return longDate(localeFor(language), date)
}

func longDate(loc *locale, date string) string {
	if d, err := time.Parse("2006-01-02", date); err == nil {
		return fmt.Sprintf("%s, %d %s", loc.weekdaysLong[d.Weekday()], d.Day(), loc.months[d.Month()-1])
	}
	return date
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return strconv.FormatInt(int64(p), 10)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// truncate cuts by runes so multibyte labels stay within channel limits.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
