package messages

import (
	"errors"
	"strings"
	"testing"
)

func TestGetMessage_Interpolates(t *testing.T) {
	got, err := GetMessage(KeySlotTaken, "ru", map[string]string{"time": "15:00", "day": "пятницу"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Извините, 15:00 в пятницу уже занято." {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestGetMessage_MissingParameterFails(t *testing.T) {
	// Missing "day" must fail outright, never render "{{day}}".
	got, err := GetMessage(KeySlotTaken, "ru", map[string]string{"time": "15:00"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v (%q)", err, got)
	}
	if len(ve.Missing) != 1 || ve.Missing[0] != "day" {
		t.Fatalf("expected missing [day], got %v", ve.Missing)
	}
	if got != "" {
		t.Fatalf("partial render leaked: %q", got)
	}
}

func TestGetMessage_UnknownKey(t *testing.T) {
	if _, err := GetMessage("NO_SUCH_KEY", "en", nil); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestGetMessage_UnsupportedLanguageFallsBack(t *testing.T) {
	got, err := GetMessage(KeyGreeting, "pt-BR", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := GetMessage(KeyGreeting, "en", nil)
	if got != want {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestGetContextualMessage_SpecificityChain(t *testing.T) {
	casual, err := GetContextualMessage(KeyGreeting, "en", BusinessContext{BusinessType: "barbershop", Tone: "casual"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(casual, "chair") {
		t.Fatalf("expected type+tone variant, got %q", casual)
	}

	typed, err := GetContextualMessage(KeyGreeting, "en", BusinessContext{BusinessType: "barbershop", Tone: "corporate"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(typed, "fresh cut") {
		t.Fatalf("expected type-only variant for unknown tone, got %q", typed)
	}

	generic, err := GetContextualMessage(KeyGreeting, "en", BusinessContext{BusinessType: "laundromat"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := GetMessage(KeyGreeting, "en", nil)
	if generic != want {
		t.Fatalf("expected generic fallback, got %q", generic)
	}
}

func TestFormatWithLimits(t *testing.T) {
	msg := "line one\nline two\nline three"
	if got := FormatWithLimits(msg, 2); got != "line one\nline two" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	// The first line survives even maxLines of zero.
	if got := FormatWithLimits(msg, 0); got != "line one" {
		t.Fatalf("first line must be kept: %q", got)
	}
	if got := FormatWithLimits(msg, 10); got != msg {
		t.Fatalf("short message must pass through: %q", got)
	}
}

func TestGetEmotion(t *testing.T) {
	if e := GetEmotion(KeySlotTaken); e != EmotionEmpathetic {
		t.Fatalf("expected empathetic, got %s", e)
	}
	if e := GetEmotion("NO_SUCH_KEY"); e != EmotionNeutral {
		t.Fatalf("unknown key must be neutral, got %s", e)
	}
}

func TestGetChoiceCard_FixedIDs(t *testing.T) {
	card, err := GetChoiceCard(ScenarioTimeUnavailable, "ru", map[string]string{"time": "15:00", "day": "пятницу"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(card.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(card.Choices))
	}
	if card.Choices[0].ID != "choice_nearby_times" {
		t.Fatalf("choice ids are a fixed contract, got %s", card.Choices[0].ID)
	}
	if card.Choices[1].Label != "Другой день" {
		t.Fatalf("expected localized label, got %q", card.Choices[1].Label)
	}
	if card.Emotion != EmotionEmpathetic {
		t.Fatalf("expected scenario emotion, got %s", card.Emotion)
	}
}

func TestGetChoiceCard_UnknownScenario(t *testing.T) {
	if _, err := GetChoiceCard("alien_invasion", "en", nil); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestCatalogParameterSetsMatchPlaceholders(t *testing.T) {
	// Every declared parameter must appear as a placeholder in every language.
	for key, def := range catalog {
		for lang, text := range def.text {
			for _, p := range def.params {
				if !strings.Contains(text, "{{"+p+"}}") {
					t.Fatalf("%s/%s is missing placeholder {{%s}}", key, lang, p)
				}
			}
		}
	}
}
