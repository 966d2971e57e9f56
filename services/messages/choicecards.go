package messages

import "fmt"

// Choice card scenarios. Each maps to a fixed, hand-authored set of choice
// ids so button-click handling can pattern-match on them.
const (
	ScenarioTimeUnavailable   = "time_unavailable"
	ScenarioDayFull           = "day_full"
	ScenarioWeekFull          = "week_full"
	ScenarioIncompleteRequest = "incomplete_request"
	ScenarioMultipleOptions   = "multiple_options"
	ScenarioPopularTimes      = "popular_times"
)

// Choice is one option offered on a choice card.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ChoiceCardSpec is the message layer's description of a 2-3 option card;
// the card builder turns it into a channel payload.
type ChoiceCardSpec struct {
	Scenario string   `json:"scenario"`
	Body     string   `json:"body"`
	Emotion  string   `json:"emotion"`
	Choices  []Choice `json:"choices"`
}

type choiceDef struct {
	messageKey string
	choiceIDs  []string
	labels     map[string][]string // language -> label per choice id
}

var choiceCatalog = map[string]choiceDef{
	ScenarioTimeUnavailable: {
		messageKey: KeySlotTaken,
		choiceIDs:  []string{"choice_nearby_times", "choice_other_day", "choice_other_master"},
		labels: map[string][]string{
			"en": {"Nearby times", "Another day", "Another master"},
			"ru": {"Ближайшее время", "Другой день", "Другой мастер"},
			"es": {"Horas cercanas", "Otro día", "Otro maestro"},
		},
	},
	ScenarioDayFull: {
		messageKey: KeyNoSlotsDay,
		choiceIDs:  []string{"choice_next_day", "choice_this_week", "choice_popular"},
		labels: map[string][]string{
			"en": {"Next day", "Later this week", "Popular times"},
			"ru": {"Следующий день", "Позже на неделе", "Популярное время"},
			"es": {"Día siguiente", "Esta semana", "Horarios populares"},
		},
	},
	ScenarioWeekFull: {
		messageKey: KeyNoSlotsWeek,
		choiceIDs:  []string{"choice_next_week", "choice_waitlist"},
		labels: map[string][]string{
			"en": {"Next week", "Join waitlist"},
			"ru": {"Следующая неделя", "В лист ожидания"},
			"es": {"Próxima semana", "Lista de espera"},
		},
	},
	ScenarioIncompleteRequest: {
		messageKey: KeyAskService,
		choiceIDs:  []string{"choice_pick_service", "choice_pick_date", "choice_popular"},
		labels: map[string][]string{
			"en": {"Choose service", "Choose date", "Popular times"},
			"ru": {"Выбрать услугу", "Выбрать дату", "Популярное время"},
			"es": {"Elegir servicio", "Elegir fecha", "Horarios populares"},
		},
	},
	ScenarioMultipleOptions: {
		messageKey: KeySlotsFound,
		choiceIDs:  []string{"choice_earliest", "choice_preferred_master", "choice_cheapest"},
		labels: map[string][]string{
			"en": {"Earliest", "My master", "Lowest price"},
			"ru": {"Пораньше", "Мой мастер", "Подешевле"},
			"es": {"Lo más pronto", "Mi maestro", "Menor precio"},
		},
	},
	ScenarioPopularTimes: {
		messageKey: KeyPopularTimesIntro,
		choiceIDs:  []string{"choice_popular_morning", "choice_popular_afternoon", "choice_popular_evening"},
		labels: map[string][]string{
			"en": {"Morning", "Afternoon", "Evening"},
			"ru": {"Утро", "День", "Вечер"},
			"es": {"Mañana", "Tarde", "Noche"},
		},
	},
}

// GetChoiceCard builds the 2-3 option card spec for a scenario. The body is
// rendered from the scenario's message key with the given params.
func GetChoiceCard(scenario, language string, params map[string]string) (*ChoiceCardSpec, error) {
	def, ok := choiceCatalog[scenario]
	if !ok {
		return nil, fmt.Errorf("unknown choice scenario %q", scenario)
	}
	body, err := GetMessage(def.messageKey, language, params)
	if err != nil {
		return nil, err
	}
	labels, ok := def.labels[language]
	if !ok {
		labels = def.labels[DefaultLanguage]
	}
	choices := make([]Choice, len(def.choiceIDs))
	for i, id := range def.choiceIDs {
		choices[i] = Choice{ID: id, Label: labels[i]}
	}
	return &ChoiceCardSpec{
		Scenario: scenario,
		Body:     body,
		Emotion:  GetEmotion(def.messageKey),
		Choices:  choices,
	}, nil
}
