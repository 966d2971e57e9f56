package models

// SlotSuggestion is a candidate bookable appointment produced by the
// availability source. Consumed, never mutated, by ranking.
type SlotSuggestion struct {
	ID         string  `json:"id" bson:"_id"`
	Date       string  `json:"date" bson:"date"`           // "2006-01-02"
	StartTime  string  `json:"startTime" bson:"startTime"` // "15:04"
	EndTime    string  `json:"endTime" bson:"endTime"`     // "15:04"
	MasterID   string  `json:"masterId" bson:"masterId"`
	MasterName string  `json:"masterName" bson:"masterName"`
	ServiceID  string  `json:"serviceId" bson:"serviceId"`
	Duration   int     `json:"duration" bson:"duration"` // minutes
	Price      float64 `json:"price" bson:"price"`
}

// ScoreBreakdown carries the per-factor components behind a slot's score.
type ScoreBreakdown struct {
	Total  float64 `json:"total"`
	Time   float64 `json:"time,omitempty"`
	Date   float64 `json:"date,omitempty"`
	Master float64 `json:"master,omitempty"`
}

// Highlight tiers for ranked slots, best first.
const (
	TierClose   = "close" // within an hour of the ask
	TierNear    = "near"  // within two hours
	TierSameDay = "same_day"
	TierOther   = "other"
)

// SlotIndicators holds the presentation hints attached by ranking.
type SlotIndicators struct {
	Starred       bool   `json:"starred"`
	ProximityText string `json:"proximityText,omitempty"`
	Tier          string `json:"tier,omitempty"`
}

// RankedSlot is a SlotSuggestion with its computed rank. Derived per ranking
// call, never persisted.
type RankedSlot struct {
	SlotSuggestion
	Score       ScoreBreakdown `json:"score"`
	Rank        int            `json:"rank"` // 1-based, stable ties
	Indicators  SlotIndicators `json:"indicators"`
	DisplayText string         `json:"displayText,omitempty"`
}
