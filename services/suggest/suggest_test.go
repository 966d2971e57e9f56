package suggest

import (
	"testing"

	"salonbot/models"
)

func slot(id, date, start, master string) models.SlotSuggestion {
	return models.SlotSuggestion{ID: id, Date: date, StartTime: start, MasterID: master, ServiceID: "cut", Duration: 45, Price: 1500}
}

func TestRankByTimeProximity_TierAndDistance(t *testing.T) {
	slots := []models.SlotSuggestion{
		slot("a", "2026-09-01", "10:00", "m1"), // 5h away
		slot("b", "2026-09-01", "14:00", "m1"), // 60 min, close tier
		slot("c", "2026-09-01", "16:10", "m1"), // 70 min, near tier
		slot("d", "2026-09-01", "17:30", "m1"), // 150 min, near tier
	}
	ranked, err := RankByTimeProximity(slots, "15:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked[0].ID != "b" {
		t.Fatalf("expected closest slot b first, got %s", ranked[0].ID)
	}
	// c and d share the near tier; c wins on absolute minute distance.
	if ranked[1].ID != "c" || ranked[2].ID != "d" {
		t.Fatalf("expected c,d ordering within tier, got %s,%s", ranked[1].ID, ranked[2].ID)
	}
	if ranked[3].ID != "a" {
		t.Fatalf("expected distant slot a last, got %s", ranked[3].ID)
	}
	if ranked[0].Score.Total != 500 || ranked[1].Score.Total != 300 {
		t.Fatalf("unexpected tier scores: %v, %v", ranked[0].Score.Total, ranked[1].Score.Total)
	}
	if ranked[0].Rank != 1 || ranked[3].Rank != 4 {
		t.Fatalf("ranks must be 1-based and dense: %d..%d", ranked[0].Rank, ranked[3].Rank)
	}
}

func TestRankByTimeProximity_StableTies(t *testing.T) {
	// Equidistant at the same tier: input order must survive.
	slots := []models.SlotSuggestion{
		slot("first", "2026-09-01", "14:00", "m1"),
		slot("second", "2026-09-01", "16:00", "m1"),
	}
	ranked, err := RankByTimeProximity(slots, "15:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked[0].ID != "first" || ranked[1].ID != "second" {
		t.Fatalf("tie broke input order: %s, %s", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankByTimeProximity_DoesNotMutateInput(t *testing.T) {
	slots := []models.SlotSuggestion{
		slot("b", "2026-09-01", "18:00", "m1"),
		slot("a", "2026-09-01", "15:00", "m1"),
	}
	if _, err := RankByTimeProximity(slots, "15:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots[0].ID != "b" || slots[1].ID != "a" {
		t.Fatalf("input slice was reordered: %s, %s", slots[0].ID, slots[1].ID)
	}
}

func TestRankByTimeProximity_InvalidTarget(t *testing.T) {
	if _, err := RankByTimeProximity(nil, "25:99"); err == nil {
		t.Fatal("expected error for malformed target time")
	}
}

func TestRankByTimeProximity_EmptyInput(t *testing.T) {
	ranked, err := RankByTimeProximity(nil, "15:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %d", len(ranked))
	}
}

func TestRankByDateProximity(t *testing.T) {
	slots := []models.SlotSuggestion{
		slot("far", "2026-09-10", "10:00", "m1"),
		slot("next", "2026-09-02", "10:00", "m1"),
		slot("same", "2026-09-01", "10:00", "m1"),
	}
	ranked, err := RankByDateProximity(slots, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked[0].ID != "same" || ranked[1].ID != "next" || ranked[2].ID != "far" {
		t.Fatalf("unexpected order: %s,%s,%s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	if ranked[0].Indicators.Tier != models.TierSameDay {
		t.Fatalf("expected same_day tier, got %s", ranked[0].Indicators.Tier)
	}
}

func TestRankByMultipleFactors_StaffDominates(t *testing.T) {
	slots := []models.SlotSuggestion{
		slot("close-other-master", "2026-09-01", "15:00", "m2"),
		slot("far-right-master", "2026-09-01", "19:00", "m1"),
	}
	zero := Weights{Date: 0.3, Time: 0.5, Master: 0}
	ranked, err := RankByMultipleFactors(slots, Preferences{
		Date: "2026-09-01", Time: "15:00", Master: "m1", Weights: &zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Even with a zero master weight the exact staff match bonus applies
	// and outweighs a perfect time match.
	if ranked[0].ID != "far-right-master" {
		t.Fatalf("expected staff match to dominate, got %s first", ranked[0].ID)
	}
	if ranked[0].Score.Master != 1000 {
		t.Fatalf("expected bare 1000 staff bonus with zero weight, got %v", ranked[0].Score.Master)
	}
}

func TestRankByMultipleFactors_ZeroWeightZeroesRefinement(t *testing.T) {
	zero := Weights{Date: 0, Time: 0, Master: 0}
	b, err := CalculateProximityScore(slot("s", "2026-09-01", "15:00", "m1"), Preferences{
		Date: "2026-09-01", Time: "15:00", Weights: &zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the unweighted tier bonuses remain.
	if b.Time != 500 || b.Date != 500 {
		t.Fatalf("expected bare tier bonuses, got time=%v date=%v", b.Time, b.Date)
	}
}

func TestAddVisualIndicators_LimitsStars(t *testing.T) {
	slots := []models.SlotSuggestion{
		slot("a", "2026-09-01", "15:00", "m1"),
		slot("b", "2026-09-01", "15:30", "m1"),
		slot("c", "2026-09-01", "14:30", "m1"),
		slot("d", "2026-09-01", "15:15", "m1"),
	}
	ranked, err := RankByTimeProximity(slots, "15:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := AddVisualIndicators(ranked, 3)
	for i := 0; i < 3; i++ {
		if !out[i].Indicators.Starred {
			t.Fatalf("expected slot %d starred", i)
		}
	}
	// Ranked order is a (0m), d (15m), b (30m), c (30m, after b on input
	// order); c is a tight time match but sits beyond the limit.
	if out[3].ID != "c" || out[3].Indicators.Starred {
		t.Fatalf("entry beyond limit must not be starred: %s %v", out[3].ID, out[3].Indicators.Starred)
	}
	if out[0].Indicators.ProximityText != "same time" {
		t.Fatalf("unexpected proximity text: %q", out[0].Indicators.ProximityText)
	}
	if out[2].Indicators.ProximityText != "30 minutes later" {
		t.Fatalf("unexpected proximity text: %q", out[2].Indicators.ProximityText)
	}
}
