package suggest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"salonbot/models"
)

// Tiered proximity bonuses. These are deliberately coarse steps rather than a
// continuous curve so that near-equivalent slots rank by tier first and by
// exact distance only within a tier.
const (
	timeTierCloseBonus = 500 // within 1 hour, star-eligible
	timeTierNearBonus  = 300 // within 2 hours
	timeTierFarBonus   = 100 // within 3 hours

	dateTierSameBonus = 500 // same day
	dateTierNextBonus = 300 // 1 day off
	dateTierNearBonus = 100 // up to 3 days off

	// An exact staff match dominates every proximity factor. It is applied
	// unweighted: a zero master weight silences the fine-grained proximity
	// refinement, never the match itself.
	staffMatchBonus = 1000

	// Cap on the date tier contribution inside RankByMultipleFactors.
	dateFactorCap = 300

	// Scale for the weighted proximity refinement on top of tier bonuses.
	refinementScale = 100
)

// DefaultIndicatorLimit bounds how many ranked slots get emphasized.
const DefaultIndicatorLimit = 3

// Weights scales the normalized proximity refinement per factor.
type Weights struct {
	Date   float64 `json:"date"`
	Time   float64 `json:"time"`
	Master float64 `json:"master"`
}

// DefaultWeights returns the product-default factor weights.
func DefaultWeights() Weights {
	return Weights{Date: 0.3, Time: 0.5, Master: 0.2}
}

// Preferences describes what the customer originally asked for.
type Preferences struct {
	Date    string // "2006-01-02", optional
	Time    string // "15:04", optional
	Master  string // master id, optional
	Weights *Weights
}

// RankByTimeProximity ranks slots by how close their start time is to
// targetTime ("15:04"). Ties at the same tier break by absolute minute
// distance, then by original input order. The input slice is not mutated.
func RankByTimeProximity(slots []models.SlotSuggestion, targetTime string) ([]models.RankedSlot, error) {
	target, err := parseClock(targetTime)
	if err != nil {
		return nil, err
	}
	ranked := make([]models.RankedSlot, 0, len(slots))
	for _, s := range slots {
		start, err := parseClock(s.StartTime)
		if err != nil {
			continue // unparseable slot never outranks a valid one
		}
		dist := absInt(start - target)
		bonus := timeTierBonus(dist)
		ranked = append(ranked, models.RankedSlot{
			SlotSuggestion: s,
			Score:          models.ScoreBreakdown{Total: float64(bonus), Time: float64(bonus)},
			Indicators:     models.SlotIndicators{Tier: timeTier(dist), ProximityText: proximityPhrase(start - target)},
		})
	}
	sortRanked(ranked, func(r models.RankedSlot) int {
		start, _ := parseClock(r.StartTime)
		return absInt(start - target)
	})
	return ranked, nil
}

// RankByDateProximity ranks slots by day distance to targetDate ("2006-01-02").
func RankByDateProximity(slots []models.SlotSuggestion, targetDate string) ([]models.RankedSlot, error) {
	target, err := time.Parse("2006-01-02", targetDate)
	if err != nil {
		return nil, fmt.Errorf("invalid target date %q: %w", targetDate, err)
	}
	ranked := make([]models.RankedSlot, 0, len(slots))
	for _, s := range slots {
		d, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			continue
		}
		days := dayDistance(d, target)
		bonus := dateTierBonus(days)
		tier := models.TierOther
		if days == 0 {
			tier = models.TierSameDay
		}
		ranked = append(ranked, models.RankedSlot{
			SlotSuggestion: s,
			Score:          models.ScoreBreakdown{Total: float64(bonus), Date: float64(bonus)},
			Indicators:     models.SlotIndicators{Tier: tier, ProximityText: dayPhrase(days, d.Before(target))},
		})
	}
	sortRanked(ranked, func(r models.RankedSlot) int {
		d, _ := time.Parse("2006-01-02", r.Date)
		return dayDistance(d, target) * 24 * 60
	})
	return ranked, nil
}

// RankByMultipleFactors combines staff match, time proximity and date
// proximity. Tier bonuses are the unweighted base; weights scale only the
// normalized (0-1) proximity refinement on top of them.
func RankByMultipleFactors(slots []models.SlotSuggestion, prefs Preferences) ([]models.RankedSlot, error) {
	target, err := newTarget(prefs)
	if err != nil {
		return nil, err
	}
	ranked := make([]models.RankedSlot, 0, len(slots))
	for _, s := range slots {
		score := target.scoreSlot(s)
		ranked = append(ranked, models.RankedSlot{
			SlotSuggestion: s,
			Score:          score,
			Indicators:     target.indicators(s),
		})
	}
	sortRanked(ranked, target.tieDistance)
	return ranked, nil
}

// CalculateProximityScore computes the factor breakdown for one slot against
// the customer's preferences, without sorting anything.
func CalculateProximityScore(slot models.SlotSuggestion, prefs Preferences) (models.ScoreBreakdown, error) {
	target, err := newTarget(prefs)
	if err != nil {
		return models.ScoreBreakdown{}, err
	}
	return target.scoreSlot(slot), nil
}

// AddVisualIndicators stars at most limit top-ranked slots and attaches their
// proximity phrase. Entries beyond limit are never starred, however close
// they are, so a button-limited UI can bound emphasis. Returns a copy.
func AddVisualIndicators(ranked []models.RankedSlot, limit int) []models.RankedSlot {
	if limit <= 0 {
		limit = DefaultIndicatorLimit
	}
	out := make([]models.RankedSlot, len(ranked))
	copy(out, ranked)
	for i := range out {
		out[i].Indicators.Starred = i < limit && out[i].Indicators.Tier == models.TierClose
	}
	return out
}

// target precomputes the parsed preference fields for scoring.
type target struct {
	hasTime bool
	minutes int
	hasDate bool
	date    time.Time
	master  string
	weights Weights
}

func newTarget(prefs Preferences) (*target, error) {
	t := &target{master: prefs.Master, weights: DefaultWeights()}
	if prefs.Weights != nil {
		t.weights = *prefs.Weights
	}
	if prefs.Time != "" {
		m, err := parseClock(prefs.Time)
		if err != nil {
			return nil, err
		}
		t.hasTime = true
		t.minutes = m
	}
	if prefs.Date != "" {
		d, err := time.Parse("2006-01-02", prefs.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid target date %q: %w", prefs.Date, err)
		}
		t.hasDate = true
		t.date = d
	}
	return t, nil
}

func (t *target) scoreSlot(s models.SlotSuggestion) models.ScoreBreakdown {
	var b models.ScoreBreakdown
	if t.hasTime {
		if start, err := parseClock(s.StartTime); err == nil {
			dist := absInt(start - t.minutes)
			norm := math.Max(0, 1-float64(dist)/180)
			b.Time = float64(timeTierBonus(dist)) + refinementScale*t.weights.Time*norm
		}
	}
	if t.hasDate {
		if d, err := time.Parse("2006-01-02", s.Date); err == nil {
			days := dayDistance(d, t.date)
			bonus := dateTierBonus(days)
			if bonus > dateFactorCap {
				bonus = dateFactorCap
			}
			norm := math.Max(0, 1-float64(days)/3)
			b.Date = float64(bonus) + refinementScale*t.weights.Date*norm
		}
	}
	if t.master != "" && s.MasterID == t.master {
		b.Master = staffMatchBonus + refinementScale*t.weights.Master
	}
	b.Total = b.Time + b.Date + b.Master
	return b
}

func (t *target) indicators(s models.SlotSuggestion) models.SlotIndicators {
	ind := models.SlotIndicators{Tier: models.TierOther}
	if t.hasTime {
		if start, err := parseClock(s.StartTime); err == nil {
			ind.Tier = timeTier(absInt(start - t.minutes))
			ind.ProximityText = proximityPhrase(start - t.minutes)
			return ind
		}
	}
	if t.hasDate {
		if d, err := time.Parse("2006-01-02", s.Date); err == nil {
			days := dayDistance(d, t.date)
			if days == 0 {
				ind.Tier = models.TierSameDay
			}
			ind.ProximityText = dayPhrase(days, d.Before(t.date))
		}
	}
	return ind
}

// tieDistance is the secondary sort key: minute distance when a time target
// exists, day distance otherwise.
func (t *target) tieDistance(r models.RankedSlot) int {
	if t.hasTime {
		if start, err := parseClock(r.StartTime); err == nil {
			return absInt(start - t.minutes)
		}
	}
	if t.hasDate {
		if d, err := time.Parse("2006-01-02", r.Date); err == nil {
			return dayDistance(d, t.date) * 24 * 60
		}
	}
	return 0
}

// sortRanked orders by score descending, then by distance ascending, keeping
// input order for remaining ties, and stamps 1-based ranks.
func sortRanked(ranked []models.RankedSlot, distance func(models.RankedSlot) int) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Total != ranked[j].Score.Total {
			return ranked[i].Score.Total > ranked[j].Score.Total
		}
		return distance(ranked[i]) < distance(ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
}

func timeTierBonus(minutes int) int {
	switch {
	case minutes <= 60:
		return timeTierCloseBonus
	case minutes <= 120:
		return timeTierNearBonus
	case minutes <= 180:
		return timeTierFarBonus
	default:
		return 0
	}
}

func timeTier(minutes int) string {
	switch {
	case minutes <= 60:
		return models.TierClose
	case minutes <= 120:
		return models.TierNear
	default:
		return models.TierOther
	}
}

func dateTierBonus(days int) int {
	switch {
	case days == 0:
		return dateTierSameBonus
	case days == 1:
		return dateTierNextBonus
	case days <= 3:
		return dateTierNearBonus
	default:
		return 0
	}
}

// proximityPhrase renders a human-readable offset like "30 minutes earlier".
// delta is slot minus target, in minutes.
func proximityPhrase(delta int) string {
	if delta == 0 {
		return "same time"
	}
	dir := "later"
	if delta < 0 {
		dir = "earlier"
		delta = -delta
	}
	if delta%60 == 0 {
		h := delta / 60
		if h == 1 {
			return fmt.Sprintf("1 hour %s", dir)
		}
		return fmt.Sprintf("%d hours %s", h, dir)
	}
	return fmt.Sprintf("%d minutes %s", delta, dir)
}

func dayPhrase(days int, earlier bool) string {
	if days == 0 {
		return "same day"
	}
	dir := "later"
	if earlier {
		dir = "earlier"
	}
	if days == 1 {
		return fmt.Sprintf("1 day %s", dir)
	}
	return fmt.Sprintf("%d days %s", days, dir)
}

// parseClock converts "15:04" to minutes from midnight.
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", v, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func dayDistance(a, b time.Time) int {
	return absInt(int(a.Sub(b).Hours() / 24))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
