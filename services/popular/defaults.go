package popular

import "salonbot/models"

// Business types with hand-curated default popular times. These are the hard
// fallback for salons with no usable history; no I/O is involved.
const (
	BusinessBeautySalon = "beauty_salon"
	BusinessBarbershop  = "barbershop"
	BusinessSpa         = "spa"
	BusinessNailSalon   = "nail_salon"
	BusinessGeneric     = "generic"
)

// defaultConfidence marks curated buckets as a neutral guess.
const defaultConfidence = 0.5

// (weekday, hour) pairs per business type, most popular first. Weekday 0 is
// Sunday. Derived from aggregate industry patterns, not per-salon data.
var defaultTimes = map[string][][2]int{
	BusinessBeautySalon: {
		{6, 11}, {6, 14}, {5, 17}, {5, 18}, {3, 18}, {4, 12},
	},
	BusinessBarbershop: {
		{6, 10}, {6, 12}, {5, 18}, {5, 19}, {4, 18}, {2, 9},
	},
	BusinessSpa: {
		{6, 12}, {0, 11}, {6, 15}, {5, 16}, {4, 19}, {3, 13},
	},
	BusinessNailSalon: {
		{5, 17}, {6, 11}, {6, 13}, {4, 18}, {3, 12}, {2, 16},
	},
	BusinessGeneric: {
		{6, 11}, {5, 17}, {3, 18}, {2, 10},
	},
}

// GetDefaultTimes returns curated popular times for a business type. Unknown
// types get the generic set.
func (s *DefaultPopularTimesService) GetDefaultTimes(businessType string) []models.PopularTimeSlot {
	pairs, ok := defaultTimes[businessType]
	if !ok {
		pairs = defaultTimes[BusinessGeneric]
	}
	out := make([]models.PopularTimeSlot, 0, len(pairs))
	for i, p := range pairs {
		out = append(out, models.PopularTimeSlot{
			DayOfWeek:     p[0],
			Hour:          p[1],
			WeightedScore: float64(len(pairs) - i), // preserve curated order
			Confidence:    defaultConfidence,
		})
	}
	return out
}
