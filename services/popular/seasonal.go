package popular

import (
	"sort"

	"salonbot/models"

	"github.com/montanaflynn/stats"
)

// DetectSeasonalPatterns groups bookings into ISO weeks and flags weeks more
// than one standard deviation above (peak) or below (quiet) the mean volume.
// Fewer than four observed weeks is too little signal to call a pattern.
func (s *DefaultPopularTimesService) DetectSeasonalPatterns(bookings []models.BookingRecord) []models.SeasonalPattern {
	type weekKey struct {
		year int
		week int
	}
	weeks := make(map[weekKey]int)
	for _, b := range bookings {
		if b.Status == models.BookingStatusCancelled {
			continue
		}
		y, w := b.StartTime.ISOWeek()
		weeks[weekKey{year: y, week: w}]++
	}
	if len(weeks) < 4 {
		return nil
	}

	counts := make([]float64, 0, len(weeks))
	for _, c := range weeks {
		counts = append(counts, float64(c))
	}
	mean, err := stats.Mean(counts)
	if err != nil {
		return nil
	}
	sd, err := stats.StandardDeviation(counts)
	if err != nil || sd == 0 {
		return nil
	}

	var patterns []models.SeasonalPattern
	for k, c := range weeks {
		delta := float64(c) - mean
		kind := ""
		switch {
		case delta > sd:
			kind = "peak"
		case delta < -sd:
			kind = "quiet"
		default:
			continue
		}
		patterns = append(patterns, models.SeasonalPattern{
			Year: k.year, Week: k.week, Bookings: c, Kind: kind, Delta: delta,
		})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Year != patterns[j].Year {
			return patterns[i].Year < patterns[j].Year
		}
		return patterns[i].Week < patterns[j].Week
	})
	return patterns
}
