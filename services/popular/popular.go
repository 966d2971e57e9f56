package popular

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"salonbot/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "popular:"

// DefaultLookbackDays bounds how far back bookings count toward popularity.
const DefaultLookbackDays = 90

// Recency weight buckets by booking age.
const (
	weightRecent = 2.0 // 0-30 days
	weightMid    = 1.5 // 31-60 days
	weightOld    = 1.0 // 61-90 days
)

// wilsonZ is the z-score for a 95% interval.
const wilsonZ = 1.96

// DefaultPopularTimesService implements PopularTimesService over a bookings
// repository with a Redis result cache.
type DefaultPopularTimesService struct {
	Repo         HistoryRepository
	Cache        *redis.Client
	CacheTTL     time.Duration
	LookbackDays int // service-wide default window; 0 means DefaultLookbackDays
	Logger       *zap.Logger
	Now          func() time.Time // injectable for tests; defaults to time.Now
}

// lookback resolves the effective window: per-query override, then the
// service-wide setting, then the package default.
func (s *DefaultPopularTimesService) lookback(opts Options) int {
	if opts.LookbackDays > 0 {
		return opts.LookbackDays
	}
	if s.LookbackDays > 0 {
		return s.LookbackDays
	}
	return DefaultLookbackDays
}

// cacheKey is popular:{salonId}:{serviceId} for the service's own window; a
// per-query override gets a distinct key so it never reads an aggregation
// computed over a different window.
func (s *DefaultPopularTimesService) cacheKey(salonID, serviceID string, lookbackDays int) string {
	if serviceID == "" {
		serviceID = "all"
	}
	key := fmt.Sprintf("%s%s:%s", cacheKeyPrefix, salonID, serviceID)
	if lookbackDays != s.lookback(Options{}) {
		key = fmt.Sprintf("%s:%dd", key, lookbackDays)
	}
	return key
}

func (s *DefaultPopularTimesService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetPopularTimes returns the salon's popularity buckets filtered by the
// options. An empty result is returned as-is; falling back to default times
// is the caller's decision.
func (s *DefaultPopularTimesService) GetPopularTimes(ctx context.Context, salonID string, opts Options) ([]models.PopularTimeSlot, error) {
	all, err := s.scoredBuckets(ctx, salonID, opts)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.PopularTimeSlot, 0, len(all))
	for _, b := range all {
		if b.Confidence < opts.MinConfidence {
			continue
		}
		if b.BookingCount < opts.MinBookings {
			continue
		}
		filtered = append(filtered, b)
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// scoredBuckets returns the full scored bucket list, from cache when fresh.
// The cache stores the unfiltered aggregation so one entry serves every
// filter combination.
func (s *DefaultPopularTimesService) scoredBuckets(ctx context.Context, salonID string, opts Options) ([]models.PopularTimeSlot, error) {
	lookback := s.lookback(opts)
	key := s.cacheKey(salonID, opts.ServiceID, lookback)

	if s.Cache != nil && !opts.IncludeCancelled {
		if data, err := s.Cache.Get(ctx, key).Result(); err == nil {
			var cached []models.PopularTimeSlot
			if err := json.Unmarshal([]byte(data), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.Logger.Warn("popularity cache read failed, recomputing",
				zap.String("salonId", salonID), zap.Error(err))
		}
	}

	since := s.now().AddDate(0, 0, -lookback)

	bookings, err := s.Repo.GetBookings(ctx, salonID, opts.ServiceID, since)
	if err != nil {
		return nil, &DependencyError{Dependency: "bookings source", Err: err}
	}

	scored := s.CalculateWeightedScores(bookings, opts)

	if s.Cache != nil && !opts.IncludeCancelled {
		if data, err := json.Marshal(scored); err == nil {
			if err := s.Cache.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
				s.Logger.Warn("popularity cache write failed",
					zap.String("salonId", salonID), zap.Error(err))
			}
		}
	}
	return scored, nil
}

// CalculateWeightedScores buckets bookings by (weekday, hour) and applies
// recency weighting. Bookings older than the lookback are excluded, as are
// cancelled ones unless opts.IncludeCancelled.
func (s *DefaultPopularTimesService) CalculateWeightedScores(bookings []models.BookingRecord, opts Options) []models.PopularTimeSlot {
	lookback := s.lookback(opts)
	now := s.now()

	type bucketKey struct {
		dow  int
		hour int
	}
	buckets := make(map[bucketKey]*models.PopularTimeSlot)
	total := 0

	for _, b := range bookings {
		if b.Status == models.BookingStatusCancelled && !opts.IncludeCancelled {
			continue
		}
		age := now.Sub(b.StartTime)
		if age < 0 {
			continue // future booking, not history
		}
		days := int(age.Hours() / 24)
		if days > lookback {
			continue
		}
		var w float64
		switch {
		case days <= 30:
			w = weightRecent
		case days <= 60:
			w = weightMid
		default:
			w = weightOld
		}

		k := bucketKey{dow: int(b.StartTime.Weekday()), hour: b.StartTime.Hour()}
		slot, ok := buckets[k]
		if !ok {
			slot = &models.PopularTimeSlot{DayOfWeek: k.dow, Hour: k.hour}
			buckets[k] = slot
		}
		slot.BookingCount++
		slot.WeightedScore += w
		total++
	}

	out := make([]models.PopularTimeSlot, 0, len(buckets))
	for _, slot := range buckets {
		slot.Confidence = CalculateConfidence(slot.BookingCount, total)
		out = append(out, *slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeightedScore != out[j].WeightedScore {
			return out[i].WeightedScore > out[j].WeightedScore
		}
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

// CalculateConfidence returns a Wilson-score estimate in [0,1] for how
// trustworthy a bucket's share of total bookings is. Small totals pull the
// estimate toward 0.5, so one early booking in a new slot cannot present
// itself as statistically popular.
func CalculateConfidence(bookingCount, totalBookings int) float64 {
	if totalBookings <= 0 || bookingCount < 0 {
		return 0
	}
	if bookingCount > totalBookings {
		bookingCount = totalBookings
	}
	n := float64(totalBookings)
	p := float64(bookingCount) / n
	z2 := wilsonZ * wilsonZ
	center := (p + z2/(2*n)) / (1 + z2/n)
	return math.Max(0, math.Min(1, center))
}

// CheckAvailability returns the buckets falling on the date's weekday,
// highest score first. The availability source stays authoritative on
// actual bookability.
func (s *DefaultPopularTimesService) CheckAvailability(popularTimes []models.PopularTimeSlot, date time.Time) []models.PopularTimeSlot {
	dow := int(date.Weekday())
	out := make([]models.PopularTimeSlot, 0, len(popularTimes))
	for _, p := range popularTimes {
		if p.DayOfWeek == dow {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeightedScore > out[j].WeightedScore
	})
	return out
}

// InvalidateCache drops cached popularity for a salon. With an empty
// serviceID every service entry for the salon is dropped. Call this after
// every confirmed booking.
func (s *DefaultPopularTimesService) InvalidateCache(ctx context.Context, salonID, serviceID string) error {
	if s.Cache == nil {
		return nil
	}
	pattern := cacheKeyPrefix + salonID + ":*"
	if serviceID != "" {
		// Base entry plus any per-query lookback variants.
		if err := s.Cache.Del(ctx, s.cacheKey(salonID, serviceID, s.lookback(Options{}))).Err(); err != nil {
			return err
		}
		pattern = cacheKeyPrefix + salonID + ":" + serviceID + ":*"
	}
	iter := s.Cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.Cache.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// WarmCache recomputes popularity for a batch of salons. Individual salon
// failures are logged and skipped; the batch always completes.
func (s *DefaultPopularTimesService) WarmCache(ctx context.Context, salonIDs []string) error {
	for _, salonID := range salonIDs {
		if err := s.InvalidateCache(ctx, salonID, ""); err != nil {
			s.Logger.Warn("warm: invalidate failed", zap.String("salonId", salonID), zap.Error(err))
		}
		if _, err := s.scoredBuckets(ctx, salonID, Options{}); err != nil {
			s.Logger.Warn("warm: recompute failed", zap.String("salonId", salonID), zap.Error(err))
			continue
		}
		s.Logger.Debug("warmed popularity cache", zap.String("salonId", salonID))
	}
	return nil
}
