package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"salonbot/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const scanBatch = 100

// RedisContextStore implements ContextStore over a Redis client with per-key
// TTLs carrying the expiry; nothing else owns session lifetime.
type RedisContextStore struct {
	Client     *redis.Client
	DefaultTTL time.Duration
	HardCapTTL time.Duration
	Logger     *zap.Logger
	NowFn      func() time.Time // injectable for tests
}

// NewRedisContextStore wires a store with the given lifetimes; non-positive
// values fall back to the package defaults.
func NewRedisContextStore(client *redis.Client, logger *zap.Logger, defaultTTL, hardCap time.Duration) *RedisContextStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if hardCap <= 0 {
		hardCap = HardCap
	}
	return &RedisContextStore{
		Client:     client,
		DefaultTTL: defaultTTL,
		HardCapTTL: hardCap,
		Logger:     logger,
	}
}

func (s *RedisContextStore) now() time.Time {
	if s.NowFn != nil {
		return s.NowFn()
	}
	return time.Now()
}

// clampTTL bounds a requested TTL so the key never outlives
// createdAt + hardCap. A non-positive result means the session is already
// past its hard cap.
func clampTTL(requested time.Duration, createdAt, now time.Time, hardCap time.Duration) time.Duration {
	deadline := createdAt.Add(hardCap)
	if expiry := now.Add(requested); expiry.After(deadline) {
		return deadline.Sub(now)
	}
	return requested
}

// Save upserts the context under session:{customerId}:{salonId}. The first
// write stamps CreatedAt and arms the default TTL; later writes refresh the
// TTL up to the hard cap measured from creation.
func (s *RedisContextStore) Save(ctx context.Context, bc *models.BookingContext) error {
	now := s.now()
	if bc.CreatedAt.IsZero() {
		bc.CreatedAt = now
	}
	bc.UpdatedAt = now
	if bc.SessionID == "" {
		bc.SessionID = SessionKey(bc.CustomerID, bc.SalonID)
	}

	ttl := clampTTL(s.DefaultTTL, bc.CreatedAt, now, s.HardCapTTL)
	if ttl <= 0 {
		// Hard cap already reached; refuse to resurrect.
		return ErrSessionExpired
	}

	data, err := json.Marshal(bc)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, bc.SessionID, data, ttl).Err(); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}

// Get returns the context or ErrSessionNotFound on miss/expiry. An expired
// key is never resurrected.
func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.BookingContext, error) {
	data, err := s.Client.Get(ctx, sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	var bc models.BookingContext
	if err := json.Unmarshal([]byte(data), &bc); err != nil {
		s.Logger.Warn("corrupt session payload, dropping", zap.String("sessionId", sessionID), zap.Error(err))
		s.Client.Del(ctx, sessionID)
		return nil, ErrSessionNotFound
	}
	return &bc, nil
}

// GetByCustomer resolves the composite key and delegates to Get.
func (s *RedisContextStore) GetByCustomer(ctx context.Context, customerID, salonID string) (*models.BookingContext, error) {
	return s.Get(ctx, SessionKey(customerID, salonID))
}

// Extend adds lifetime to a session, still honoring the hard cap from
// creation: extending at t=3000 with creation at t=0 can only reach t=3600.
func (s *RedisContextStore) Extend(ctx context.Context, sessionID string, seconds int) error {
	if seconds <= 0 {
		seconds = DefaultExtendSecs
	}
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	ttl := clampTTL(time.Duration(seconds)*time.Second, bc.CreatedAt, s.now(), s.HardCapTTL)
	if ttl <= 0 {
		return ErrSessionExpired
	}
	if err := s.Client.Expire(ctx, sessionID, ttl).Err(); err != nil {
		return &StoreError{Op: "extend", Err: err}
	}
	return nil
}

// UpdateState transitions the conversation state and persists it.
func (s *RedisContextStore) UpdateState(ctx context.Context, sessionID, state string) error {
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	bc.State = state
	return s.Save(ctx, bc)
}

// AddChoice appends to the choice history, keeping only the newest
// MaxChoiceHistory entries. A nil context with ErrSessionNotFound means the
// conversation is lost and the caller must restart it.
func (s *RedisContextStore) AddChoice(ctx context.Context, sessionID string, choice models.ChoiceRecord) (*models.BookingContext, error) {
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bc.ChoiceHistory = appendChoice(bc.ChoiceHistory, choice)
	if err := s.Save(ctx, bc); err != nil {
		return nil, err
	}
	return bc, nil
}

// appendChoice applies the FIFO eviction. Duplicates are appended, not
// deduplicated; only the length is bounded.
func appendChoice(history []models.ChoiceRecord, choice models.ChoiceRecord) []models.ChoiceRecord {
	history = append(history, choice)
	if len(history) > models.MaxChoiceHistory {
		history = history[len(history)-models.MaxChoiceHistory:]
	}
	return history
}

// Delete removes a session outright (terminal states).
func (s *RedisContextStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, sessionID).Err(); err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	return nil
}

// Exists reports whether a session key is present and unexpired.
func (s *RedisContextStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.Client.Exists(ctx, sessionID).Result()
	if err != nil {
		return false, &StoreError{Op: "exists", Err: err}
	}
	return n > 0, nil
}

// GetMetadata returns the cheap session view plus remaining TTL.
func (s *RedisContextStore) GetMetadata(ctx context.Context, sessionID string) (*models.SessionMetadata, error) {
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ttl, err := s.Client.TTL(ctx, sessionID).Result()
	if err != nil {
		return nil, &StoreError{Op: "ttl", Err: err}
	}
	return &models.SessionMetadata{
		SessionID:    sessionID,
		State:        bc.State,
		CreatedAt:    bc.CreatedAt,
		UpdatedAt:    bc.UpdatedAt,
		TTLRemaining: ttl,
	}, nil
}

// Cleanup is advisory housekeeping over keys that lost their TTL (operator
// PERSIST, restored dumps). Keys with remaining TTL are left alone, so
// concurrent calls are safe. Returns how many keys were repaired or dropped.
func (s *RedisContextStore) Cleanup(ctx context.Context) (int, error) {
	touched := 0
	iter := s.Client.Scan(ctx, 0, "session:*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.Client.TTL(ctx, key).Result()
		if err != nil {
			return touched, &StoreError{Op: "cleanup", Err: err}
		}
		if ttl > 0 {
			continue // healthy, TTL mechanism owns it
		}
		// No TTL: re-arm from the stored creation time, or drop if the
		// payload is unreadable or past the hard cap.
		bc, err := s.Get(ctx, key)
		if err != nil {
			touched++
			continue // Get already dropped corrupt payloads
		}
		rearm := clampTTL(s.DefaultTTL, bc.CreatedAt, s.now(), s.HardCapTTL)
		if rearm <= 0 {
			s.Client.Del(ctx, key)
		} else if err := s.Client.Expire(ctx, key, rearm).Err(); err != nil {
			return touched, &StoreError{Op: "cleanup", Err: err}
		}
		touched++
	}
	if err := iter.Err(); err != nil {
		return touched, &StoreError{Op: "cleanup", Err: err}
	}
	return touched, nil
}

// GetActiveCount counts live sessions, optionally for one salon.
func (s *RedisContextStore) GetActiveCount(ctx context.Context, salonID string) (int, error) {
	pattern := "session:*"
	if salonID != "" {
		pattern = "session:*:" + salonID
	}
	count := 0
	iter := s.Client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		if salonID != "" && !strings.HasSuffix(iter.Val(), ":"+salonID) {
			continue
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return count, nil
}
