package conversation

import (
	"context"
	"strings"
	"testing"
	"time"

	"salonbot/models"
	"salonbot/services/popular"
	"salonbot/services/session"

	"go.uber.org/zap"
)

type memStore struct {
	m           map[string]*models.BookingContext
	unavailable bool
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]*models.BookingContext)}
}

func (s *memStore) Save(ctx context.Context, bc *models.BookingContext) error {
	if s.unavailable {
		return &session.StoreError{Op: "save"}
	}
	cp := *bc
	s.m[bc.SessionID] = &cp
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.BookingContext, error) {
	if s.unavailable {
		return nil, &session.StoreError{Op: "get"}
	}
	bc, ok := s.m[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	cp := *bc
	return &cp, nil
}

func (s *memStore) GetByCustomer(ctx context.Context, customerID, salonID string) (*models.BookingContext, error) {
	return s.Get(ctx, session.SessionKey(customerID, salonID))
}

func (s *memStore) Extend(ctx context.Context, id string, seconds int) error { return nil }

func (s *memStore) UpdateState(ctx context.Context, id, state string) error {
	bc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	bc.State = state
	return s.Save(ctx, bc)
}

func (s *memStore) AddChoice(ctx context.Context, id string, c models.ChoiceRecord) (*models.BookingContext, error) {
	bc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bc.ChoiceHistory = append(bc.ChoiceHistory, c)
	if err := s.Save(ctx, bc); err != nil {
		return nil, err
	}
	return bc, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	delete(s.m, id)
	return nil
}

func (s *memStore) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := s.m[id]
	return ok, nil
}

func (s *memStore) GetMetadata(ctx context.Context, id string) (*models.SessionMetadata, error) {
	return nil, session.ErrSessionNotFound
}

func (s *memStore) RecoverFromHistory(customerID, salonID string, msgs []models.TransportMessage) (*models.BookingContext, error) {
	real := &session.RedisContextStore{}
	return real.RecoverFromHistory(customerID, salonID, msgs)
}

func (s *memStore) Cleanup(ctx context.Context) (int, error) { return 0, nil }

func (s *memStore) GetActiveCount(ctx context.Context, salonID string) (int, error) {
	return len(s.m), nil
}

type fakeAvailability struct {
	slots []models.SlotSuggestion
}

func (f *fakeAvailability) GetAvailableSlots(ctx context.Context, salonID, serviceID string, from, to time.Time) ([]models.SlotSuggestion, error) {
	return f.slots, nil
}

type fakePopular struct {
	popular.DefaultPopularTimesService
	times []models.PopularTimeSlot
}

func (f *fakePopular) GetPopularTimes(ctx context.Context, salonID string, opts popular.Options) ([]models.PopularTimeSlot, error) {
	return f.times, nil
}

func (f *fakePopular) InvalidateCache(ctx context.Context, salonID, serviceID string) error {
	return nil
}

type fakeHistory struct {
	msgs []models.TransportMessage
}

func (f *fakeHistory) RecentMessages(ctx context.Context, customerID, salonID string, limit int) ([]models.TransportMessage, error) {
	return f.msgs, nil
}

func newTestService(store *memStore, av *fakeAvailability) *DefaultConversationService {
	return &DefaultConversationService{
		Sessions:     store,
		History:      &fakeHistory{},
		Availability: av,
		Popular:      &fakePopular{},
		BusinessType: popular.BusinessBeautySalon,
		Logger:       zap.NewNop(),
	}
}

func slotFixture(id, start string) models.SlotSuggestion {
	return models.SlotSuggestion{
		ID: id, Date: "2026-09-01", StartTime: start, MasterID: "m1",
		MasterName: "Anna", ServiceID: "cut", Duration: 45, Price: 1500,
	}
}

func TestHandleInbound_IncompleteIntentAsksForClarification(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAvailability{})
	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", Text: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Kind != models.CardKindButtons {
		t.Fatalf("expected a clarification card, got %s", payload.Kind)
	}
	if payload.Buttons[0].ID != "choice_pick_service" {
		t.Fatalf("expected incomplete_request choices, got %s", payload.Buttons[0].ID)
	}
	bc, err := store.GetByCustomer(context.Background(), "c1", "s1")
	if err != nil {
		t.Fatalf("session should be saved: %v", err)
	}
	if bc.State != models.StateChoicePresented {
		t.Fatalf("unexpected state %s", bc.State)
	}
}

func TestHandleInbound_CompleteIntentShowsRankedSlots(t *testing.T) {
	store := newMemStore()
	av := &fakeAvailability{slots: []models.SlotSuggestion{
		slotFixture("far", "19:00"),
		slotFixture("near", "15:30"),
	}}
	svc := newTestService(store, av)
	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", Text: "haircut tuesday 3pm",
		Intent: &models.OriginalIntent{ServiceID: "cut", PreferredDate: "2026-09-01", PreferredTime: "15:00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Kind != models.CardKindButtons {
		t.Fatalf("expected button card for 2 slots, got %s", payload.Kind)
	}
	// The 15:30 slot must outrank 19:00.
	if payload.Buttons[0].ID != "slot_near" {
		t.Fatalf("expected closest slot first, got %s", payload.Buttons[0].ID)
	}
	bc, _ := store.GetByCustomer(context.Background(), "c1", "s1")
	if bc.State != models.StateSlotsShown || len(bc.ShownSlotIDs) != 2 {
		t.Fatalf("shown slots not recorded: %+v", bc)
	}
}

func TestHandleInbound_SlotTapAsksForConfirmation(t *testing.T) {
	store := newMemStore()
	av := &fakeAvailability{slots: []models.SlotSuggestion{slotFixture("a", "15:00")}}
	svc := newTestService(store, av)
	seed := &models.BookingContext{
		SessionID: session.SessionKey("c1", "s1"), CustomerID: "c1", SalonID: "s1",
		Language: "en", State: models.StateSlotsShown,
		OriginalIntent: models.OriginalIntent{ServiceID: "cut", PreferredDate: "2026-09-01", PreferredTime: "15:00"},
	}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "slot_a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Buttons) != 2 || payload.Buttons[0].ID != "confirm_a" {
		t.Fatalf("expected confirm/change actions, got %+v", payload.Buttons)
	}
	bc, _ := store.GetByCustomer(context.Background(), "c1", "s1")
	if len(bc.ChoiceHistory) != 1 || bc.ChoiceHistory[0].ChoiceID != "slot_a" {
		t.Fatalf("tap not recorded in choice history: %+v", bc.ChoiceHistory)
	}
}

func TestHandleInbound_ConfirmDeletesSession(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAvailability{})
	seed := &models.BookingContext{
		SessionID: session.SessionKey("c1", "s1"), CustomerID: "c1", SalonID: "s1",
		Language: "en", State: models.StateChoicePresented,
		OriginalIntent: models.OriginalIntent{ServiceID: "cut", PreferredDate: "2026-09-01", PreferredTime: "15:00"},
	}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "confirm_a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Kind != models.CardKindText {
		t.Fatalf("expected plain confirmation text, got %s", payload.Kind)
	}
	if ok, _ := store.Exists(context.Background(), seed.SessionID); ok {
		t.Fatal("terminal state must delete the session")
	}
}

func TestHandleInbound_ConfirmRendersAcceptedSlot(t *testing.T) {
	store := newMemStore()
	// The customer asked for 15:00 but only a 14:00 alternative exists.
	av := &fakeAvailability{slots: []models.SlotSuggestion{slotFixture("alt", "14:00")}}
	svc := newTestService(store, av)
	seed := &models.BookingContext{
		SessionID: session.SessionKey("c1", "s1"), CustomerID: "c1", SalonID: "s1",
		Language: "en", State: models.StateSlotsShown,
		OriginalIntent: models.OriginalIntent{ServiceID: "cut", PreferredDate: "2026-09-01", PreferredTime: "15:00"},
	}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "slot_alt",
	}); err != nil {
		t.Fatalf("unexpected error on selection: %v", err)
	}
	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "confirm_alt",
	})
	if err != nil {
		t.Fatalf("unexpected error on confirm: %v", err)
	}

	// The accepted slot's localized day and time, not the original ask.
	want := "All set! See you Tuesday, 1 Sep at 14:00."
	if payload.Body != want {
		t.Fatalf("confirmation body = %q, want %q", payload.Body, want)
	}
}

func TestHandleInbound_PopularTapResolvesToRealSlots(t *testing.T) {
	store := newMemStore()
	av := &fakeAvailability{slots: []models.SlotSuggestion{slotFixture("a", "17:15")}}
	svc := newTestService(store, av)
	seed := &models.BookingContext{
		SessionID: session.SessionKey("c1", "s1"), CustomerID: "c1", SalonID: "s1",
		Language: "en", State: models.StateChoicePresented,
		OriginalIntent: models.OriginalIntent{ServiceID: "cut"},
	}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "popular_5_17",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(payload.Buttons[0].ID, "slot_") {
		t.Fatalf("popular tap must offer bookable slots, got %s", payload.Buttons[0].ID)
	}

	bc, _ := store.GetByCustomer(context.Background(), "c1", "s1")
	if bc.OriginalIntent.PreferredTime != "17:00" {
		t.Fatalf("tap should fix the preferred time, got %q", bc.OriginalIntent.PreferredTime)
	}
	d, err := time.Parse("2006-01-02", bc.OriginalIntent.PreferredDate)
	if err != nil {
		t.Fatalf("preferred date not set: %q", bc.OriginalIntent.PreferredDate)
	}
	if d.Weekday() != time.Friday {
		t.Fatalf("popular_5_17 should target a Friday, got %s", d.Weekday())
	}
	if bc.State != models.StateSlotsShown {
		t.Fatalf("unexpected state %s", bc.State)
	}
}

func TestHandleInbound_TapOnlyRestartUsesDefaultLanguage(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAvailability{})
	svc.DefaultLanguage = "es"

	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "slot_gone",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Empecemos de nuevo. ¿Qué servicio te gustaría reservar?"
	if payload.Body != want {
		t.Fatalf("restart body = %q, want the Spanish restart text", payload.Body)
	}
}

func TestHandleInbound_NoTimePreferenceShowsPopularTimes(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeAvailability{})
	svc.Popular = &fakePopular{times: []models.PopularTimeSlot{
		{DayOfWeek: 5, Hour: 17, WeightedScore: 9, Confidence: 0.8},
	}}
	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", Text: "haircut tuesday",
		Intent: &models.OriginalIntent{ServiceID: "cut", PreferredDate: "2026-09-01"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Buttons[0].ID != "popular_5_17" {
		t.Fatalf("expected popular-time button, got %s", payload.Buttons[0].ID)
	}
	if payload.Buttons[0].Title != "Fri 17:00" {
		t.Fatalf("unexpected popular button title %q", payload.Buttons[0].Title)
	}
}

func TestHandleInbound_StoreDownRecoversFromHistory(t *testing.T) {
	store := newMemStore()
	store.unavailable = true
	av := &fakeAvailability{slots: []models.SlotSuggestion{slotFixture("a", "15:00")}}
	svc := newTestService(store, av)
	svc.History = &fakeHistory{msgs: []models.TransportMessage{
		{ID: "1", Type: "text", Text: "haircut please", Direction: models.DirectionInbound, Timestamp: time.Now().Add(-2 * time.Minute)},
		{ID: "2", Type: "interactive", ButtonID: "slot_a", Direction: models.DirectionOutbound, Timestamp: time.Now().Add(-1 * time.Minute)},
	}}

	payload, err := svc.HandleInbound(context.Background(), InboundEvent{
		CustomerID: "c1", SalonID: "s1", ButtonID: "slot_a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Recovery rebuilt the context (language en, slots shown) and the tap
	// proceeds to confirmation despite the dead store.
	if len(payload.Buttons) != 2 || payload.Buttons[0].ID != "confirm_a" {
		t.Fatalf("expected confirmation after recovery, got %+v", payload)
	}
}
