package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salonbot/models"
	"salonbot/services/cards"
	"salonbot/services/messages"
	"salonbot/services/popular"
	"salonbot/services/session"
	"salonbot/services/suggest"

	"go.uber.org/zap"
)

// historyReplayLimit caps how many transport messages recovery replays.
const historyReplayLimit = 50

// DefaultConversationService composes the booking dialog out of the session
// store, the rankers, the popularity analyzer and the card builders.
type DefaultConversationService struct {
	Sessions     session.ContextStore
	History      session.MessageHistoryReader
	Availability AvailabilitySource
	Popular      popular.PopularTimesService
	Sender       ChannelSender
	BusinessType string
	// DefaultLanguage answers taps that start a conversation with no text to
	// detect a language from. Empty means English.
	DefaultLanguage string
	Logger          *zap.Logger
}

// HandleInbound resumes (or creates) the conversation, advances it one step
// and returns the outbound payload. Failures degrade to a localized apology;
// the customer never sees a raw error.
func (s *DefaultConversationService) HandleInbound(ctx context.Context, ev InboundEvent) (*models.CardPayload, error) {
	bc, restarted := s.resumeOrCreate(ctx, ev)

	payload, err := s.advance(ctx, bc, ev, restarted)
	if err != nil {
		s.Logger.Error("conversation step failed",
			zap.String("sessionId", bc.SessionID), zap.Error(err))
		payload = s.apology(bc.Language)
	}

	if s.Sender != nil {
		if err := s.Sender.SendPayload(ctx, ev.CustomerID, payload); err != nil {
			s.Logger.Warn("outbound delivery failed", zap.String("customerId", ev.CustomerID), zap.Error(err))
		}
	}
	return payload, nil
}

// resumeOrCreate loads the existing context, falls back to history replay
// when the store is unreachable, and otherwise starts fresh. The second
// return reports that a previous conversation was lost.
func (s *DefaultConversationService) resumeOrCreate(ctx context.Context, ev InboundEvent) (*models.BookingContext, bool) {
	bc, err := s.Sessions.GetByCustomer(ctx, ev.CustomerID, ev.SalonID)
	if err == nil {
		return bc, false
	}

	if session.IsUnavailable(err) || errors.Is(err, session.ErrSessionExpired) {
		if recovered := s.recover(ctx, ev); recovered != nil {
			return recovered, false
		}
		// Recovery failed or was ambiguous: restart from scratch.
		return s.freshContext(ev), ev.ButtonID != ""
	}

	// Plain miss: a new conversation unless the customer tapped a button
	// from a conversation that has since expired.
	return s.freshContext(ev), ev.ButtonID != ""
}

func (s *DefaultConversationService) recover(ctx context.Context, ev InboundEvent) *models.BookingContext {
	if s.History == nil {
		return nil
	}
	msgs, err := s.History.RecentMessages(ctx, ev.CustomerID, ev.SalonID, historyReplayLimit)
	if err != nil {
		s.Logger.Warn("message history unavailable", zap.Error(err))
		return nil
	}
	bc, err := s.Sessions.RecoverFromHistory(ev.CustomerID, ev.SalonID, msgs)
	if err != nil {
		if errors.Is(err, session.ErrAmbiguousRecovery) {
			s.Logger.Info("ambiguous history, restarting conversation",
				zap.String("customerId", ev.CustomerID))
		}
		return nil
	}
	return bc
}

func (s *DefaultConversationService) freshContext(ev InboundEvent) *models.BookingContext {
	lang := ev.Language
	if lang == "" && ev.Text != "" {
		lang = session.DetectLanguage(ev.Text)
	}
	if lang == "" {
		lang = s.DefaultLanguage
	}
	if lang == "" {
		lang = "en"
	}
	bc := &models.BookingContext{
		SessionID:  session.SessionKey(ev.CustomerID, ev.SalonID),
		CustomerID: ev.CustomerID,
		SalonID:    ev.SalonID,
		Language:   lang,
		State:      models.StateStarted,
	}
	if ev.Intent != nil {
		bc.OriginalIntent = *ev.Intent
	}
	return bc
}

func (s *DefaultConversationService) advance(ctx context.Context, bc *models.BookingContext, ev InboundEvent, restarted bool) (*models.CardPayload, error) {
	if restarted {
		return s.restartPayload(ctx, bc)
	}
	if ev.ButtonID != "" {
		return s.handleTap(ctx, bc, ev.ButtonID)
	}

	// First free-text message of a resumed conversation may complete the
	// original ask; the intent is immutable once complete.
	if ev.Intent != nil && !bc.OriginalIntent.Complete() {
		merged := bc.OriginalIntent
		if merged.ServiceID == "" {
			merged.ServiceID = ev.Intent.ServiceID
		}
		if merged.PreferredDate == "" {
			merged.PreferredDate = ev.Intent.PreferredDate
		}
		if merged.PreferredTime == "" {
			merged.PreferredTime = ev.Intent.PreferredTime
		}
		if merged.PreferredStaff == "" {
			merged.PreferredStaff = ev.Intent.PreferredStaff
		}
		bc.OriginalIntent = merged
	}

	if !bc.OriginalIntent.Complete() {
		return s.clarify(ctx, bc)
	}
	return s.showSlots(ctx, bc)
}

// clarify asks for the missing part of the original ask.
func (s *DefaultConversationService) clarify(ctx context.Context, bc *models.BookingContext) (*models.CardPayload, error) {
	spec, err := messages.GetChoiceCard(messages.ScenarioIncompleteRequest, bc.Language, nil)
	if err != nil {
		return nil, err
	}
	payload, err := cards.BuildChoiceCard(spec)
	if err != nil {
		return nil, err
	}
	bc.State = models.StateChoicePresented
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return payload, nil
}

// showSlots ranks availability against the original ask. With no preferred
// time the popular-times path answers instead.
func (s *DefaultConversationService) showSlots(ctx context.Context, bc *models.BookingContext) (*models.CardPayload, error) {
	if bc.OriginalIntent.PreferredTime == "" {
		return s.showPopularTimes(ctx, bc)
	}

	from, err := time.Parse("2006-01-02", bc.OriginalIntent.PreferredDate)
	if err != nil {
		return nil, err
	}
	slots, err := s.Availability.GetAvailableSlots(ctx, bc.SalonID, bc.OriginalIntent.ServiceID, from, from.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return s.choicePayload(ctx, bc, messages.ScenarioWeekFull, nil)
	}

	ranked, err := suggest.RankByMultipleFactors(slots, suggest.Preferences{
		Date:   bc.OriginalIntent.PreferredDate,
		Time:   bc.OriginalIntent.PreferredTime,
		Master: bc.OriginalIntent.PreferredStaff,
	})
	if err != nil {
		return nil, err
	}
	ranked = suggest.AddVisualIndicators(ranked, suggest.DefaultIndicatorLimit)
	if len(ranked) > models.MaxListRows {
		ranked = ranked[:models.MaxListRows]
	}

	payload, err := cards.BuildSlotSelectionCard(ranked, bc.Language, "")
	if err != nil {
		return nil, err
	}

	bc.ShownSlotIDs = bc.ShownSlotIDs[:0]
	for _, r := range ranked {
		bc.ShownSlotIDs = append(bc.ShownSlotIDs, r.ID)
	}
	bc.State = models.StateSlotsShown
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return payload, nil
}

// showPopularTimes answers a no-preference ask with statistically popular
// times, falling back to curated defaults when history is thin.
func (s *DefaultConversationService) showPopularTimes(ctx context.Context, bc *models.BookingContext) (*models.CardPayload, error) {
	popularTimes, err := s.Popular.GetPopularTimes(ctx, bc.SalonID, popular.Options{
		ServiceID:     bc.OriginalIntent.ServiceID,
		Limit:         models.MaxButtons,
		MinConfidence: 0.3,
		MinBookings:   3,
	})
	if err != nil {
		var dep *popular.DependencyError
		if !errors.As(err, &dep) {
			return nil, err
		}
		popularTimes = nil // degraded: defaults below
	}
	if len(popularTimes) == 0 {
		popularTimes = s.Popular.GetDefaultTimes(s.BusinessType)
		if len(popularTimes) > models.MaxButtons {
			popularTimes = popularTimes[:models.MaxButtons]
		}
	}

	body, err := messages.GetMessage(messages.KeyPopularTimesIntro, bc.Language, nil)
	if err != nil {
		return nil, err
	}
	payload := &models.CardPayload{Kind: models.CardKindButtons, Body: body}
	for _, p := range popularTimes {
		payload.Buttons = append(payload.Buttons, models.Button{
			ID:    "popular_" + strconv.Itoa(p.DayOfWeek) + "_" + strconv.Itoa(p.Hour),
			Title: popularButtonTitle(bc.Language, p),
		})
	}

	bc.State = models.StateChoicePresented
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return payload, nil
}

func (s *DefaultConversationService) handleTap(ctx context.Context, bc *models.BookingContext, buttonID string) (*models.CardPayload, error) {
	payload, err := s.dispatchTap(ctx, bc, buttonID)
	if err != nil {
		return nil, err
	}

	record := models.ChoiceRecord{
		ChoiceID:    buttonID,
		SelectedAt:  time.Now(),
		ResultShown: payload.Kind,
	}
	// A confirm tap already deleted the session; not-found is expected there.
	if _, err := s.Sessions.AddChoice(ctx, bc.SessionID, record); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		s.Logger.Warn("choice log failed", zap.Error(err))
	}
	return payload, nil
}

func (s *DefaultConversationService) dispatchTap(ctx context.Context, bc *models.BookingContext, buttonID string) (*models.CardPayload, error) {
	switch {
	case strings.HasPrefix(buttonID, "slot_"):
		return s.confirmSlot(ctx, bc, strings.TrimPrefix(buttonID, "slot_"))
	case strings.HasPrefix(buttonID, "confirm_"):
		return s.finalize(ctx, bc, strings.TrimPrefix(buttonID, "confirm_"))
	case buttonID == cards.ChangeButtonID:
		bc.PendingSlot = nil
		return s.showSlots(ctx, bc)
	case strings.HasPrefix(buttonID, "popular_"):
		return s.bookPopularTime(ctx, bc, buttonID)
	case strings.HasPrefix(buttonID, "choice_"):
		return s.handleChoice(ctx, bc, buttonID)
	default:
		return s.restartPayload(ctx, bc)
	}
}

func (s *DefaultConversationService) confirmSlot(ctx context.Context, bc *models.BookingContext, slotID string) (*models.CardPayload, error) {
	slot, err := s.lookupSlot(ctx, bc, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		// The tapped slot vanished between messages.
		return s.choicePayload(ctx, bc, messages.ScenarioTimeUnavailable, map[string]string{
			"time": bc.OriginalIntent.PreferredTime,
			"day":  bc.OriginalIntent.PreferredDate,
		})
	}
	payload, err := cards.BuildConfirmationCard(*slot, bc.Language)
	if err != nil {
		return nil, err
	}
	bc.PendingSlot = slot
	bc.State = models.StateChoicePresented
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return payload, nil
}

// finalize confirms the slot the customer actually accepted, which after an
// alternatives round is not necessarily the one they first asked for.
func (s *DefaultConversationService) finalize(ctx context.Context, bc *models.BookingContext, slotID string) (*models.CardPayload, error) {
	slot := bc.PendingSlot
	if slot == nil || slot.ID != slotID {
		// Recovery rebuilt the context without the pending slot; re-resolve.
		if found, err := s.lookupSlot(ctx, bc, slotID); err == nil && found != nil {
			slot = found
		}
	}

	day := cards.LongDate(bc.Language, bc.OriginalIntent.PreferredDate)
	timeOfDay := bc.OriginalIntent.PreferredTime
	if slot != nil {
		day = cards.LongDate(bc.Language, slot.Date)
		timeOfDay = slot.StartTime
	}
	text, err := messages.GetMessage(messages.KeyBookingConfirmed, bc.Language, map[string]string{
		"day":  day,
		"time": timeOfDay,
	})
	if err != nil {
		return nil, err
	}

	// Terminal state: the session is gone and popularity must refresh.
	if err := s.Sessions.Delete(ctx, bc.SessionID); err != nil {
		s.Logger.Warn("session delete failed", zap.Error(err))
	}
	if err := s.Popular.InvalidateCache(ctx, bc.SalonID, bc.OriginalIntent.ServiceID); err != nil {
		s.Logger.Warn("popularity invalidation failed", zap.Error(err))
	}
	return &models.CardPayload{Kind: models.CardKindText, Body: text}, nil
}

// bookPopularTime resolves a popular_{dow}_{hour} tap into a concrete
// preferred date and time, then ranks real availability against it. The tap
// completes the customer's ask the same way a clarifying message would.
func (s *DefaultConversationService) bookPopularTime(ctx context.Context, bc *models.BookingContext, buttonID string) (*models.CardPayload, error) {
	dowStr, hourStr, ok := strings.Cut(strings.TrimPrefix(buttonID, "popular_"), "_")
	if !ok {
		return s.restartPayload(ctx, bc)
	}
	dow, err1 := strconv.Atoi(dowStr)
	hour, err2 := strconv.Atoi(hourStr)
	if err1 != nil || err2 != nil || dow < 0 || dow > 6 || hour < 0 || hour > 23 {
		return s.restartPayload(ctx, bc)
	}

	bc.OriginalIntent.PreferredDate = nextWeekday(time.Now(), time.Weekday(dow)).Format("2006-01-02")
	bc.OriginalIntent.PreferredTime = fmt.Sprintf("%02d:00", hour)
	return s.showSlots(ctx, bc)
}

// nextWeekday returns the next occurrence of dow, counting today.
func nextWeekday(from time.Time, dow time.Weekday) time.Time {
	delta := (int(dow) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, delta)
}

func (s *DefaultConversationService) handleChoice(ctx context.Context, bc *models.BookingContext, buttonID string) (*models.CardPayload, error) {
	switch buttonID {
	case "choice_popular", "choice_popular_morning", "choice_popular_afternoon", "choice_popular_evening":
		return s.showPopularTimes(ctx, bc)
	case "choice_nearby_times", "choice_earliest":
		return s.showSlots(ctx, bc)
	default:
		return s.clarify(ctx, bc)
	}
}

// lookupSlot re-resolves a slot id against current availability; nil means
// it is no longer offered.
func (s *DefaultConversationService) lookupSlot(ctx context.Context, bc *models.BookingContext, slotID string) (*models.SlotSuggestion, error) {
	from := time.Now()
	if d, err := time.Parse("2006-01-02", bc.OriginalIntent.PreferredDate); err == nil {
		from = d
	}
	slots, err := s.Availability.GetAvailableSlots(ctx, bc.SalonID, bc.OriginalIntent.ServiceID, from, from.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == slotID {
			return &slots[i], nil
		}
	}
	return nil, nil
}

func (s *DefaultConversationService) choicePayload(ctx context.Context, bc *models.BookingContext, scenario string, params map[string]string) (*models.CardPayload, error) {
	spec, err := messages.GetChoiceCard(scenario, bc.Language, params)
	if err != nil {
		return nil, err
	}
	payload, err := cards.BuildChoiceCard(spec)
	if err != nil {
		return nil, err
	}
	bc.State = models.StateChoicePresented
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return payload, nil
}

func (s *DefaultConversationService) restartPayload(ctx context.Context, bc *models.BookingContext) (*models.CardPayload, error) {
	text, err := messages.GetMessage(messages.KeyConversationRestart, bc.Language, nil)
	if err != nil {
		return nil, err
	}
	bc.State = models.StateStarted
	if err := s.Sessions.Save(ctx, bc); err != nil {
		s.Logger.Warn("session save failed", zap.Error(err))
	}
	return &models.CardPayload{Kind: models.CardKindText, Body: text}, nil
}

func (s *DefaultConversationService) apology(language string) *models.CardPayload {
	text, err := messages.GetMessage(messages.KeyGenericApology, language, nil)
	if err != nil {
		// The apology template has no parameters; this cannot happen for a
		// known language, but never send an empty body.
		text = "Sorry, something went wrong on our side. Please try again in a moment."
	}
	return &models.CardPayload{Kind: models.CardKindText, Body: text}
}

func popularButtonTitle(language string, p models.PopularTimeSlot) string {
	names := weekdayShortNames[language]
	if names == nil {
		names = weekdayShortNames["en"]
	}
	return names[p.DayOfWeek] + " " + strconv.Itoa(p.Hour) + ":00"
}

var weekdayShortNames = map[string][]string{
	"en": {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	"ru": {"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"},
	"es": {"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"},
}
