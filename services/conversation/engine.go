package conversation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"styledesk/config"
	"styledesk/models"
	"styledesk/services/booking"
	"styledesk/utils"
)

var (
	bookingKeywords = []string{"book", "appointment", "schedule"}
	faqKeywords     = []string{"question", "info", "hours", "location", "price", "service"}
	yesReplies      = []string{"yes", "y", "confirm", "ok"}
	noReplies       = []string{"no", "n", "cancel"}
)

// ConversationEngine drives the per-user booking state machine.
type ConversationEngine interface {
	ProcessMessage(ctx context.Context, userID, message string) (string, error)
}

// DefaultConversationEngine implements ConversationEngine. Messages for the
// same user are serialized through a per-user lock; different users proceed
// concurrently without coordination.
type DefaultConversationEngine struct {
	Store    Store
	Ledger   booking.SlotLedger
	Resolver *booking.ConflictChecker
	Settings *config.Settings
	Metrics  *utils.Metrics

	// Now is the clock behind the date menu. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (e *DefaultConversationEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// userLock returns the mutex serializing one user's messages. The map keeps
// an entry per user id ever seen; at phone-number cardinality that stays
// small, but an eviction scheme is needed before pointing an open user pool
// at this.
func (e *DefaultConversationEngine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

// ProcessMessage runs one inbound message through the user's state machine
// and returns the reply text. User-facing errors become re-prompts; only
// infrastructure failures surface as errors.
func (e *DefaultConversationEngine) ProcessMessage(ctx context.Context, userID, message string) (string, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.Store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	session.LastMessageAt = e.now()

	// Completed is terminal but re-enterable: the next message starts over.
	if session.State == models.StateCompleted {
		session.State = models.StateGreeting
		session.Draft = models.BookingDraft{}
	}

	var reply string
	switch session.State {
	case models.StateGreeting:
		reply = e.handleGreeting(ctx, session, message)
	case models.StateFAQ:
		reply = e.handleFAQ(ctx, session, message)
	case models.StateBooking:
		reply = e.handleBooking(ctx, session, message)
	case models.StateConfirmation:
		reply = e.handleConfirmation(ctx, session, message)
	default:
		session.State = models.StateGreeting
		reply = e.handleGreeting(ctx, session, message)
	}

	if err := e.Store.Set(ctx, session); err != nil {
		return "", err
	}
	if e.Metrics != nil {
		e.Metrics.MessagesProcessed.Inc()
	}
	return reply, nil
}

func (e *DefaultConversationEngine) handleGreeting(ctx context.Context, session *models.ConversationSession, message string) string {
	lower := strings.ToLower(message)

	if containsAny(lower, bookingKeywords) {
		return e.startBooking(session)
	}
	if containsAny(lower, faqKeywords) {
		session.State = models.StateFAQ
		return faqMenuReply()
	}
	return greetingReply(e.Settings.BusinessName)
}

func (e *DefaultConversationEngine) handleFAQ(ctx context.Context, session *models.ConversationSession, message string) string {
	lower := strings.ToLower(message)

	if containsAny(lower, bookingKeywords) {
		return e.startBooking(session)
	}

	// Sorted keys keep replies stable when several topics match.
	keys := make([]string, 0, len(e.Settings.FAQ))
	for key := range e.Settings.FAQ {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(lower, key) {
			return faqAnswerReply(e.Settings.FAQ[key])
		}
	}
	return faqMenuReply()
}

func (e *DefaultConversationEngine) startBooking(session *models.ConversationSession) string {
	session.State = models.StateBooking
	session.Draft = models.BookingDraft{Step: models.StepName}
	return bookingStartReply()
}

func (e *DefaultConversationEngine) handleBooking(ctx context.Context, session *models.ConversationSession, message string) string {
	text := strings.TrimSpace(message)

	switch session.Draft.Step {
	case models.StepName:
		session.Draft.Name = text
		session.Draft.Step = models.StepService
		return serviceMenuReply(text, e.Settings.Services)

	case models.StepService:
		session.Draft.Service = text
		session.Draft.Step = models.StepDate
		return e.showAvailableDates(ctx)

	case models.StepDate:
		times, err := e.availableFor(ctx, text)
		if err != nil {
			return genericFailureReply()
		}
		if len(times) == 0 {
			return invalidDateReply()
		}
		session.Draft.Date = text
		session.Draft.Step = models.StepTime
		return timesReply(text, times)

	case models.StepTime:
		times, err := e.availableFor(ctx, session.Draft.Date)
		if err != nil {
			return genericFailureReply()
		}
		for _, slot := range times {
			if slot == text {
				session.Draft.Time = text
				session.State = models.StateConfirmation
				return confirmationReply(session)
			}
		}
		return invalidTimeReply()
	}

	// Unknown step means the draft is corrupt; start over.
	return e.startBooking(session)
}

// availableFor validates the date and re-queries the ledger so the menu never
// offers a slot booked since the last message.
func (e *DefaultConversationEngine) availableFor(ctx context.Context, date string) ([]string, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, nil
	}
	times, err := e.Ledger.ListAvailable(ctx, date)
	if err != nil {
		utils.GetLogger().Error("Failed to list available slots",
			zap.String("date", date), zap.Error(err))
		return nil, err
	}
	return times, nil
}

func (e *DefaultConversationEngine) showAvailableDates(ctx context.Context) string {
	type dateOption struct {
		date      string
		weekday   time.Time
		slotCount int
	}

	var options []dateOption
	today := e.now()
	horizon := e.Settings.BookingWindowDays
	if horizon <= 0 {
		horizon = 14
	}

	for i := 1; i <= horizon && len(options) < 5; i++ {
		day := today.AddDate(0, 0, i)
		date := day.Format(utils.DateLayout)
		times, err := e.Ledger.ListAvailable(ctx, date)
		if err != nil {
			utils.GetLogger().Error("Failed to list available slots",
				zap.String("date", date), zap.Error(err))
			return genericFailureReply()
		}
		if len(times) > 0 {
			options = append(options, dateOption{date: date, weekday: day, slotCount: len(times)})
		}
	}

	if len(options) == 0 {
		return noDatesReply()
	}

	var b strings.Builder
	b.WriteString("📅 Please select a date:\n\n")
	for _, opt := range options {
		b.WriteString("• " + opt.date + " (" + opt.weekday.Format("Monday, January 2") + ") (")
		b.WriteString(countSlots(opt.slotCount))
		b.WriteString(")\n")
	}
	b.WriteString("\nJust type the date (YYYY-MM-DD format) you prefer.")
	return b.String()
}

func (e *DefaultConversationEngine) handleConfirmation(ctx context.Context, session *models.ConversationSession, message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case matchesAny(lower, yesReplies):
		return e.commitBooking(ctx, session)
	case matchesAny(lower, noReplies):
		session.State = models.StateGreeting
		session.Draft = models.BookingDraft{}
		return notBookedReply()
	default:
		return yesNoReply()
	}
}

// commitBooking runs the conflict check and the atomic reserve. A conflict or
// a lost reservation race sends the user back to date selection; the draft
// keeps name and service so only the slot is re-asked.
func (e *DefaultConversationEngine) commitBooking(ctx context.Context, session *models.ConversationSession) string {
	draft := &session.Draft

	report, err := e.Resolver.Check(ctx, draft.Date, draft.Time, draft.Service, "")
	if err != nil {
		utils.GetLogger().Error("Conflict check failed",
			zap.String("userID", session.UserID),
			zap.String("date", draft.Date), zap.String("time", draft.Time), zap.Error(err))
		return genericFailureReply()
	}
	if report.HasConflict {
		session.State = models.StateBooking
		draft.Step = models.StepDate
		draft.Date, draft.Time = "", ""
		return conflictReply(report)
	}

	appt, err := e.Ledger.Reserve(ctx, booking.ReserveRequest{
		UserID:  session.UserID,
		Name:    draft.Name,
		Service: draft.Service,
		Date:    draft.Date,
		Time:    draft.Time,
	})
	if errors.Is(err, booking.ErrSlotTaken) {
		session.State = models.StateBooking
		draft.Step = models.StepDate
		draft.Date, draft.Time = "", ""
		return slotTakenReply()
	}
	if err != nil {
		utils.GetLogger().Error("Reservation failed",
			zap.String("userID", session.UserID),
			zap.String("date", draft.Date), zap.String("time", draft.Time), zap.Error(err))
		return genericFailureReply()
	}

	session.State = models.StateCompleted
	return confirmedReply(appt)
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func matchesAny(text string, words []string) bool {
	for _, word := range words {
		if text == word {
			return true
		}
	}
	return false
}
