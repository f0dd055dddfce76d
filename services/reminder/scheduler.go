package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
	"styledesk/services/notification"
	"styledesk/utils"
)

const defaultInterval = 30 * time.Minute

// Clock abstracts time so passes can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = systemClock{}

// Stats summarizes reminder progress across active appointments.
type Stats struct {
	Active  int `json:"active"`
	Sent    int `json:"sent"`
	Pending int `json:"pending"`
}

// Scheduler scans the ledger for appointments crossing a reminder threshold
// and dispatches notifications. The host process owns its lifecycle through
// Run; every pass is also invocable directly.
type Scheduler struct {
	Repo     ledgerRepo.LedgerRepository
	Settings *config.Settings
	Channels []notification.Channel
	Metrics  *utils.Metrics

	// Interval between passes. Defaults to 30 minutes.
	Interval time.Duration
	// Clock defaults to the wall clock.
	Clock Clock

	locOnce         sync.Once
	loc             *time.Location
	lastSummaryDate string
}

func (s *Scheduler) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// location resolves the business timezone once. Pass runs both on the ticker
// goroutine and on request goroutines, so the lazy init must be synchronized.
func (s *Scheduler) location() *time.Location {
	s.locOnce.Do(func() {
		loc, err := time.LoadLocation(s.Settings.Timezone)
		if err != nil {
			loc = time.Local
		}
		s.loc = loc
	})
	return s.loc
}

// Run drives the scheduler until the context is cancelled. Each tick runs a
// reminder pass and, once per day after the configured time, the daily
// summary.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	utils.GetLogger().Info("Reminder scheduler started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			utils.GetLogger().Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Pass(ctx); err != nil {
				utils.GetLogger().Error("Reminder pass failed", zap.Error(err))
			}
			s.maybeDailySummary(ctx)
		}
	}
}

// Pass runs one reminder sweep: every active appointment with an unsent
// reminder whose time-to-start lies within the tolerance window of a
// configured threshold gets dispatched. Safe to call repeatedly; an
// appointment is dispatched at most once thanks to the sent flag.
func (s *Scheduler) Pass(ctx context.Context) error {
	pending, err := s.Repo.PendingReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate pending reminders: %w", err)
	}

	now := s.now()
	for i := range pending {
		appt := &pending[i]
		if !s.due(appt, now) {
			continue
		}
		s.dispatch(ctx, appt, now)
	}
	return nil
}

// due reports whether the appointment currently crosses a reminder threshold.
func (s *Scheduler) due(appt *models.Appointment, now time.Time) bool {
	start, err := utils.CombineDateTime(appt.Date, appt.Time, s.location())
	if err != nil {
		utils.GetLogger().Warn("Skipping appointment with unparsable schedule",
			zap.String("appointmentID", appt.ID),
			zap.String("date", appt.Date), zap.String("time", appt.Time), zap.Error(err))
		return false
	}

	tolerance := float64(s.Settings.ReminderToleranceMinutes) / 60
	if tolerance <= 0 {
		tolerance = 0.5
	}

	hoursUntil := start.Sub(now).Hours()
	for _, threshold := range s.Settings.ReminderHours {
		diff := hoursUntil - float64(threshold)
		if diff < 0 {
			diff = -diff
		}
		if diff < tolerance {
			return true
		}
	}
	return false
}

// dispatch attempts every channel independently and marks the reminder sent
// when at least one delivery succeeds. A full failure leaves the flag false
// so the next pass inside the tolerance window retries.
func (s *Scheduler) dispatch(ctx context.Context, appt *models.Appointment, now time.Time) {
	logger := utils.GetLogger()
	subject := reminderSubject(appt)
	body := reminderMessage(appt, now, s.location())

	sent := false
	for _, channel := range s.Channels {
		recipient := s.recipient(ctx, channel.Name(), appt)
		if recipient == "" {
			continue
		}
		if err := channel.Send(ctx, recipient, subject, body); err != nil {
			if s.Metrics != nil {
				s.Metrics.DispatchErrors.WithLabelValues(channel.Name()).Inc()
			}
			logger.Warn("Reminder channel failed",
				zap.String("appointmentID", appt.ID),
				zap.String("channel", channel.Name()), zap.Error(err))
			continue
		}
		sent = true
	}

	if !sent {
		logger.Error("All reminder channels failed",
			zap.String("appointmentID", appt.ID),
			zap.String("date", appt.Date), zap.String("time", appt.Time))
		return
	}

	if _, err := s.Repo.MarkReminderSent(ctx, appt.ID); err != nil {
		logger.Error("Failed to mark reminder sent",
			zap.String("appointmentID", appt.ID), zap.Error(err))
		return
	}
	if s.Metrics != nil {
		s.Metrics.RemindersSent.Inc()
	}
	logger.Info("Reminder sent",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.Date), zap.String("time", appt.Time))
}

// recipient resolves where a channel should deliver for an appointment.
// Email needs the customer's address from the directory; everything else
// uses the channel-qualified user identifier.
func (s *Scheduler) recipient(ctx context.Context, channelName string, appt *models.Appointment) string {
	if channelName != "email" {
		return appt.UserID
	}
	customer, err := s.Repo.GetCustomer(ctx, appt.UserID)
	if err != nil {
		utils.GetLogger().Warn("Failed to look up customer for email reminder",
			zap.String("userID", appt.UserID), zap.Error(err))
		return ""
	}
	if customer == nil {
		return ""
	}
	return customer.Email
}

// RunForAppointment dispatches one appointment's reminder immediately,
// regardless of thresholds. Test and debug hook.
func (s *Scheduler) RunForAppointment(ctx context.Context, id string) error {
	appt, err := s.Repo.GetAppointment(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	if appt == nil {
		return fmt.Errorf("unknown appointment %s", id)
	}
	s.dispatch(ctx, appt, s.now())
	return nil
}

// GetStats reports reminder progress across active appointments.
func (s *Scheduler) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	for _, status := range models.ActiveStatuses {
		appts, err := s.Repo.ListAppointments(ctx, ledgerRepo.Filter{Status: status})
		if err != nil {
			return nil, err
		}
		for _, appt := range appts {
			stats.Active++
			if appt.ReminderSent {
				stats.Sent++
			} else {
				stats.Pending++
			}
		}
	}
	return stats, nil
}

// maybeDailySummary sends the once-a-day summary after the configured time.
func (s *Scheduler) maybeDailySummary(ctx context.Context) {
	summaryMin, err := utils.ParseClock(s.Settings.DailySummaryTime)
	if err != nil {
		return
	}
	now := s.now().In(s.location())
	if now.Hour()*60+now.Minute() < summaryMin {
		return
	}
	today := now.Format(utils.DateLayout)
	if s.lastSummaryDate == today {
		return
	}
	if err := s.DailySummary(ctx); err != nil {
		utils.GetLogger().Error("Daily summary failed", zap.Error(err))
		return
	}
	s.lastSummaryDate = today
}

// DailySummary aggregates tomorrow's active appointments into one message for
// the administrative recipients, independent of per-appointment reminders.
func (s *Scheduler) DailySummary(ctx context.Context) error {
	now := s.now().In(s.location())
	tomorrow := now.AddDate(0, 0, 1).Format(utils.DateLayout)

	appts, err := s.Repo.ActiveOn(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to list tomorrow's appointments: %w", err)
	}
	if len(appts) == 0 {
		return nil
	}

	body := dailySummaryMessage(appts)
	subject := fmt.Sprintf("Daily Appointment Summary - %s", tomorrow)

	for _, channel := range s.Channels {
		var recipient string
		switch channel.Name() {
		case "email":
			recipient = s.Settings.AdminEmail
		default:
			recipient = s.Settings.AdminPhone
		}
		if recipient == "" {
			continue
		}
		if err := channel.Send(ctx, recipient, subject, body); err != nil {
			if s.Metrics != nil {
				s.Metrics.DispatchErrors.WithLabelValues(channel.Name()).Inc()
			}
			utils.GetLogger().Warn("Daily summary channel failed",
				zap.String("channel", channel.Name()), zap.Error(err))
		}
	}
	utils.GetLogger().Info("Daily summary dispatched",
		zap.String("date", tomorrow), zap.Int("appointments", len(appts)))
	return nil
}
