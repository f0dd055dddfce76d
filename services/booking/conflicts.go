package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
	"styledesk/services/calendar"
	"styledesk/utils"
)

// ConflictChecker is the multi-source conflict resolver: existing bookings,
// the external calendar, and the configured business rules, in that order.
// Given a fixed ledger state and settings snapshot the verdict is a pure
// function of (date, time, service).
type ConflictChecker struct {
	Repo     ledgerRepo.LedgerRepository
	Settings *config.Settings
	Calendar calendar.Gateway
	Metrics  *utils.Metrics

	// Now is the clock used by advance-notice rules. Defaults to time.Now.
	Now func() time.Time
}

func (c *ConflictChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Check produces the conflict verdict for a candidate slot. excludeID skips
// one appointment in the existing-booking checks, for reschedules.
func (c *ConflictChecker) Check(ctx context.Context, date, timeOfDay, service, excludeID string) (*models.ConflictReport, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, NewValidationError("date", fmt.Sprintf("unparsable date %q", date))
	}
	candidateMin, err := utils.ParseClock(timeOfDay)
	if err != nil {
		return nil, NewValidationError("time", fmt.Sprintf("unparsable time %q", timeOfDay))
	}

	report := &models.ConflictReport{}

	active, err := c.Repo.ActiveOn(ctx, date)
	if err != nil {
		return nil, &PersistenceError{Op: "check conflicts", Err: err}
	}

	// A reschedule frees its own slot, so the excluded appointment must not
	// count against the daily cap.
	activeCount := len(active)
	if excludeID != "" {
		for i := range active {
			if active[i].ID == excludeID {
				activeCount--
				break
			}
		}
	}

	c.checkExisting(report, active, timeOfDay, candidateMin, excludeID)
	c.checkCalendar(ctx, report, date, timeOfDay, service)
	c.checkBusinessRules(report, day, candidateMin, service, activeCount)

	if report.HasConflict {
		if c.Metrics != nil {
			c.Metrics.ConflictsDetected.WithLabelValues(report.ConflictType).Inc()
		}
		suggestions, err := c.Suggest(ctx, date, c.Settings.SuggestionCount)
		if err != nil {
			utils.GetLogger().Warn("Failed to generate alternative suggestions",
				zap.String("date", date), zap.Error(err))
		} else {
			report.Suggestions = suggestions
		}
	}
	return report, nil
}

// checkExisting flags exact-time matches and near-misses inside the buffer
// window against active appointments on the candidate date.
func (c *ConflictChecker) checkExisting(report *models.ConflictReport, active []models.Appointment, timeOfDay string, candidateMin int, excludeID string) {
	for _, appt := range active {
		if appt.ID == excludeID {
			continue
		}
		if appt.Time == timeOfDay {
			report.Add(models.ConflictExistingAppointment,
				fmt.Sprintf("Exact time conflict with %s (%s)", appt.Name, appt.Service))
			continue
		}
		existingMin, err := utils.ParseClock(appt.Time)
		if err != nil {
			continue
		}
		diff := candidateMin - existingMin
		if diff < 0 {
			diff = -diff
		}
		if diff < c.Settings.BufferMinutes {
			report.Add(models.ConflictExistingAppointment,
				fmt.Sprintf("Too close to appointment with %s at %s", appt.Name, appt.Time))
		}
	}
}

// checkCalendar consults the external calendar when configured. Gateway
// errors fail open: the slot is treated as available and the failure logged.
func (c *ConflictChecker) checkCalendar(ctx context.Context, report *models.ConflictReport, date, timeOfDay, service string) {
	if !c.Settings.CalendarEnabled || c.Calendar == nil {
		return
	}
	available, err := c.Calendar.IsAvailable(ctx, date, timeOfDay, c.Settings.DurationMinutes(service))
	if err != nil {
		utils.GetLogger().Warn("Calendar availability check failed, assuming available",
			zap.String("date", date), zap.String("time", timeOfDay), zap.Error(err))
		return
	}
	if !available {
		report.Add(models.ConflictCalendar, "Conflicts with calendar event")
	}
}
