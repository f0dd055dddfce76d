package booking

import (
	"context"
	"strings"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/utils"
)

// GenerateDaySlots returns the bookable start times for a date, derived from
// the configured business hours: one slot per interval from open to close,
// with the lunch-break window [start, end) skipped. Empty on closed days and
// unparsable dates.
func GenerateDaySlots(s *config.Settings, date string) []string {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil
	}

	openMin, closeMin, open := s.DayHours(strings.ToLower(day.Weekday().String()))
	if !open {
		return nil
	}

	interval := s.SlotIntervalMinutes
	if interval <= 0 {
		interval = 60
	}
	lunchStart, lunchEnd, hasLunch := s.LunchWindow()

	var slots []string
	for m := openMin; m < closeMin; m += interval {
		if hasLunch && m >= lunchStart && m < lunchEnd {
			continue
		}
		slots = append(slots, utils.FormatClock(m))
	}
	return slots
}

// AvailableTimes returns the open slots for a date, ascending by time:
// business-hours-generated slots minus the times of active appointments.
// Empty when the daily appointment cap is already reached.
func AvailableTimes(ctx context.Context, repo ledgerRepo.LedgerRepository, s *config.Settings, date string) ([]string, error) {
	slots := GenerateDaySlots(s, date)
	if len(slots) == 0 {
		return nil, nil
	}

	active, err := repo.ActiveOn(ctx, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active appointments", Err: err}
	}
	if s.MaxDailyAppointments > 0 && len(active) >= s.MaxDailyAppointments {
		return nil, nil
	}

	taken := make(map[string]bool, len(active))
	for _, appt := range active {
		taken[appt.Time] = true
	}

	available := slots[:0:0]
	for _, slot := range slots {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}
