package booking

import (
	"fmt"
	"strings"
	"time"

	"styledesk/models"
	"styledesk/utils"
)

const (
	coloringCutoffMin      = 15 * 60 // Coloring must start before 3 PM
	specialEventNoticeDays = 3
)

// checkBusinessRules evaluates the static business rules for a candidate:
// day-of-week closure, business hours, lunch break, the daily cap, and the
// service-specific rules.
func (c *ConflictChecker) checkBusinessRules(report *models.ConflictReport, day time.Time, candidateMin int, service string, activeCount int) {
	weekday := strings.ToLower(day.Weekday().String())

	openMin, closeMin, open := c.Settings.DayHours(weekday)
	if !open {
		report.Add(models.ConflictBusinessRule,
			fmt.Sprintf("We are closed on %ss", day.Weekday().String()))
	} else if candidateMin < openMin || candidateMin >= closeMin {
		report.Add(models.ConflictBusinessRule,
			fmt.Sprintf("Outside business hours (%s - %s)",
				utils.FormatClock(openMin), utils.FormatClock(closeMin)))
	}

	if lunchStart, lunchEnd, ok := c.Settings.LunchWindow(); ok {
		if candidateMin >= lunchStart && candidateMin < lunchEnd {
			report.Add(models.ConflictBusinessRule,
				fmt.Sprintf("During lunch break (%s - %s)",
					utils.FormatClock(lunchStart), utils.FormatClock(lunchEnd)))
		}
	}

	if c.Settings.MaxDailyAppointments > 0 && activeCount >= c.Settings.MaxDailyAppointments {
		report.Add(models.ConflictBusinessRule,
			fmt.Sprintf("Daily appointment limit reached (%d)", c.Settings.MaxDailyAppointments))
	}

	c.checkServiceRules(report, day, candidateMin, service)
}

// checkServiceRules applies the per-service constraints: Coloring starts
// before the afternoon cutoff, Special Event needs advance notice.
func (c *ConflictChecker) checkServiceRules(report *models.ConflictReport, day time.Time, candidateMin int, service string) {
	switch service {
	case "Coloring":
		if candidateMin >= coloringCutoffMin {
			report.Add(models.ConflictBusinessRule,
				"Coloring services should be scheduled earlier in the day (before 3 PM)")
		}
	case "Special Event":
		if int(day.Sub(c.now()).Hours()/24) < specialEventNoticeDays {
			report.Add(models.ConflictBusinessRule,
				fmt.Sprintf("Special event services require at least %d days advance booking", specialEventNoticeDays))
		}
	}
}
