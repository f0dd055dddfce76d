package booking

import (
	"context"
	"fmt"

	"styledesk/models"
	"styledesk/utils"
)

// Suggest ranks alternative slots for a conflicting candidate: configured
// preferred times on the same date first, then other open same-day slots,
// then the earliest day with availability within the booking window.
func (c *ConflictChecker) Suggest(ctx context.Context, date string, count int) ([]models.Suggestion, error) {
	if count <= 0 {
		count = 3
	}

	available, err := AvailableTimes(ctx, c.Repo, c.Settings, date)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return c.suggestLaterDay(ctx, date, count)
	}

	preferred := make(map[string]bool, len(c.Settings.PreferredSlots))
	for _, slot := range c.Settings.PreferredSlots {
		preferred[slot] = true
	}

	var suggestions []models.Suggestion
	for _, slot := range available {
		if len(suggestions) >= count {
			break
		}
		if preferred[slot] {
			suggestions = append(suggestions, models.Suggestion{
				Date:     date,
				Time:     slot,
				Reason:   "Preferred time slot",
				Priority: models.SuggestionPreferred,
			})
		}
	}
	for _, slot := range available {
		if len(suggestions) >= count {
			break
		}
		if !preferred[slot] {
			suggestions = append(suggestions, models.Suggestion{
				Date:     date,
				Time:     slot,
				Reason:   "Available time slot",
				Priority: models.SuggestionAvailable,
			})
		}
	}
	return suggestions, nil
}

// suggestLaterDay scans forward up to the booking window and offers slots
// from the first day with availability.
func (c *ConflictChecker) suggestLaterDay(ctx context.Context, date string, count int) ([]models.Suggestion, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, NewValidationError("date", fmt.Sprintf("unparsable date %q", date))
	}

	horizon := c.Settings.BookingWindowDays
	if horizon <= 0 {
		horizon = 14
	}

	for i := 1; i <= horizon; i++ {
		next := day.AddDate(0, 0, i)
		nextDate := next.Format(utils.DateLayout)

		available, err := AvailableTimes(ctx, c.Repo, c.Settings, nextDate)
		if err != nil {
			return nil, err
		}
		if len(available) == 0 {
			continue
		}

		var suggestions []models.Suggestion
		for _, slot := range available {
			if len(suggestions) >= count {
				break
			}
			suggestions = append(suggestions, models.Suggestion{
				Date:     nextDate,
				Time:     slot,
				Reason:   fmt.Sprintf("Available %s", next.Weekday().String()),
				Priority: models.SuggestionAlternativeDay,
			})
		}
		return suggestions, nil
	}
	return nil, nil
}
