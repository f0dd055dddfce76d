package reminder

import (
	"fmt"
	"strings"
	"time"

	"styledesk/models"
	"styledesk/utils"
)

func reminderSubject(appt *models.Appointment) string {
	return fmt.Sprintf("Appointment Reminder - %s at %s", appt.Date, appt.Time)
}

// reminderMessage phrases the date relative to now: today, tomorrow, or the
// spelled-out day.
func reminderMessage(appt *models.Appointment, now time.Time, loc *time.Location) string {
	day, err := utils.ParseDate(appt.Date)
	timePhrase := "on " + appt.Date
	if err == nil {
		today := now.In(loc).Format(utils.DateLayout)
		tomorrow := now.In(loc).AddDate(0, 0, 1).Format(utils.DateLayout)
		switch appt.Date {
		case today:
			timePhrase = "today"
		case tomorrow:
			timePhrase = "tomorrow"
		default:
			timePhrase = "on " + day.Format("January 2")
		}
	}

	return fmt.Sprintf(`🔔 Appointment Reminder

Hi %s!

This is a friendly reminder about your upcoming appointment:

📅 Date: %s
🕐 Time: %s
💇 Service: %s
📍 Location: Style Studio, 123 Main Street

If you need to reschedule or cancel, please contact us at least 24 hours in advance.

See you soon!
- Style Studio Team`, appt.Name, timePhrase, appt.Time, appt.Service)
}

func dailySummaryMessage(appts []models.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Daily Appointment Summary\n\nTomorrow's Schedule (%d appointments):\n\n", len(appts))
	for _, appt := range appts {
		fmt.Fprintf(&b, "• %s - %s (%s)\n", appt.Time, appt.Name, appt.Service)
	}
	b.WriteString("\nHave a great day!\n- Style Studio")
	return b.String()
}
