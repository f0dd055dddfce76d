package booking

import (
	"context"
	"fmt"

	"styledesk/models"
	"styledesk/utils"
)

// ScheduleGap is idle time between two consecutive appointments.
type ScheduleGap struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// ScheduleReport is the outcome of a daily schedule analysis.
type ScheduleReport struct {
	Date            string               `json:"date"`
	Appointments    []models.Appointment `json:"appointments"`
	Gaps            []ScheduleGap        `json:"gaps"`
	EfficiencyScore float64              `json:"efficiencyScore"`
	Suggestions     []string             `json:"suggestions,omitempty"`
}

// efficiencyThreshold is the score below which optimization suggestions are
// generated.
const efficiencyThreshold = 80

// AnalyzeDay scores a day's schedule and points out gaps worth filling. The
// score is total service time over the span from first start to last end,
// 0-100; an empty day scores 100.
func (c *ConflictChecker) AnalyzeDay(ctx context.Context, date string) (*ScheduleReport, error) {
	active, err := c.Repo.ActiveOn(ctx, date)
	if err != nil {
		return nil, &PersistenceError{Op: "analyze schedule", Err: err}
	}

	report := &ScheduleReport{Date: date, Appointments: active, EfficiencyScore: 100}
	if len(active) == 0 {
		return report, nil
	}

	report.Gaps = c.findGaps(active)
	report.EfficiencyScore = c.efficiency(active)
	if report.EfficiencyScore < efficiencyThreshold {
		report.Suggestions = c.optimizationSuggestions(active, report.Gaps)
	}
	return report, nil
}

// findGaps returns the idle windows longer than twice the buffer between
// consecutive appointments.
func (c *ConflictChecker) findGaps(appointments []models.Appointment) []ScheduleGap {
	var gaps []ScheduleGap
	for i := 0; i+1 < len(appointments); i++ {
		end, err := c.endMinute(appointments[i])
		if err != nil {
			continue
		}
		nextStart, err := utils.ParseClock(appointments[i+1].Time)
		if err != nil {
			continue
		}
		gap := nextStart - end
		if gap > c.Settings.BufferMinutes*2 {
			gaps = append(gaps, ScheduleGap{
				StartTime:       utils.FormatClock(end),
				EndTime:         appointments[i+1].Time,
				DurationMinutes: gap,
			})
		}
	}
	return gaps
}

func (c *ConflictChecker) efficiency(appointments []models.Appointment) float64 {
	workMinutes := 0
	for _, appt := range appointments {
		workMinutes += c.Settings.DurationMinutes(appt.Service)
	}

	firstStart, err := utils.ParseClock(appointments[0].Time)
	if err != nil {
		return 0
	}
	lastEnd, err := c.endMinute(appointments[len(appointments)-1])
	if err != nil {
		return 0
	}

	span := lastEnd - firstStart
	if span <= 0 {
		return 100
	}
	score := float64(workMinutes) / float64(span) * 100
	if score > 100 {
		score = 100
	}
	return score
}

func (c *ConflictChecker) optimizationSuggestions(appointments []models.Appointment, gaps []ScheduleGap) []string {
	var suggestions []string

	for _, gap := range gaps {
		if gap.DurationMinutes >= 60 {
			suggestions = append(suggestions,
				fmt.Sprintf("Consider booking a %d-minute service between %s and %s",
					gap.DurationMinutes, gap.StartTime, gap.EndTime))
		}
	}

	services := make(map[string]bool)
	for _, appt := range appointments {
		services[appt.Service] = true
	}
	if len(services) > 1 {
		suggestions = append(suggestions, "Consider grouping similar services together for better workflow")
	}

	if firstStart, err := utils.ParseClock(appointments[0].Time); err == nil && firstStart < 10*60 {
		suggestions = append(suggestions, "Consider starting appointments later for better work-life balance")
	}
	return suggestions
}

func (c *ConflictChecker) endMinute(appt models.Appointment) (int, error) {
	start, err := utils.ParseClock(appt.Time)
	if err != nil {
		return 0, err
	}
	return start + c.Settings.DurationMinutes(appt.Service), nil
}
