package booking

import (
	"context"
	"testing"
)

func TestAnalyzeDay_EmptySchedule(t *testing.T) {
	checker, _ := newTestChecker()

	report, err := checker.AnalyzeDay(context.Background(), "2024-01-22")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.EfficiencyScore != 100 {
		t.Fatalf("expected perfect score for an empty day, got %v", report.EfficiencyScore)
	}
	if len(report.Gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", report.Gaps)
	}
}

func TestAnalyzeDay_GapsAndScore(t *testing.T) {
	checker, repo := newTestChecker()
	// Haircut 9:00-9:45, then nothing until 2 PM, then Styling 2:00-2:30.
	mustInsert(t, repo, "a1", "2024-01-22", "9:00 AM", "Ann", "Haircut")
	mustInsert(t, repo, "a2", "2024-01-22", "2:00 PM", "Ben", "Styling")

	report, err := checker.AnalyzeDay(context.Background(), "2024-01-22")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(report.Gaps) != 1 {
		t.Fatalf("expected one gap, got %v", report.Gaps)
	}
	gap := report.Gaps[0]
	if gap.StartTime != "9:45 AM" || gap.EndTime != "2:00 PM" || gap.DurationMinutes != 255 {
		t.Fatalf("unexpected gap: %+v", gap)
	}

	// 75 work minutes over a 330-minute span.
	if report.EfficiencyScore < 22 || report.EfficiencyScore > 23 {
		t.Fatalf("unexpected efficiency score %v", report.EfficiencyScore)
	}
	if len(report.Suggestions) == 0 {
		t.Fatal("expected optimization suggestions for a sparse day")
	}
}

func TestAnalyzeDay_DenseScheduleNeedsNoSuggestions(t *testing.T) {
	checker, repo := newTestChecker()
	mustInsert(t, repo, "a1", "2024-01-22", "10:00 AM", "Ann", "Treatment")
	mustInsert(t, repo, "a2", "2024-01-22", "11:00 AM", "Ben", "Treatment")

	report, err := checker.AnalyzeDay(context.Background(), "2024-01-22")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.EfficiencyScore != 100 {
		t.Fatalf("expected score 100 for back-to-back bookings, got %v", report.EfficiencyScore)
	}
	if len(report.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", report.Suggestions)
	}
}
