package booking

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
)

type fakeCalendar struct {
	busy    bool
	err     error
	created int
}

func (f *fakeCalendar) IsAvailable(context.Context, string, string, int) (bool, error) {
	return !f.busy, f.err
}

func (f *fakeCalendar) CreateEvent(context.Context, *models.Appointment, int) error {
	f.created++
	return nil
}

func newTestChecker() (*ConflictChecker, *ledgerRepo.MemoryLedgerRepo) {
	repo := ledgerRepo.NewMemoryLedgerRepo()
	checker := &ConflictChecker{
		Repo:     repo,
		Settings: testSettings(),
		Now:      func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) },
	}
	return checker, repo
}

func mustInsert(t *testing.T, repo *ledgerRepo.MemoryLedgerRepo, id, date, timeOfDay, name, service string) {
	t.Helper()
	err := repo.InsertAppointment(context.Background(), &models.Appointment{
		ID: id, UserID: "u-" + id, Name: name, Service: service,
		Date: date, Time: timeOfDay,
		Status: models.StatusConfirmed, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func TestCheck_CleanVerdict(t *testing.T) {
	checker, _ := newTestChecker()

	// Coloring at 1 PM on a Monday: before the 3 PM cutoff, no conflicts.
	report, err := checker.Check(context.Background(), "2024-01-22", "1:00 PM", "Coloring", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected clean verdict, got %+v", report)
	}
}

func TestCheck_ColoringCutoff(t *testing.T) {
	checker, _ := newTestChecker()

	report, err := checker.Check(context.Background(), "2024-01-22", "4:00 PM", "Coloring", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !report.HasConflict || report.ConflictType != models.ConflictBusinessRule {
		t.Fatalf("expected business-rule conflict, got %+v", report)
	}
	found := false
	for _, d := range report.Details {
		if strings.Contains(d, "before 3 PM") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cutoff detail, got %v", report.Details)
	}
	if len(report.Suggestions) == 0 {
		t.Fatal("expected alternative suggestions")
	}
	first := report.Suggestions[0]
	if first.Priority != models.SuggestionPreferred || first.Date != "2024-01-22" {
		t.Fatalf("expected a preferred same-day suggestion first, got %+v", first)
	}
}

func TestCheck_ExactMatch(t *testing.T) {
	checker, repo := newTestChecker()
	mustInsert(t, repo, "a1", "2024-01-22", "10:00 AM", "Ann", "Haircut")

	report, err := checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType != models.ConflictExistingAppointment {
		t.Fatalf("expected existing-appointment conflict, got %+v", report)
	}
}

func TestCheck_BufferWindow(t *testing.T) {
	checker, repo := newTestChecker()
	mustInsert(t, repo, "a1", "2024-01-22", "10:00 AM", "Ann", "Haircut")

	report, err := checker.Check(context.Background(), "2024-01-22", "10:10 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType != models.ConflictExistingAppointment {
		t.Fatalf("expected near-miss conflict inside the buffer, got %+v", report)
	}

	// 15 minutes out is exactly the buffer, so it clears the existing check
	// (the slot itself is off-grid but that is the resolver's caller's concern).
	report, err = checker.Check(context.Background(), "2024-01-22", "10:15 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType == models.ConflictExistingAppointment {
		t.Fatalf("did not expect a buffer conflict at the buffer boundary, got %+v", report)
	}
}

func TestCheck_ExcludedID(t *testing.T) {
	checker, repo := newTestChecker()
	mustInsert(t, repo, "a1", "2024-01-22", "10:00 AM", "Ann", "Haircut")

	// A reschedule check against the appointment's own slot is clean.
	report, err := checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "a1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected clean verdict excluding own id, got %+v", report)
	}
}

func TestCheck_BusinessRules(t *testing.T) {
	checker, _ := newTestChecker()

	cases := []struct {
		name   string
		date   string
		time   string
		detail string
	}{
		{"sunday closed", "2024-01-21", "10:00 AM", "closed on Sundays"},
		{"before opening", "2024-01-22", "8:00 AM", "Outside business hours"},
		{"at closing", "2024-01-22", "6:00 PM", "Outside business hours"},
		{"lunch break", "2024-01-22", "12:00 PM", "lunch break"},
	}
	for _, tc := range cases {
		report, err := checker.Check(context.Background(), tc.date, tc.time, "Haircut", "")
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if report.ConflictType != models.ConflictBusinessRule {
			t.Fatalf("%s: expected business-rule conflict, got %+v", tc.name, report)
		}
		found := false
		for _, d := range report.Details {
			if strings.Contains(d, tc.detail) {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: expected detail containing %q, got %v", tc.name, tc.detail, report.Details)
		}
	}

	// Lunch ends at 1 PM; the 1 PM slot itself is bookable.
	report, err := checker.Check(context.Background(), "2024-01-22", "1:00 PM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected 1:00 PM to clear the lunch rule, got %+v", report)
	}
}

func TestCheck_DailyCap(t *testing.T) {
	checker, repo := newTestChecker()
	checker.Settings.MaxDailyAppointments = 2
	mustInsert(t, repo, "a1", "2024-01-22", "9:00 AM", "Ann", "Haircut")
	mustInsert(t, repo, "a2", "2024-01-22", "11:00 AM", "Ben", "Styling")

	report, err := checker.Check(context.Background(), "2024-01-22", "2:00 PM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType != models.ConflictBusinessRule {
		t.Fatalf("expected daily-cap conflict, got %+v", report)
	}
}

func TestCheck_DailyCapExcludesRescheduledAppointment(t *testing.T) {
	checker, repo := newTestChecker()
	checker.Settings.MaxDailyAppointments = 2
	mustInsert(t, repo, "a1", "2024-01-22", "9:00 AM", "Ann", "Haircut")
	mustInsert(t, repo, "a2", "2024-01-22", "11:00 AM", "Ben", "Styling")

	// Moving a1 within the same day adds nothing to the count, so the cap
	// must not fire.
	report, err := checker.Check(context.Background(), "2024-01-22", "2:00 PM", "Haircut", "a1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected clean verdict for same-day reschedule at cap, got %+v", report)
	}
}

func TestCheck_SpecialEventAdvanceNotice(t *testing.T) {
	checker, _ := newTestChecker() // clock fixed at 2024-01-15 12:00

	report, err := checker.Check(context.Background(), "2024-01-16", "10:00 AM", "Special Event", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType != models.ConflictBusinessRule {
		t.Fatalf("expected advance-notice conflict, got %+v", report)
	}

	report, err = checker.Check(context.Background(), "2024-01-19", "10:00 AM", "Special Event", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected clean verdict three days out, got %+v", report)
	}
}

func TestCheck_CalendarConflictAndFailOpen(t *testing.T) {
	checker, _ := newTestChecker()
	checker.Settings.CalendarEnabled = true

	cal := &fakeCalendar{busy: true}
	checker.Calendar = cal
	report, err := checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.ConflictType != models.ConflictCalendar {
		t.Fatalf("expected calendar conflict, got %+v", report)
	}

	// Gateway failure fails open.
	checker.Calendar = &fakeCalendar{err: errors.New("gateway down")}
	report, err = checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasConflict {
		t.Fatalf("expected fail-open verdict on gateway error, got %+v", report)
	}
}

func TestCheck_Deterministic(t *testing.T) {
	checker, repo := newTestChecker()
	mustInsert(t, repo, "a1", "2024-01-22", "10:00 AM", "Ann", "Haircut")

	first, err := checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	second, err := checker.Check(context.Background(), "2024-01-22", "10:00 AM", "Haircut", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("verdicts differ for identical ledger state:\n%+v\n%+v", first, second)
	}
}

func TestSuggest_AlternativeDay(t *testing.T) {
	checker, repo := newTestChecker()
	// Fill every Monday slot so the scan moves to Tuesday.
	for i, slot := range GenerateDaySlots(checker.Settings, "2024-01-22") {
		mustInsert(t, repo, string(rune('a'+i)), "2024-01-22", slot, "Guest", "Haircut")
	}

	suggestions, err := checker.Suggest(context.Background(), "2024-01-22", 3)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	for _, sug := range suggestions {
		if sug.Date != "2024-01-23" || sug.Priority != models.SuggestionAlternativeDay {
			t.Fatalf("expected next-day suggestions, got %+v", sug)
		}
	}
}
