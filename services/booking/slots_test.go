package booking

import (
	"context"
	"reflect"
	"testing"
	"time"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
)

func testSettings() *config.Settings {
	return config.DefaultSettings()
}

func TestGenerateDaySlots_Weekday(t *testing.T) {
	// 2024-01-22 is a Monday: 9 AM - 6 PM, lunch 12-1 skipped.
	slots := GenerateDaySlots(testSettings(), "2024-01-22")

	want := []string{"9:00 AM", "10:00 AM", "11:00 AM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestGenerateDaySlots_Saturday(t *testing.T) {
	// 2024-01-20 is a Saturday: 10 AM - 4 PM.
	slots := GenerateDaySlots(testSettings(), "2024-01-20")

	want := []string{"10:00 AM", "11:00 AM", "1:00 PM", "2:00 PM", "3:00 PM"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestGenerateDaySlots_ClosedDay(t *testing.T) {
	// 2024-01-21 is a Sunday.
	if slots := GenerateDaySlots(testSettings(), "2024-01-21"); len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %v", slots)
	}
}

func TestGenerateDaySlots_BadDate(t *testing.T) {
	if slots := GenerateDaySlots(testSettings(), "January 22"); len(slots) != 0 {
		t.Fatalf("expected no slots for an unparsable date, got %v", slots)
	}
}

func TestAvailableTimes_ExcludesBooked(t *testing.T) {
	repo := ledgerRepo.NewMemoryLedgerRepo()
	ctx := context.Background()

	appt := &models.Appointment{
		ID: "a1", UserID: "u1", Name: "Ann", Service: "Haircut",
		Date: "2024-01-22", Time: "10:00 AM",
		Status: models.StatusPending, CreatedAt: time.Now(),
	}
	if err := repo.InsertAppointment(ctx, appt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	times, err := AvailableTimes(ctx, repo, testSettings(), "2024-01-22")
	if err != nil {
		t.Fatalf("available times: %v", err)
	}
	for _, slot := range times {
		if slot == "10:00 AM" {
			t.Fatalf("booked slot still offered: %v", times)
		}
	}
	if len(times) != 7 {
		t.Fatalf("expected 7 open slots, got %d (%v)", len(times), times)
	}
}

func TestAvailableTimes_CancelledDoesNotOccupy(t *testing.T) {
	repo := ledgerRepo.NewMemoryLedgerRepo()
	ctx := context.Background()

	appt := &models.Appointment{
		ID: "a1", UserID: "u1", Name: "Ann", Service: "Haircut",
		Date: "2024-01-22", Time: "10:00 AM",
		Status: models.StatusCancelled, CreatedAt: time.Now(),
	}
	if err := repo.InsertAppointment(ctx, appt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	times, err := AvailableTimes(ctx, repo, testSettings(), "2024-01-22")
	if err != nil {
		t.Fatalf("available times: %v", err)
	}
	if len(times) != 8 {
		t.Fatalf("expected all 8 slots open, got %d (%v)", len(times), times)
	}
}

func TestAvailableTimes_DailyCap(t *testing.T) {
	repo := ledgerRepo.NewMemoryLedgerRepo()
	ctx := context.Background()
	settings := testSettings()
	settings.MaxDailyAppointments = 2

	for i, slot := range []string{"9:00 AM", "10:00 AM"} {
		appt := &models.Appointment{
			ID: string(rune('a' + i)), UserID: "u1", Name: "Ann", Service: "Haircut",
			Date: "2024-01-22", Time: slot,
			Status: models.StatusConfirmed, CreatedAt: time.Now(),
		}
		if err := repo.InsertAppointment(ctx, appt); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	times, err := AvailableTimes(ctx, repo, settings, "2024-01-22")
	if err != nil {
		t.Fatalf("available times: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("expected no slots once the daily cap is reached, got %v", times)
	}
}
