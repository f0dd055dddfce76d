package ledgerRepo

import (
	"context"
	"errors"

	"styledesk/models"
)

// ErrDuplicateSlot is returned by InsertAppointment when an active
// appointment already occupies the candidate (date, time).
var ErrDuplicateSlot = errors.New("slot already booked")

// Filter narrows ListAppointments. Zero fields match everything.
type Filter struct {
	UserID   string
	Status   string
	Date     string
	FromDate string
	ToDate   string
}

// LedgerRepository is the durable store behind the slot ledger. Appointments
// are never physically deleted; cancellation is a status transition.
type LedgerRepository interface {
	// InsertAppointment atomically verifies that no active appointment
	// occupies (date, time) and inserts the record. The check and the insert
	// are one operation; concurrent inserts for the same slot cannot both
	// succeed. Returns ErrDuplicateSlot to the loser.
	InsertAppointment(ctx context.Context, appt *models.Appointment) error

	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f Filter) ([]models.Appointment, error)

	// ActiveAt returns the active appointment at exactly (date, time),
	// skipping excludeID, or nil when the slot is free.
	ActiveAt(ctx context.Context, date, timeOfDay, excludeID string) (*models.Appointment, error)

	// ActiveOn returns all active appointments on a date, ascending by time.
	ActiveOn(ctx context.Context, date string) ([]models.Appointment, error)

	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	UpdateSchedule(ctx context.Context, id, date, timeOfDay, notes string) (bool, error)

	// MarkReminderSent flips the reminder flag. Returns true when the
	// appointment exists, whether or not the flag was already set.
	MarkReminderSent(ctx context.Context, id string) (bool, error)

	// PendingReminders returns active appointments whose reminder has not
	// been sent yet.
	PendingReminders(ctx context.Context) ([]models.Appointment, error)

	// EnsureSlots lazily materializes availability rows for a date; existing
	// rows are left untouched.
	EnsureSlots(ctx context.Context, date string, times []string) error
	SetSlotAvailable(ctx context.Context, date, timeOfDay string, available bool) error

	UpsertCustomer(ctx context.Context, customer *models.Customer) error

	// GetCustomer returns the customer record for a user, or nil when none
	// exists.
	GetCustomer(ctx context.Context, userID string) (*models.Customer, error)
}
