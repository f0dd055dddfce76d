package booking

import (
	"context"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
	"styledesk/services/calendar"
	"styledesk/utils"
)

// ReserveRequest carries the fields of a booking about to be committed.
type ReserveRequest struct {
	UserID  string
	Name    string
	Service string
	Date    string
	Time    string
	Notes   string
}

// SlotLedger is the single source of truth for slot occupancy. Reserve is the
// one operation with a strong guarantee: two concurrent reservations for the
// same (date, time) can never both succeed.
type SlotLedger interface {
	// Reserve atomically claims a slot. Returns ErrSlotTaken to the loser of
	// a race and ValidationError for malformed fields.
	Reserve(ctx context.Context, req ReserveRequest) (*models.Appointment, error)

	// Release marks a slot bookable again. Idempotent.
	Release(ctx context.Context, date, timeOfDay string) error

	// Cancel transitions an appointment to cancelled and releases its slot.
	// Returns false when the id is unknown.
	Cancel(ctx context.Context, id string) (bool, error)

	// Reschedule moves an appointment to a new slot, keeping its id. Returns
	// ErrSlotTaken when the target slot is occupied.
	Reschedule(ctx context.Context, id, date, timeOfDay string) (*models.Appointment, error)

	// SetStatus applies a status transition. Terminal statuses (cancelled,
	// completed) cannot be left. Returns false for unknown ids.
	SetStatus(ctx context.Context, id, status string) (bool, error)

	// ListAvailable returns the open slots for a date, ascending by time.
	ListAvailable(ctx context.Context, date string) ([]string, error)

	Get(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, f ledgerRepo.Filter) ([]models.Appointment, error)

	// MarkReminderSent flips the reminder flag exactly once; repeated calls
	// are no-ops returning true.
	MarkReminderSent(ctx context.Context, id string) (bool, error)
}

// DefaultSlotLedger implements SlotLedger over a LedgerRepository.
type DefaultSlotLedger struct {
	Repo     ledgerRepo.LedgerRepository
	Settings *config.Settings
	Calendar calendar.Gateway
	Metrics  *utils.Metrics
}
