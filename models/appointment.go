package models

import "time"

// Appointment statuses. Pending and confirmed appointments count toward slot
// occupancy; cancelled ones do not and are kept for history.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no-show"
)

// ActiveStatuses are the statuses that occupy a slot.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// Appointment is a booked slot for a customer.
type Appointment struct {
	ID           string    `bson:"id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`     // channel-qualified identifier (e.g. phone number)
	Name         string    `bson:"name" json:"name"`           // customer display name
	Service      string    `bson:"service" json:"service"`     // e.g. "Haircut"
	Date         string    `bson:"date" json:"date"`           // "2006-01-02"
	Time         string    `bson:"time" json:"time"`           // clock label, e.g. "2:00 PM"
	Status       string    `bson:"status" json:"status"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	ReminderSent bool      `bson:"reminder_sent" json:"reminder_sent"`
}

// Active reports whether the appointment occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// Slot is one bookable (date, time) pair. Slots are materialized lazily from
// the business-hours schedule and flipped on reserve/release.
type Slot struct {
	Date      string `bson:"date" json:"date"`
	Time      string `bson:"time" json:"time"`
	Available bool   `bson:"available" json:"available"`
}

// Customer is the phone-keyed directory record updated on each booking.
type Customer struct {
	UserID     string    `bson:"user_id" json:"user_id"`
	Name       string    `bson:"name,omitempty" json:"name,omitempty"`
	Email      string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	LastActive time.Time `bson:"last_active" json:"last_active"`
}
