package calendar

import (
	"context"

	"styledesk/models"
)

// Gateway is the external-calendar capability consumed by the conflict
// resolver and the booking service. Implementations must bound every call
// with a timeout; callers treat errors as fail-open.
type Gateway interface {
	// IsAvailable reports whether [time, time+duration) is free of external
	// events on the given date.
	IsAvailable(ctx context.Context, date, timeOfDay string, durationMinutes int) (bool, error)

	// CreateEvent pushes a booked appointment to the external calendar.
	// Best-effort; a failure never rolls back the booking.
	CreateEvent(ctx context.Context, appt *models.Appointment, durationMinutes int) error
}
