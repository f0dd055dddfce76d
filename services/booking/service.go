package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
	"styledesk/utils"
)

// Reserve validates the request, atomically claims the slot, and records the
// appointment as pending. The occupancy check and the insert are one storage
// operation; a lost race comes back as ErrSlotTaken.
func (s *DefaultSlotLedger) Reserve(ctx context.Context, req ReserveRequest) (*models.Appointment, error) {
	if err := validateReserve(req); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Name:      strings.TrimSpace(req.Name),
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		Status:    models.StatusPending,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}

	if err := s.Repo.InsertAppointment(ctx, appt); err != nil {
		if errors.Is(err, ledgerRepo.ErrDuplicateSlot) {
			return nil, ErrSlotTaken
		}
		return nil, &PersistenceError{Op: "reserve slot", Err: err}
	}
	if s.Metrics != nil {
		s.Metrics.BookingsCreated.Inc()
	}
	utils.GetLogger().Info("Appointment reserved",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time),
		zap.String("service", appt.Service))

	s.afterReserve(ctx, appt)
	return appt, nil
}

// afterReserve maintains the derived state around a committed booking: the
// availability row, the customer directory, and the external calendar. All
// best-effort; the appointment record is already durable.
func (s *DefaultSlotLedger) afterReserve(ctx context.Context, appt *models.Appointment) {
	logger := utils.GetLogger()

	if err := s.Repo.EnsureSlots(ctx, appt.Date, GenerateDaySlots(s.Settings, appt.Date)); err != nil {
		logger.Warn("Failed to materialize slot rows", zap.String("date", appt.Date), zap.Error(err))
	}
	if err := s.Repo.SetSlotAvailable(ctx, appt.Date, appt.Time, false); err != nil {
		logger.Warn("Failed to flag slot unavailable",
			zap.String("date", appt.Date), zap.String("time", appt.Time), zap.Error(err))
	}

	customer := &models.Customer{
		UserID:     appt.UserID,
		Name:       appt.Name,
		CreatedAt:  appt.CreatedAt,
		LastActive: appt.CreatedAt,
	}
	if err := s.Repo.UpsertCustomer(ctx, customer); err != nil {
		logger.Warn("Failed to update customer record", zap.String("userID", appt.UserID), zap.Error(err))
	}

	if s.Settings.CalendarEnabled && s.Calendar != nil {
		if err := s.Calendar.CreateEvent(ctx, appt, s.Settings.DurationMinutes(appt.Service)); err != nil {
			logger.Warn("Failed to push calendar event", zap.String("appointmentID", appt.ID), zap.Error(err))
		}
	}
}

func validateReserve(req ReserveRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return NewValidationError("userID", "missing user identifier")
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "missing customer name")
	}
	if strings.TrimSpace(req.Service) == "" {
		return NewValidationError("service", "missing service")
	}
	if _, err := utils.ParseDate(req.Date); err != nil {
		return NewValidationError("date", err.Error())
	}
	if _, err := utils.ParseClock(req.Time); err != nil {
		return NewValidationError("time", err.Error())
	}
	return nil
}

// Release marks a slot bookable again. Idempotent: releasing a free slot is
// a no-op.
func (s *DefaultSlotLedger) Release(ctx context.Context, date, timeOfDay string) error {
	if err := s.Repo.SetSlotAvailable(ctx, date, timeOfDay, true); err != nil {
		return &PersistenceError{Op: "release slot", Err: err}
	}
	return nil
}

// Cancel transitions an appointment to cancelled, keeping the record for
// history, and releases its slot.
func (s *DefaultSlotLedger) Cancel(ctx context.Context, id string) (bool, error) {
	appt, err := s.Repo.GetAppointment(ctx, id)
	if err != nil {
		return false, &PersistenceError{Op: "cancel appointment", Err: err}
	}
	if appt == nil {
		return false, nil
	}

	if _, err := s.Repo.UpdateStatus(ctx, id, models.StatusCancelled); err != nil {
		return false, &PersistenceError{Op: "cancel appointment", Err: err}
	}
	if err := s.Release(ctx, appt.Date, appt.Time); err != nil {
		utils.GetLogger().Warn("Cancelled appointment but failed to release slot",
			zap.String("appointmentID", id), zap.Error(err))
	}
	if s.Metrics != nil {
		s.Metrics.BookingsCancelled.Inc()
	}
	utils.GetLogger().Info("Appointment cancelled",
		zap.String("appointmentID", id),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time))
	return true, nil
}

// Reschedule moves an appointment to a new slot after verifying the target is
// free. The exact-slot check excludes the appointment itself so moving within
// the same slot is allowed.
func (s *DefaultSlotLedger) Reschedule(ctx context.Context, id, date, timeOfDay string) (*models.Appointment, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, NewValidationError("date", err.Error())
	}
	if _, err := utils.ParseClock(timeOfDay); err != nil {
		return nil, NewValidationError("time", err.Error())
	}

	appt, err := s.Repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "reschedule appointment", Err: err}
	}
	if appt == nil {
		return nil, NewValidationError("id", "unknown appointment")
	}

	occupied, err := s.Repo.ActiveAt(ctx, date, timeOfDay, id)
	if err != nil {
		return nil, &PersistenceError{Op: "reschedule appointment", Err: err}
	}
	if occupied != nil {
		return nil, ErrSlotTaken
	}

	oldDate, oldTime := appt.Date, appt.Time
	if _, err := s.Repo.UpdateSchedule(ctx, id, date, timeOfDay, ""); err != nil {
		return nil, &PersistenceError{Op: "reschedule appointment", Err: err}
	}
	if err := s.Release(ctx, oldDate, oldTime); err != nil {
		utils.GetLogger().Warn("Rescheduled appointment but failed to release old slot",
			zap.String("appointmentID", id), zap.Error(err))
	}
	if err := s.Repo.SetSlotAvailable(ctx, date, timeOfDay, false); err != nil {
		utils.GetLogger().Warn("Failed to flag rescheduled slot unavailable",
			zap.String("appointmentID", id), zap.Error(err))
	}

	appt.Date = date
	appt.Time = timeOfDay
	utils.GetLogger().Info("Appointment rescheduled",
		zap.String("appointmentID", id),
		zap.String("date", date),
		zap.String("time", timeOfDay))
	return appt, nil
}

var allowedTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted, models.StatusNoShow},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted, models.StatusNoShow},
}

// SetStatus applies a status transition, releasing the slot when the new
// status no longer occupies it.
func (s *DefaultSlotLedger) SetStatus(ctx context.Context, id, status string) (bool, error) {
	appt, err := s.Repo.GetAppointment(ctx, id)
	if err != nil {
		return false, &PersistenceError{Op: "update status", Err: err}
	}
	if appt == nil {
		return false, nil
	}

	allowed := false
	for _, next := range allowedTransitions[appt.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, NewValidationError("status", "cannot move from "+appt.Status+" to "+status)
	}

	if _, err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return false, &PersistenceError{Op: "update status", Err: err}
	}
	if status == models.StatusCancelled || status == models.StatusNoShow {
		if err := s.Release(ctx, appt.Date, appt.Time); err != nil {
			utils.GetLogger().Warn("Status updated but failed to release slot",
				zap.String("appointmentID", id), zap.Error(err))
		}
	}
	return true, nil
}

// ListAvailable returns the open slots for a date, materializing the
// availability rows on first sight of the date.
func (s *DefaultSlotLedger) ListAvailable(ctx context.Context, date string) ([]string, error) {
	available, err := AvailableTimes(ctx, s.Repo, s.Settings, date)
	if err != nil {
		return nil, err
	}
	if generated := GenerateDaySlots(s.Settings, date); len(generated) > 0 {
		if err := s.Repo.EnsureSlots(ctx, date, generated); err != nil {
			utils.GetLogger().Warn("Failed to materialize slot rows", zap.String("date", date), zap.Error(err))
		}
	}
	return available, nil
}

func (s *DefaultSlotLedger) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get appointment", Err: err}
	}
	return appt, nil
}

func (s *DefaultSlotLedger) List(ctx context.Context, f ledgerRepo.Filter) ([]models.Appointment, error) {
	appts, err := s.Repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "list appointments", Err: err}
	}
	return appts, nil
}

// MarkReminderSent flips the reminder flag; flipping an already-set flag is a
// no-op that still reports success.
func (s *DefaultSlotLedger) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	found, err := s.Repo.MarkReminderSent(ctx, id)
	if err != nil {
		return false, &PersistenceError{Op: "mark reminder sent", Err: err}
	}
	return found, nil
}
