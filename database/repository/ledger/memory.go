package ledgerRepo

import (
	"context"
	"sync"

	"styledesk/models"
)

// MemoryLedgerRepo is an in-memory LedgerRepository. It backs tests and
// storage-free development runs; the mutex around the occupancy check and
// insert gives it the same reservation atomicity as the Mongo index.
type MemoryLedgerRepo struct {
	mu           sync.Mutex
	appointments []models.Appointment
	slots        map[string]bool // "date|time" -> available
	customers    map[string]models.Customer
}

// NewMemoryLedgerRepo constructs an empty in-memory repository.
func NewMemoryLedgerRepo() *MemoryLedgerRepo {
	return &MemoryLedgerRepo{
		slots:     make(map[string]bool),
		customers: make(map[string]models.Customer),
	}
}

func slotKey(date, timeOfDay string) string {
	return date + "|" + timeOfDay
}

func (repo *MemoryLedgerRepo) InsertAppointment(_ context.Context, appt *models.Appointment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		existing := &repo.appointments[i]
		if existing.Active() && existing.Date == appt.Date && existing.Time == appt.Time {
			return ErrDuplicateSlot
		}
	}
	repo.appointments = append(repo.appointments, *appt)
	return nil
}

func (repo *MemoryLedgerRepo) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		if repo.appointments[i].ID == id {
			appt := repo.appointments[i]
			return &appt, nil
		}
	}
	return nil, nil
}

func (repo *MemoryLedgerRepo) ListAppointments(_ context.Context, f Filter) ([]models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Appointment
	for _, appt := range repo.appointments {
		if f.UserID != "" && appt.UserID != f.UserID {
			continue
		}
		if f.Status != "" && appt.Status != f.Status {
			continue
		}
		if f.Date != "" && appt.Date != f.Date {
			continue
		}
		if f.FromDate != "" && appt.Date < f.FromDate {
			continue
		}
		if f.ToDate != "" && appt.Date > f.ToDate {
			continue
		}
		out = append(out, appt)
	}
	sortBySchedule(out)
	return out, nil
}

func (repo *MemoryLedgerRepo) ActiveAt(_ context.Context, date, timeOfDay, excludeID string) (*models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		appt := repo.appointments[i]
		if appt.ID == excludeID {
			continue
		}
		if appt.Active() && appt.Date == date && appt.Time == timeOfDay {
			return &appt, nil
		}
	}
	return nil, nil
}

func (repo *MemoryLedgerRepo) ActiveOn(_ context.Context, date string) ([]models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Appointment
	for _, appt := range repo.appointments {
		if appt.Active() && appt.Date == date {
			out = append(out, appt)
		}
	}
	sortBySchedule(out)
	return out, nil
}

func (repo *MemoryLedgerRepo) UpdateStatus(_ context.Context, id, status string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		if repo.appointments[i].ID == id {
			repo.appointments[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (repo *MemoryLedgerRepo) UpdateSchedule(_ context.Context, id, date, timeOfDay, notes string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		if repo.appointments[i].ID == id {
			repo.appointments[i].Date = date
			repo.appointments[i].Time = timeOfDay
			if notes != "" {
				repo.appointments[i].Notes = notes
			}
			return true, nil
		}
	}
	return false, nil
}

func (repo *MemoryLedgerRepo) MarkReminderSent(_ context.Context, id string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.appointments {
		if repo.appointments[i].ID == id {
			repo.appointments[i].ReminderSent = true
			return true, nil
		}
	}
	return false, nil
}

func (repo *MemoryLedgerRepo) PendingReminders(_ context.Context) ([]models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Appointment
	for _, appt := range repo.appointments {
		if appt.Active() && !appt.ReminderSent {
			out = append(out, appt)
		}
	}
	sortBySchedule(out)
	return out, nil
}

func (repo *MemoryLedgerRepo) EnsureSlots(_ context.Context, date string, times []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, t := range times {
		key := slotKey(date, t)
		if _, ok := repo.slots[key]; !ok {
			repo.slots[key] = true
		}
	}
	return nil
}

func (repo *MemoryLedgerRepo) SetSlotAvailable(_ context.Context, date, timeOfDay string, available bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.slots[slotKey(date, timeOfDay)] = available
	return nil
}

func (repo *MemoryLedgerRepo) UpsertCustomer(_ context.Context, customer *models.Customer) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	existing, ok := repo.customers[customer.UserID]
	if ok {
		existing.LastActive = customer.LastActive
		if customer.Name != "" {
			existing.Name = customer.Name
		}
		repo.customers[customer.UserID] = existing
		return nil
	}
	repo.customers[customer.UserID] = *customer
	return nil
}

func (repo *MemoryLedgerRepo) GetCustomer(_ context.Context, userID string) (*models.Customer, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if customer, ok := repo.customers[userID]; ok {
		return &customer, nil
	}
	return nil, nil
}
