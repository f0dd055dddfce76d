package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"styledesk/config"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/models"
	"styledesk/services/notification"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeChannel struct {
	name string
	fail bool

	mu   sync.Mutex
	sent []string // recipient + "|" + body
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, recipient, _, body string) error {
	if f.fail {
		return errors.New("channel down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recipient+"|"+body)
	return nil
}

func (f *fakeChannel) deliveries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestScheduler(now time.Time, channels ...notification.Channel) (*Scheduler, *ledgerRepo.MemoryLedgerRepo) {
	repo := ledgerRepo.NewMemoryLedgerRepo()
	settings := config.DefaultSettings()
	settings.Timezone = "UTC"
	return &Scheduler{
		Repo:     repo,
		Settings: settings,
		Channels: channels,
		Clock:    &fakeClock{now: now},
	}, repo
}

func insertAppointment(t *testing.T, repo *ledgerRepo.MemoryLedgerRepo, id, date, timeOfDay string) {
	t.Helper()
	err := repo.InsertAppointment(context.Background(), &models.Appointment{
		ID: id, UserID: "555-0123", Name: "Ann", Service: "Haircut",
		Date: date, Time: timeOfDay,
		Status: models.StatusPending, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func TestPass_SendsWithinToleranceOnce(t *testing.T) {
	// 2024-01-16 09:05, appointment 2024-01-17 09:00: 23h55m out, inside the
	// 30-minute tolerance of the 24h threshold.
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if len(sms.deliveries()) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sms.deliveries()))
	}
	if !strings.Contains(sms.deliveries()[0], "tomorrow") {
		t.Fatalf("expected 'tomorrow' phrasing, got %q", sms.deliveries()[0])
	}

	appt, _ := repo.GetAppointment(context.Background(), "a1")
	if !appt.ReminderSent {
		t.Fatal("expected reminder-sent flag set")
	}

	// A second pass moments later does not re-send.
	sched.Clock = &fakeClock{now: now.Add(2 * time.Minute)}
	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(sms.deliveries()) != 1 {
		t.Fatalf("expected no re-send, got %d deliveries", len(sms.deliveries()))
	}
}

func TestPass_OutsideToleranceSendsNothing(t *testing.T) {
	// 18 hours out: between the 24h and 2h thresholds.
	now := time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if len(sms.deliveries()) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(sms.deliveries()))
	}

	appt, _ := repo.GetAppointment(context.Background(), "a1")
	if appt.ReminderSent {
		t.Fatal("reminder-sent flag set outside any threshold")
	}
}

func TestPass_ConcurrentCallers(t *testing.T) {
	// The ticker goroutine and the run endpoint may sweep at the same time;
	// both resolve the business timezone through the same scheduler.
	now := time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- sched.Pass(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("pass: %v", err)
		}
	}
	if len(sms.deliveries()) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(sms.deliveries()))
	}
}

func TestPass_FullFailureLeavesFlagFalse(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms", fail: true}
	sched, repo := newTestScheduler(now, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}

	appt, _ := repo.GetAppointment(context.Background(), "a1")
	if appt.ReminderSent {
		t.Fatal("flag must stay false when every channel fails")
	}

	// The channel recovers; the next pass inside the window retries.
	sms.fail = false
	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	appt, _ = repo.GetAppointment(context.Background(), "a1")
	if !appt.ReminderSent || len(sms.deliveries()) != 1 {
		t.Fatalf("expected successful retry, sent=%v deliveries=%d", appt.ReminderSent, len(sms.deliveries()))
	}
}

func TestPass_PartialSuccessMarksSent(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	broken := &fakeChannel{name: "webhook", fail: true}
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, broken, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}
	appt, _ := repo.GetAppointment(context.Background(), "a1")
	if !appt.ReminderSent {
		t.Fatal("one successful channel should mark the reminder sent")
	}
}

func TestPass_EmailUsesCustomerAddress(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	email := &fakeChannel{name: "email"}
	sched, repo := newTestScheduler(now, email)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	// Without a directory entry the email channel is skipped entirely, which
	// counts as a full failure: the flag stays false.
	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if len(email.deliveries()) != 0 {
		t.Fatalf("expected no deliveries without an address, got %d", len(email.deliveries()))
	}

	err := repo.UpsertCustomer(context.Background(), &models.Customer{
		UserID: "555-0123", Name: "Ann", Email: "ann@example.com", CreatedAt: now, LastActive: now,
	})
	if err != nil {
		t.Fatalf("upsert customer: %v", err)
	}
	if err := sched.Pass(context.Background()); err != nil {
		t.Fatalf("pass: %v", err)
	}
	deliveries := email.deliveries()
	if len(deliveries) != 1 || !strings.HasPrefix(deliveries[0], "ann@example.com|") {
		t.Fatalf("expected delivery to the customer address, got %v", deliveries)
	}
}

func TestRunForAppointment(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	// A week out: no threshold applies, the debug hook sends anyway.
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")

	if err := sched.RunForAppointment(context.Background(), "a1"); err != nil {
		t.Fatalf("run for appointment: %v", err)
	}
	if len(sms.deliveries()) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sms.deliveries()))
	}

	if err := sched.RunForAppointment(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error for an unknown id")
	}
}

func TestDailySummary(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	sched.Settings.AdminPhone = "555-0001"

	insertAppointment(t, repo, "a1", "2024-01-17", "2:00 PM")
	insertAppointment(t, repo, "a2", "2024-01-17", "9:00 AM")
	insertAppointment(t, repo, "a3", "2024-01-18", "9:00 AM") // not tomorrow

	if err := sched.DailySummary(context.Background()); err != nil {
		t.Fatalf("daily summary: %v", err)
	}
	deliveries := sms.deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected one summary, got %d", len(deliveries))
	}
	summary := deliveries[0]
	if !strings.HasPrefix(summary, "555-0001|") {
		t.Fatalf("expected delivery to the admin, got %q", summary)
	}
	if !strings.Contains(summary, "2 appointments") {
		t.Fatalf("expected two appointments in the summary, got %q", summary)
	}
	// Ascending by time of day.
	if strings.Index(summary, "9:00 AM") > strings.Index(summary, "2:00 PM") {
		t.Fatalf("expected times sorted ascending, got %q", summary)
	}
	if strings.Contains(summary, "2024-01-18") {
		t.Fatalf("summary leaked another day's appointment: %q", summary)
	}
}

func TestGetStats(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	sms := &fakeChannel{name: "sms"}
	sched, repo := newTestScheduler(now, sms)
	insertAppointment(t, repo, "a1", "2024-01-17", "9:00 AM")
	insertAppointment(t, repo, "a2", "2024-01-17", "2:00 PM")

	if _, err := repo.MarkReminderSent(context.Background(), "a1"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	stats, err := sched.GetStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Active != 2 || stats.Sent != 1 || stats.Pending != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)
	sched, _ := newTestScheduler(now)
	sched.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
