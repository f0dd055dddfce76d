package conversation

import (
	"context"
	"testing"

	"styledesk/models"
)

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session, err := store.Get(ctx, "555-0123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.State != models.StateGreeting {
		t.Fatalf("expected fresh session in greeting, got %s", session.State)
	}

	session.State = models.StateBooking
	session.Draft = models.BookingDraft{Step: models.StepName}
	if err := store.Set(ctx, session); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "555-0123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != models.StateBooking || got.Draft.Step != models.StepName {
		t.Fatalf("unexpected session %+v", got)
	}

	// The store hands out copies; mutating one does not leak into another.
	got.Draft.Name = "Ann"
	again, _ := store.Get(ctx, "555-0123")
	if again.Draft.Name != "" {
		t.Fatal("session mutation leaked into the store")
	}

	if err := store.Clear(ctx, "555-0123"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	fresh, _ := store.Get(ctx, "555-0123")
	if fresh.State != models.StateGreeting {
		t.Fatalf("expected cleared session to restart from greeting, got %s", fresh.State)
	}
}
