package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

func TestNotificationCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	tests := []struct {
		name     string
		callerID uint
		in       CreateNotificationInput
		want     error
	}{
		{name: "valid", callerID: ada.ID, in: CreateNotificationInput{ToProfileID: bob.ID, Kind: "follow", Message: "ada followed you"}},
		{name: "missing recipient", callerID: ada.ID, in: CreateNotificationInput{Kind: "follow"}, want: domain.ErrValidation},
		{name: "missing sender", callerID: 0, in: CreateNotificationInput{ToProfileID: bob.ID, Kind: "follow"}, want: domain.ErrValidation},
		{name: "unknown recipient", callerID: ada.ID, in: CreateNotificationInput{ToProfileID: 9999, Kind: "follow"}, want: domain.ErrValidation},
		{name: "missing kind", callerID: ada.ID, in: CreateNotificationInput{ToProfileID: bob.ID}, want: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := f.notifications.Create(ctx, tt.callerID, tt.in)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("Create() error = %v, want %v", err, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if n.ID == 0 || n.FromProfileID != ada.ID || n.Read {
				t.Errorf("Create() = %+v", n)
			}
		})
	}

	all, err := f.notifications.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListAll() = %d notifications, want 1", len(all))
	}
}

func TestNotificationUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	cid := f.register(t, "cid", "cid@example.com")

	n, err := f.notifications.Create(ctx, ada.ID, CreateNotificationInput{ToProfileID: bob.ID, Kind: "message", Message: "hi"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	read := true
	if _, err := f.notifications.Update(ctx, ada.ID, n.ID, UpdateNotificationInput{Read: &read}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() by sender error = %v, want ErrNotFound", err)
	}

	got, err := f.notifications.Update(ctx, bob.ID, n.ID, UpdateNotificationInput{Read: &read})
	if err != nil {
		t.Fatalf("Update() by recipient error = %v", err)
	}
	if !got.Read || got.Message != "hi" {
		t.Errorf("Update() = %+v, want read with message kept", got)
	}

	for _, caller := range []uint{ada.ID, bob.ID} {
		if _, err := f.notifications.Get(ctx, caller, n.ID); err != nil {
			t.Errorf("Get() by %d error = %v", caller, err)
		}
	}
	if _, err := f.notifications.Get(ctx, cid.ID, n.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() by stranger error = %v, want ErrNotFound", err)
	}
	if _, err := f.notifications.Update(ctx, bob.ID, 9999, UpdateNotificationInput{Read: &read}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	inbox, err := f.notifications.ListByRecipient(ctx, bob.ID)
	if err != nil || len(inbox) != 1 {
		t.Errorf("ListByRecipient() = %v, %v; want 1 notification", inbox, err)
	}
}

func TestNotificationPruneRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	read := true
	for i := 0; i < 2; i++ {
		n, err := f.notifications.Create(ctx, ada.ID, CreateNotificationInput{ToProfileID: bob.ID, Kind: "message"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if i == 0 {
			if _, err := f.notifications.Update(ctx, bob.ID, n.ID, UpdateNotificationInput{Read: &read}); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
		}
	}

	// Nothing is old enough yet.
	if n, err := f.notifications.PruneRead(ctx, time.Hour); err != nil || n != 0 {
		t.Fatalf("PruneRead(now) = %d, %v; want 0", n, err)
	}

	f.notifications.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err := f.notifications.PruneRead(ctx, time.Hour)
	if err != nil {
		t.Fatalf("PruneRead() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PruneRead() = %d, want 1", n)
	}

	left, _ := f.notifications.ListByRecipient(ctx, bob.ID)
	if len(left) != 1 || left[0].Read {
		t.Errorf("remaining = %+v, want the unread notification", left)
	}
}
