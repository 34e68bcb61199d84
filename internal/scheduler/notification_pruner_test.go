package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

type fakePruner struct {
	mu        sync.Mutex
	calls     int
	retention time.Duration
	deleted   int64
	err       error
	called    chan struct{}
}

func (f *fakePruner) PruneRead(_ context.Context, retention time.Duration) (int64, error) {
	f.mu.Lock()
	f.calls++
	f.retention = retention
	f.mu.Unlock()
	if f.called != nil {
		f.called <- struct{}{}
	}
	return f.deleted, f.err
}

func (f *fakePruner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNotificationPruner_Collect(t *testing.T) {
	tests := []struct {
		name    string
		pruner  *fakePruner
		want    int64
		wantErr bool
	}{
		{name: "deletes", pruner: &fakePruner{deleted: 3}, want: 3},
		{name: "nothing to delete", pruner: &fakePruner{}, want: 0},
		{name: "store failure", pruner: &fakePruner{err: errors.New("boom")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := NewNotificationPruner(tt.pruner, logger.NewNop(), time.Hour, 30*24*time.Hour, nil)

			got, err := np.Collect(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Collect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Collect() = %d, want %d", got, tt.want)
			}
			if tt.pruner.retention != 30*24*time.Hour {
				t.Errorf("retention passed = %v, want 720h", tt.pruner.retention)
			}
		})
	}
}

func TestNotificationPruner_ManualTrigger(t *testing.T) {
	fake := &fakePruner{called: make(chan struct{}, 4)}
	trigger := make(chan struct{}, 1)
	np := NewNotificationPruner(fake, logger.NewNop(), time.Hour, time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := np.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer np.Stop()

	// Start collects once synchronously.
	<-fake.called
	if got := fake.count(); got != 1 {
		t.Fatalf("calls after Start() = %d, want 1", got)
	}

	trigger <- struct{}{}
	select {
	case <-fake.called:
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not run a prune")
	}
	if got := fake.count(); got != 2 {
		t.Errorf("calls after trigger = %d, want 2", got)
	}
}

func TestNotificationPruner_StartRejectsBadInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute} {
		fake := &fakePruner{}
		np := NewNotificationPruner(fake, logger.NewNop(), interval, time.Hour, nil)

		if err := np.Start(context.Background()); err == nil {
			t.Errorf("Start() with interval %v error = nil, want error", interval)
		}
		if fake.count() != 0 {
			t.Errorf("Start() with interval %v ran a prune", interval)
		}
	}
}
