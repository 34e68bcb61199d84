package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

func fastOptions() Options {
	return Options{
		Name:           "test",
		Addr:           "localhost:0",
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := WithRetry(context.Background(), fastOptions(), ping, logger.NewNop()); err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping called %d times, want 3", calls)
	}
}

func TestWithRetryTimesOut(t *testing.T) {
	opts := fastOptions()
	opts.ConnectTimeout = 60 * time.Millisecond
	down := errors.New("connection refused")

	err := WithRetry(context.Background(), opts, func(context.Context) error { return down }, logger.NewNop())
	if !errors.Is(err, down) {
		t.Errorf("WithRetry() error = %v, want wrapped %v", err, down)
	}
}

func TestWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.ConnectTimeout = time.Minute

	start := time.Now()
	err := WithRetry(ctx, opts, func(context.Context) error { return errors.New("down") }, logger.NewNop())
	if err == nil {
		t.Fatal("WithRetry() with cancelled ctx should fail")
	}
	if time.Since(start) > time.Second {
		t.Errorf("WithRetry() ignored cancellation, took %v", time.Since(start))
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "zero connect timeout", mutate: func(o *Options) { o.ConnectTimeout = 0 }},
		{name: "zero retry interval", mutate: func(o *Options) { o.RetryInterval = 0 }},
		{name: "zero max wait", mutate: func(o *Options) { o.MaxWait = 0 }},
		{name: "zero ping timeout", mutate: func(o *Options) { o.PingTimeout = 0 }},
		{name: "negative warn threshold", mutate: func(o *Options) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fastOptions()
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}

	if err := fastOptions().Validate(); err != nil {
		t.Errorf("Validate() on valid options error = %v", err)
	}
}
