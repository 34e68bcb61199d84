// Package connect waits for a backing service (database, Redis) to answer a
// ping at startup, retrying with exponential backoff.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

// Options defines connection retry behavior.
type Options struct {
	Name           string        // backend name used in logs (ex: "postgres", "redis")
	Addr           string        // address shown in logs, never a DSN with credentials
	ConnectTimeout time.Duration // total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

// PingFunc reports whether the backend is reachable.
type PingFunc func(ctx context.Context) error

// Validate ensures all durations are usable.
func (o Options) Validate() error {
	if o.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	}
	if o.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	}
	if o.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait)
	}
	if o.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	}
	if o.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold)
	}
	return nil
}

// attemptLogger handles all connection logging for one backend.
type attemptLogger struct {
	log  logger.Logger
	name string
	addr string
}

func (al *attemptLogger) start(timeout time.Duration) {
	al.log.Info("connecting to "+al.name,
		logger.String("addr", al.addr),
		logger.Duration("timeout", timeout))
}

func (al *attemptLogger) success(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		al.log.Warn("connected to "+al.name+" after retry",
			logger.String("addr", al.addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	al.log.Info("connected to "+al.name, logger.String("addr", al.addr))
}

func (al *attemptLogger) timeout(attempts int, timeout time.Duration, err error) {
	al.log.Error(al.name+" unavailable - failed to connect after timeout",
		logger.String("addr", al.addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (al *attemptLogger) retry(attempt int, remaining, nextRetry time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		al.log.Error(al.name+" still down - retrying but timeout approaching",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	case attempt <= warnThreshold:
		al.log.Warn(al.name+" connection failed, retrying",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	default:
		al.log.Error(al.name+" still unavailable - connection attempts failing",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	}
}

// WithRetry calls ping until it succeeds, ctx is cancelled or
// opts.ConnectTimeout elapses. The wait between attempts doubles up to
// opts.MaxWait.
func WithRetry(ctx context.Context, opts Options, ping PingFunc, log logger.Logger) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%s: %w", opts.Name, err)
	}

	al := &attemptLogger{log: log, name: opts.Name, addr: opts.Addr}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	al.start(opts.ConnectTimeout)
	attempt := 0
	wait := opts.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			al.success(attempt, opts.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			al.timeout(attempt, opts.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Name, opts.Addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			al.retry(attempt, timeLeft(ctx), wait, opts.WarnThreshold, err)
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
