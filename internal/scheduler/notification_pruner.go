package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

// Pruner deletes read notifications older than a retention window.
type Pruner interface {
	PruneRead(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationPruner periodically removes read notifications that have not
// been touched for longer than the retention window.
type NotificationPruner struct {
	pruner        Pruner
	logger        logger.Logger
	interval      time.Duration
	retention     time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewNotificationPruner creates a pruner. manualTrigger may be nil.
func NewNotificationPruner(
	pruner Pruner,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
	manualTrigger chan struct{},
) *NotificationPruner {
	return &NotificationPruner{
		pruner:        pruner,
		logger:        log,
		interval:      interval,
		retention:     retention,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs one collection immediately, then one per interval and one per
// manual trigger until Stop is called or ctx is done.
func (np *NotificationPruner) Start(ctx context.Context) error {
	if np.interval <= 0 {
		return fmt.Errorf("notification prune interval must be positive, got %s", np.interval)
	}

	np.logger.Info("starting notification pruner",
		logger.Duration("interval", np.interval),
		logger.Duration("retention", np.retention))

	if _, err := np.Collect(ctx); err != nil {
		np.logger.Error("initial notification prune failed", logger.Error(err))
	}

	ticker := time.NewTicker(np.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				np.run(ctx)
			case <-np.manualTrigger:
				np.logger.Info("manual notification prune triggered")
				np.run(ctx)
			case <-np.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner
func (np *NotificationPruner) Stop() {
	close(np.stopCh)
}

func (np *NotificationPruner) run(ctx context.Context) {
	if _, err := np.Collect(ctx); err != nil {
		np.logger.Error("notification prune failed", logger.Error(err))
	}
}

// Collect deletes every read notification older than the retention window
// and reports how many went away.
func (np *NotificationPruner) Collect(ctx context.Context) (int64, error) {
	n, err := np.pruner.PruneRead(ctx, np.retention)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		np.logger.Info("pruned read notifications", logger.Int64("deleted", n))
	} else {
		np.logger.Debug("no read notifications to prune")
	}
	return n, nil
}
