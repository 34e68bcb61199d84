package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
)

// CreateNotificationInput is the payload of a new notification. The sender is
// always the caller.
type CreateNotificationInput struct {
	ToProfileID uint   `json:"toProfileId" validate:"required"`
	Kind        string `json:"kind" validate:"required,max=32"`
	Message     string `json:"message" validate:"max=1024"`
}

// UpdateNotificationInput lists what the recipient may change.
type UpdateNotificationInput struct {
	Kind    *string `json:"kind" validate:"omitempty,max=32"`
	Message *string `json:"message" validate:"omitempty,max=1024"`
	Read    *bool   `json:"read"`
}

type NotificationService struct {
	notifications NotificationStore
	profiles      ProfileResolver
	metrics       *metrics.Metrics
	log           logger.Logger
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, profiles ProfileResolver, m *metrics.Metrics, log logger.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		profiles:      profiles,
		metrics:       m,
		log:           log.Named("notifications"),
		now:           time.Now,
	}
}

// Create stores a notification from callerID. Both ends must resolve to
// stored profiles; nothing is defaulted.
func (s *NotificationService) Create(ctx context.Context, callerID uint, in CreateNotificationInput) (domain.Notification, error) {
	n := domain.Notification{
		FromProfileID: callerID,
		ToProfileID:   in.ToProfileID,
		Kind:          in.Kind,
		Message:       in.Message,
	}
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.Notification{}, err
	}

	for _, id := range []uint{n.FromProfileID, n.ToProfileID} {
		ok, err := s.profiles.Exists(ctx, id)
		if err != nil {
			return domain.Notification{}, internal(s.log, "create notification", err)
		}
		if !ok {
			return domain.Notification{}, fmt.Errorf("%w: profile %d does not exist", domain.ErrValidation, id)
		}
	}

	if err := s.notifications.Create(ctx, &n); err != nil {
		if errors.Is(err, domain.ErrRejected) {
			return domain.Notification{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return domain.Notification{}, passthrough(s.log, "create notification", err)
	}
	return n, nil
}

// Update applies in to notification id. Only the recipient may update it;
// anyone else sees ErrNotFound.
func (s *NotificationService) Update(ctx context.Context, callerID, id uint, in UpdateNotificationInput) (domain.Notification, error) {
	if err := validateInput(in); err != nil {
		return domain.Notification{}, err
	}

	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, passthrough(s.log, "update notification", err)
	}
	if n.ToProfileID != callerID {
		return domain.Notification{}, fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}

	if in.Kind != nil {
		n.Kind = *in.Kind
	}
	if in.Message != nil {
		n.Message = *in.Message
	}
	if in.Read != nil {
		n.Read = *in.Read
	}
	if err := s.notifications.Update(ctx, &n); err != nil {
		return domain.Notification{}, passthrough(s.log, "update notification", err)
	}
	return s.notifications.FindByID(ctx, id)
}

// Get returns notification id when callerID sent or received it.
func (s *NotificationService) Get(ctx context.Context, callerID, id uint) (domain.Notification, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, passthrough(s.log, "get notification", err)
	}
	if n.ToProfileID != callerID && n.FromProfileID != callerID {
		return domain.Notification{}, fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}
	return n, nil
}

func (s *NotificationService) ListAll(ctx context.Context) ([]domain.Notification, error) {
	out, err := s.notifications.ListAll(ctx)
	if err != nil {
		return nil, internal(s.log, "list notifications", err)
	}
	return out, nil
}

func (s *NotificationService) ListByRecipient(ctx context.Context, profileID uint) ([]domain.Notification, error) {
	out, err := s.notifications.ListByRecipient(ctx, profileID)
	if err != nil {
		return nil, internal(s.log, "list notifications", err)
	}
	return out, nil
}

// PruneRead deletes read notifications not touched for longer than retention.
func (s *NotificationService) PruneRead(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	n, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, internal(s.log, "prune notifications", err)
	}
	s.metrics.Pruned(n)
	return n, nil
}
