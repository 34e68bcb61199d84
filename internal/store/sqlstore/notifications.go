package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// NotificationRepository stores notifications between profiles.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts n and fills in ID and timestamps.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	rec := notificationRecord{
		FromProfileID: n.FromProfileID,
		ToProfileID:   n.ToProfileID,
		Kind:          n.Kind,
		Message:       n.Message,
		Read:          n.Read,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return fmt.Errorf("create notification: %w", translate(err))
	}
	*n = rec.toDomain()
	return nil
}

// Update writes the mutable fields of n (kind, message, read).
func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	res := r.db.WithContext(ctx).Model(&notificationRecord{}).
		Where("id = ?", n.ID).
		Updates(map[string]interface{}{
			"kind":    n.Kind,
			"message": n.Message,
			"read":    n.Read,
		})
	if res.Error != nil {
		return fmt.Errorf("update notification: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint) (domain.Notification, error) {
	var rec notificationRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return domain.Notification{}, translate(err)
	}
	return rec.toDomain(), nil
}

func (r *NotificationRepository) ListAll(ctx context.Context) ([]domain.Notification, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, profileID uint) ([]domain.Notification, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("to_profile_id = ?", profileID))
}

func (r *NotificationRepository) list(_ context.Context, q *gorm.DB) ([]domain.Notification, error) {
	var recs []notificationRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, len(recs))
	for i := range recs {
		out[i] = recs[i].toDomain()
	}
	return out, nil
}

// DeleteReadBefore removes read notifications last updated before cutoff and
// returns how many were deleted.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(map[string]interface{}{"read": true}).
		Where("updated_at < ?", cutoff.UTC()).
		Delete(&notificationRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
