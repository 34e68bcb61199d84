package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// PostRepository gives read access to posts and lets the seed loader add them.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts p and fills in its ID and CreatedAt.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	rec := postRecord{ProfileID: p.ProfileID, Body: p.Body, ImgURL: p.ImgURL}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return fmt.Errorf("create post: %w", translate(err))
	}
	*p = rec.toDomain()
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uint) (domain.Post, error) {
	var rec postRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return domain.Post{}, translate(err)
	}
	return rec.toDomain(), nil
}

func (r *PostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&postRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count post: %w", err)
	}
	return n > 0, nil
}

// ExistsFor reports whether profileID already owns a post with this body.
// The seed loader uses it to stay idempotent.
func (r *PostRepository) ExistsFor(ctx context.Context, profileID uint, body string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&postRecord{}).
		Where("profile_id = ? AND body = ?", profileID, body).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return n > 0, nil
}
