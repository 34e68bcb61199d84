package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// BookmarkRepository stores (profile, post) bookmark pairs.
type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Find returns the bookmark for the pair or domain.ErrNotFound.
func (r *BookmarkRepository) Find(ctx context.Context, profileID, postID uint) (domain.Bookmark, error) {
	var rec bookmarkRecord
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Take(&rec).Error
	if err != nil {
		return domain.Bookmark{}, translate(err)
	}
	return rec.toDomain(), nil
}

// InsertIfAbsent inserts the pair unless it already exists. The conflict
// target is the unique index, so concurrent callers for the same pair insert
// exactly one row; the others get inserted == false.
func (r *BookmarkRepository) InsertIfAbsent(ctx context.Context, profileID, postID uint) (b domain.Bookmark, inserted bool, err error) {
	rec := bookmarkRecord{ProfileID: profileID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&rec)
	if res.Error != nil {
		return domain.Bookmark{}, false, fmt.Errorf("insert bookmark: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.Bookmark{}, false, nil
	}
	return rec.toDomain(), true, nil
}

// Delete removes the pair and reports whether a row was deleted.
func (r *BookmarkRepository) Delete(ctx context.Context, profileID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Delete(&bookmarkRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete bookmark: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the pair is bookmarked.
func (r *BookmarkRepository) Exists(ctx context.Context, profileID, postID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookmarkRecord{}).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count bookmark: %w", err)
	}
	return n > 0, nil
}

// ListPosts returns the posts bookmarked by profileID in bookmark order.
func (r *BookmarkRepository) ListPosts(ctx context.Context, profileID uint) ([]domain.Post, error) {
	var recs []postRecord
	err := r.db.WithContext(ctx).
		Model(&postRecord{}).
		Select("posts.*").
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.profile_id = ?", profileID).
		Order("bookmarks.id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarked posts: %w", err)
	}
	posts := make([]domain.Post, len(recs))
	for i := range recs {
		posts[i] = recs[i].toDomain()
	}
	return posts, nil
}

// CountByPost returns how many profiles bookmarked postID.
func (r *BookmarkRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&bookmarkRecord{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return n, nil
}

// CountPair returns the number of rows stored for the pair. It is at most one.
func (r *BookmarkRepository) CountPair(ctx context.Context, profileID, postID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookmarkRecord{}).
		Where("profile_id = ? AND post_id = ?", profileID, postID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count bookmark pair: %w", err)
	}
	return n, nil
}
