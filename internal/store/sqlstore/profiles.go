package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// ProfileUpdate lists the columns a profile update may touch. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	Passkey   *string
	FirstName *string
	LastName  *string
	ImgURL    *string
}

func (u ProfileUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{}, 6)
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("username", u.Username)
	set("email", u.Email)
	set("passkey", u.Passkey)
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("img_url", u.ImgURL)
	return cols
}

// ProfileRepository stores profiles and their follow-sets.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts p and fills in its ID and CreatedAt. A duplicate username or
// email yields domain.ErrConflict.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	rec := profileRecord{
		Username:  p.Username,
		Email:     p.Email,
		Passkey:   p.Passkey,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		ImgURL:    p.ImgURL,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return fmt.Errorf("create profile: %w", translate(err))
	}
	*p = rec.toDomain(nil)
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uint) (domain.Profile, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail matches case-insensitively; emails are stored lower-cased.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (domain.Profile, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByLogin resolves a login name that may be either a username or an email.
func (r *ProfileRepository) FindByLogin(ctx context.Context, login string) (domain.Profile, error) {
	login = strings.TrimSpace(login)
	return r.findOne(ctx, "username = ? OR email = ?", login, strings.ToLower(login))
}

func (r *ProfileRepository) findOne(ctx context.Context, query string, args ...interface{}) (domain.Profile, error) {
	var rec profileRecord
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&rec).Error; err != nil {
		return domain.Profile{}, translate(err)
	}
	following, err := r.followingOf(ctx, []uint{rec.ID})
	if err != nil {
		return domain.Profile{}, err
	}
	return rec.toDomain(following[rec.ID]), nil
}

// Exists reports whether a profile with id is stored.
func (r *ProfileRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&profileRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count profile: %w", err)
	}
	return n > 0, nil
}

// Update applies u to the profile with id.
func (r *ProfileRepository) Update(ctx context.Context, id uint, u ProfileUpdate) error {
	cols := u.columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&profileRecord{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update profile: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Page returns up to limit profiles ordered by id starting at offset.
func (r *ProfileRepository) Page(ctx context.Context, offset, limit int) ([]domain.Profile, error) {
	var recs []profileRecord
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("page profiles: %w", err)
	}
	return r.withFollowing(ctx, recs)
}

// SearchCandidates returns profiles where any fragment is a substring of the
// username, first name, last name or email. Ranking happens in the caller.
func (r *ProfileRepository) SearchCandidates(ctx context.Context, fragments []string, limit int) ([]domain.Profile, error) {
	if len(fragments) == 0 {
		return []domain.Profile{}, nil
	}

	const match = "LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(first_name) LIKE ? ESCAPE '\\' OR " +
		"LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'"

	q := r.db.WithContext(ctx).Model(&profileRecord{})
	cond := r.db.Session(&gorm.Session{NewDB: true})
	for i, frag := range fragments {
		pattern := "%" + escapeLike(strings.ToLower(frag)) + "%"
		if i == 0 {
			cond = cond.Where(match, pattern, pattern, pattern, pattern)
		} else {
			cond = cond.Or(match, pattern, pattern, pattern, pattern)
		}
	}

	var recs []profileRecord
	if err := q.Where(cond).Order("id").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return r.withFollowing(ctx, recs)
}

// Follow adds followedID to the follow-set of profileID. Following twice is a
// no-op.
func (r *ProfileRepository) Follow(ctx context.Context, profileID, followedID uint) error {
	if profileID == followedID {
		return fmt.Errorf("%w: a profile cannot follow itself", domain.ErrValidation)
	}
	rec := followRecord{ProfileID: profileID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("follow profile: %w", translate(err))
	}
	return nil
}

// Unfollow removes followedID from the follow-set. It returns false when the
// edge did not exist.
func (r *ProfileRepository) Unfollow(ctx context.Context, profileID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND followed_id = ?", profileID, followedID).
		Delete(&followRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("unfollow profile: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ProfileRepository) withFollowing(ctx context.Context, recs []profileRecord) ([]domain.Profile, error) {
	ids := make([]uint, len(recs))
	for i := range recs {
		ids[i] = recs[i].ID
	}
	following, err := r.followingOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, len(recs))
	for i := range recs {
		out[i] = recs[i].toDomain(following[recs[i].ID])
	}
	return out, nil
}

// followingOf loads the follow-sets of several profiles in one query.
func (r *ProfileRepository) followingOf(ctx context.Context, ids []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var edges []followRecord
	err := r.db.WithContext(ctx).
		Select("profile_id", "followed_id").
		Where("profile_id IN ?", ids).
		Order("profile_id, followed_id").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("load follow-sets: %w", err)
	}
	for _, e := range edges {
		out[e.ProfileID] = append(out[e.ProfileID], e.FollowedID)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
