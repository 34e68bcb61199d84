package sqlstore

import (
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

type profileRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:64;not null;uniqueIndex:idx_profile_username"`
	Email     string `gorm:"size:255;not null;uniqueIndex:idx_profile_email"`
	Passkey   string `gorm:"size:100;not null"`
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	ImgURL    string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileRecord) TableName() string { return "profiles" }

func (r *profileRecord) toDomain(following []uint) domain.Profile {
	if following == nil {
		following = []uint{}
	}
	return domain.Profile{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Passkey:   r.Passkey,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		ImgURL:    r.ImgURL,
		Following: following,
		CreatedAt: r.CreatedAt,
	}
}

// followRecord is one edge of the self-referential follow relation.
type followRecord struct {
	ProfileID  uint `gorm:"primaryKey;autoIncrement:false;check:chk_follow_not_self,profile_id <> followed_id"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time

	Profile  profileRecord `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Followed profileRecord `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (followRecord) TableName() string { return "profile_follows" }

type postRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ProfileID uint   `gorm:"not null;index"`
	Body      string `gorm:"type:text;not null"`
	ImgURL    string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Profile profileRecord `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

func (postRecord) TableName() string { return "posts" }

func (r *postRecord) toDomain() domain.Post {
	return domain.Post{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		Body:      r.Body,
		ImgURL:    r.ImgURL,
		CreatedAt: r.CreatedAt,
	}
}

// bookmarkRecord is unique per (profile_id, post_id); the index is what keeps
// concurrent adds from creating duplicates.
type bookmarkRecord struct {
	ID        uint `gorm:"primaryKey"`
	ProfileID uint `gorm:"not null;uniqueIndex:idx_bookmark_profile_post,priority:1"`
	PostID    uint `gorm:"not null;uniqueIndex:idx_bookmark_profile_post,priority:2;index:idx_bookmark_post"`
	CreatedAt time.Time

	Profile profileRecord `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Post    postRecord    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (bookmarkRecord) TableName() string { return "bookmarks" }

func (r *bookmarkRecord) toDomain() domain.Bookmark {
	return domain.Bookmark{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		PostID:    r.PostID,
		CreatedAt: r.CreatedAt,
	}
}

type notificationRecord struct {
	ID            uint   `gorm:"primaryKey"`
	FromProfileID uint   `gorm:"not null;index"`
	ToProfileID   uint   `gorm:"not null;index"`
	Kind          string `gorm:"size:32;not null;default:'message'"`
	Message       string `gorm:"type:text"`
	Read          bool   `gorm:"not null;default:false;index:idx_notification_read_updated,priority:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index:idx_notification_read_updated,priority:2"`

	From profileRecord `gorm:"foreignKey:FromProfileID;constraint:OnDelete:CASCADE"`
	To   profileRecord `gorm:"foreignKey:ToProfileID;constraint:OnDelete:CASCADE"`
}

func (notificationRecord) TableName() string { return "notifications" }

func (r *notificationRecord) toDomain() domain.Notification {
	return domain.Notification{
		ID:            r.ID,
		FromProfileID: r.FromProfileID,
		ToProfileID:   r.ToProfileID,
		Kind:          r.Kind,
		Message:       r.Message,
		Read:          r.Read,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
