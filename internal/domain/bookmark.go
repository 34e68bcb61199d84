package domain

import "time"

// Bookmark records that a profile saved a post. There is at most one
// bookmark per (ProfileID, PostID) pair.
type Bookmark struct {
	ID        uint      `json:"id"`
	ProfileID uint      `json:"profileId"`
	PostID    uint      `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookmarkStatus tells a caller whether an add created a row or found one.
type BookmarkStatus int

const (
	BookmarkCreated BookmarkStatus = iota + 1
	BookmarkAlreadyExists
)

func (s BookmarkStatus) String() string {
	switch s {
	case BookmarkCreated:
		return "created"
	case BookmarkAlreadyExists:
		return "existing"
	default:
		return "unknown"
	}
}

// BookmarkResult is the successful outcome of adding a bookmark.
type BookmarkResult struct {
	Bookmark Bookmark
	Status   BookmarkStatus
}
