package domain

import "time"

// Post is a piece of content owned by a profile. Posts only matter here as
// bookmark targets.
type Post struct {
	ID        uint      `json:"psid"`
	ProfileID uint      `json:"creatorId"`
	Body      string    `json:"body"`
	ImgURL    string    `json:"imgurl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
