package domain

import "time"

// Profile is the public identity record of a member.
//
// Username and Email are globally unique. Following never contains the
// profile's own ID.
type Profile struct {
	ID        uint      `json:"pid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Passkey   string    `json:"-"` // bcrypt hash, never serialized
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ImgURL    string    `json:"imgurl,omitempty"`
	Following []uint    `json:"following"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsIncomplete reports whether a stored profile is missing a field every
// persisted profile must have.
func (p *Profile) IsIncomplete() bool {
	return p == nil || p.ID == 0 || p.Username == "" || p.Email == "" || p.Passkey == ""
}

// Follows reports whether id is in the follow-set.
func (p *Profile) Follows(id uint) bool {
	for _, f := range p.Following {
		if f == id {
			return true
		}
	}
	return false
}
