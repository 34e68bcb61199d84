package domain

import (
	"fmt"
	"time"
)

// Notification is a message from one profile to another.
type Notification struct {
	ID            uint      `json:"id"`
	FromProfileID uint      `json:"fromProfileId"`
	ToProfileID   uint      `json:"toProfileId"`
	Kind          string    `json:"kind"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate rejects a notification whose sender or recipient is missing.
func (n *Notification) Validate() error {
	if n.FromProfileID == 0 {
		return fmt.Errorf("%w: notification sender is required", ErrValidation)
	}
	if n.ToProfileID == 0 {
		return fmt.Errorf("%w: notification recipient is required", ErrValidation)
	}
	return nil
}
