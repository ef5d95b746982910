package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friend request lifecycle states.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest is a pending invitation from one user to another.
// Resolved requests are deleted so the pair can exchange a new request
// later.
type FriendRequest struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	SenderID   string    `gorm:"not null;index" json:"senderId"`
	ReceiverID string    `gorm:"not null;index" json:"receiverId"`
	Status     string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (f *FriendRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}
