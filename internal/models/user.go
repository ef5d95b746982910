package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a registered account. Friends holds the ids of confirmed
// friends; the presence fields are maintained by the realtime relay on
// connect and disconnect.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	ProfilePic   string         `json:"profilePic"`
	IsOnline     bool           `json:"isOnline"`
	LastActive   time.Time      `json:"lastActive"`
	Friends      pq.StringArray `gorm:"type:text[]" json:"friends"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that generates a UUID for the user if the
// ID has not been set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsFriendsWith reports whether userID is in the friend set.
func (u *User) IsFriendsWith(userID string) bool {
	for _, id := range u.Friends {
		if id == userID {
			return true
		}
	}
	return false
}

// PublicUser is the profile shape shared with other users over the wire.
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
	IsOnline   bool   `json:"isOnline"`
}

// Public strips everything other users are not allowed to see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
		IsOnline:   u.IsOnline,
	}
}
