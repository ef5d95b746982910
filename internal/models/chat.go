package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Chat is a conversation with a fixed participant set. Direct chats
// have exactly two participants; the group fields are schema-permitted
// but the realtime core only guarantees delivery for direct chats.
type Chat struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Participants  pq.StringArray `gorm:"type:text[];not null" json:"participants"`
	IsGroup       bool           `json:"isGroup"`
	GroupName     string         `json:"groupName,omitempty"`
	GroupAdminID  string         `json:"groupAdmin,omitempty"`
	LastMessageID *string        `gorm:"index" json:"lastMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasParticipant reports whether userID takes part in this chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
