package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Message types understood by the relay. Only text messages are
// delivered in real time; image and file rows also carry a FileURL.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message is a single persisted chat message. Immutable after creation
// except for the ReadBy set, which starts as the sender alone.
type Message struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	ChatID      string         `gorm:"not null;index:idx_chat_created" json:"chatId"`
	SenderID    string         `gorm:"not null;index" json:"senderId"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	MessageType string         `gorm:"not null;default:text" json:"messageType"`
	FileURL     string         `json:"fileUrl,omitempty"`
	ReadBy      pq.StringArray `gorm:"type:text[]" json:"readBy"`

	CreatedAt time.Time `gorm:"index:idx_chat_created" json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
