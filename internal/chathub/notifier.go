package chathub

import (
	"log"

	"chatlink/backend/internal/models"
)

// Notifier is told about chat participants who had no live connection
// when a message arrived. Actual push delivery lives behind this
// boundary.
type Notifier interface {
	NotifyOffline(userID string, msg *models.Message)
}

// LogNotifier is the default Notifier.
// TODO: replace with a real push provider once the mobile client lands.
type LogNotifier struct{}

func (LogNotifier) NotifyOffline(userID string, msg *models.Message) {
	log.Printf("INFO: User %s is offline for chat %s, push notification pending", userID, msg.ChatID)
}
