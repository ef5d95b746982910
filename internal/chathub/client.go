package chathub

import "chatlink/backend/internal/models"

// Client is one live, authenticated connection. It abstracts the
// underlying transport so the hub and relay can be exercised in tests
// without a real WebSocket.
type Client interface {
	// GetUserID returns the id of the authenticated user. It is set
	// once at connection time and immutable for the session.
	GetUserID() string

	// Deliver queues one outbound event without blocking. It returns
	// false when the event was dropped: full send buffer or a client
	// already closed. Safe to call from any goroutine, including
	// concurrently with Close.
	Deliver(ev models.Event) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close stops the client's write pump. Idempotent; Deliver calls
	// racing a Close become drops, never panics.
	Close()
}
