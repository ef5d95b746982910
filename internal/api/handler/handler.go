package handler

import (
	"strings"

	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/storage"
	"chatlink/backend/internal/token"

	"github.com/gin-gonic/gin"
)

// Handler carries the shared dependencies for every HTTP route.
type Handler struct {
	Hub     *chathub.Hub
	Relay   *chathub.Relay
	Storage storage.Storage
	Tokens  *token.Manager
}

func NewHandler(hub *chathub.Hub, relay *chathub.Relay, s storage.Storage, tm *token.Manager) *Handler {
	return &Handler{
		Hub:     hub,
		Relay:   relay,
		Storage: s,
		Tokens:  tm,
	}
}

// bearerToken extracts the credential from the Authorization header,
// falling back to the token query parameter for browser WebSocket
// clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userId")
}
