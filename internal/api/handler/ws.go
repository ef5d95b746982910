package handler

import (
	"net/http"

	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer; the upgrade itself accepts
	// any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the bearer credential and upgrades the
// connection. A failed verification refuses the connection before any
// hub state is touched.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, err := h.Tokens.Verify(bearerToken(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:    h.Hub,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}

// GetOnlineUsers exposes the registry snapshot for diagnostics.
func (h *Handler) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.Hub.Registry.Online()})
}
