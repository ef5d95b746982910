package handler

import (
	"net/http"
	"strconv"
	"strings"

	"chatlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type createChatRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// GetChats returns the caller's conversations, most recently active
// first.
func (h *Handler) GetChats(c *gin.Context) {
	chats, err := h.Storage.GetChatsForUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching chats"})
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CreateChat returns the existing direct chat with the given user, or
// creates a new one.
func (h *Handler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a user ID"})
		return
	}
	userID := currentUserID(c)

	existing, err := h.Storage.FindDirectChat(userID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating chat"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	chat := &models.Chat{
		Participants: pq.StringArray{userID, req.UserID},
		IsGroup:      false,
	}
	if err := h.Storage.CreateChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating chat"})
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// GetChatMessages returns one page of a conversation's history. Only
// participants may read it.
func (h *Handler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chatId")
	userID := currentUserID(c)

	chat, err := h.Storage.GetChatByID(chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching messages"})
		return
	}
	if chat == nil || !chat.HasParticipant(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	messages, total, err := h.Storage.GetChatMessages(chatID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching messages"})
		return
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": gin.H{
			"current": page,
			"limit":   limit,
			"total":   total,
			"pages":   pages,
		},
	})
}

// SendMessage is the HTTP send path. It reuses the relay, so the
// message is broadcast to the conversation room exactly as a WebSocket
// send would be.
func (h *Handler) SendMessage(c *gin.Context) {
	var p models.SendMessagePayload
	if err := c.ShouldBindJSON(&p); err != nil || p.ChatID == "" || strings.TrimSpace(p.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide chat ID and content"})
		return
	}

	msg, err := h.Relay.SendMessage(currentUserID(c), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending message"})
		return
	}
	if msg == nil {
		// Relay dropped it: unknown chat or non-participant sender.
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}
