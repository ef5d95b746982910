package handler

import (
	"errors"
	"net/http"

	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type friendRequestBody struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// GetFriends returns the caller's friends as public profiles.
func (h *Handler) GetFriends(c *gin.Context) {
	friends, err := h.Storage.GetFriends(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	out := make([]models.PublicUser, 0, len(friends))
	for _, f := range friends {
		out = append(out, f.Public())
	}
	c.JSON(http.StatusOK, out)
}

// GetFriendRequests returns the caller's pending requests with sender
// profiles resolved.
func (h *Handler) GetFriendRequests(c *gin.Context) {
	requests, err := h.Storage.GetPendingRequests(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		sender, err := h.Storage.GetUserByID(req.SenderID)
		if err != nil || sender == nil {
			continue
		}
		out = append(out, gin.H{
			"id":        req.ID,
			"sender":    sender.Public(),
			"createdAt": req.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetSuggestions returns users the caller could befriend.
func (h *Handler) GetSuggestions(c *gin.Context) {
	users, err := h.Storage.SuggestUsers(currentUserID(c), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// SendFriendRequest creates a pending request and notifies the
// receiver through the relay if they are connected.
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a receiver ID"})
		return
	}

	req, err := h.Relay.SendFriendRequest(currentUserID(c), body.ReceiverID)
	if err != nil {
		c.JSON(friendErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, req)
}

// RespondToFriendRequest accepts or rejects a pending request.
func (h *Handler) RespondToFriendRequest(c *gin.Context) {
	req, err := h.Relay.RespondToFriendRequest(
		currentUserID(c),
		c.Param("requestId"),
		c.Param("action"),
	)
	if err != nil {
		c.JSON(friendErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request " + req.Status, "request": req})
}

func friendErrorStatus(err error) int {
	switch {
	case errors.Is(err, chathub.ErrUserNotFound), errors.Is(err, chathub.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, chathub.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, chathub.ErrInvalidRequest),
		errors.Is(err, chathub.ErrAlreadyFriends),
		errors.Is(err, chathub.ErrRequestExists),
		errors.Is(err, chathub.ErrInvalidAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
