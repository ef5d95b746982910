package models_test

import (
	"testing"

	"chatlink/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	user := &models.User{Username: "alice"}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	_, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr)
}

func TestUserBeforeCreate_KeepsExistingID(t *testing.T) {
	user := &models.User{ID: "fixed-id"}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, "fixed-id", user.ID)
}

func TestUser_IsFriendsWith(t *testing.T) {
	user := &models.User{Friends: pq.StringArray{"user_B", "user_C"}}

	assert.True(t, user.IsFriendsWith("user_B"))
	assert.False(t, user.IsFriendsWith("user_D"))
}

func TestUser_PublicStripsPrivateFields(t *testing.T) {
	user := &models.User{
		ID:           "user_A",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "secret-hash",
		ProfilePic:   "pic.png",
		IsOnline:     true,
	}

	pub := user.Public()
	assert.Equal(t, "user_A", pub.ID)
	assert.Equal(t, "alice", pub.Username)
	assert.Equal(t, "pic.png", pub.ProfilePic)
	assert.True(t, pub.IsOnline)
}

func TestChat_HasParticipant(t *testing.T) {
	chat := &models.Chat{Participants: pq.StringArray{"user_A", "user_B"}}

	assert.True(t, chat.HasParticipant("user_A"))
	assert.False(t, chat.HasParticipant("user_C"))
}
