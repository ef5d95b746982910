package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"chatlink/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence boundary of the realtime core. Lookups
// that find nothing return (nil, nil) so callers can tell "absent"
// apart from a store failure.
type Storage interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	SetUserPresence(id string, online bool, at time.Time) error
	AddFriends(userID, friendID string) error
	GetFriends(userID string) ([]models.User, error)
	SuggestUsers(userID string, limit int) ([]models.User, error)

	CreateChat(chat *models.Chat) error
	GetChatByID(id string) (*models.Chat, error)
	GetChatsForUser(userID string) ([]models.Chat, error)
	FindDirectChat(userA, userB string) (*models.Chat, error)

	SaveMessage(msg *models.Message) error
	GetChatMessages(chatID string, page, limit int) ([]models.Message, int64, error)

	CreateFriendRequest(req *models.FriendRequest) error
	GetFriendRequestByID(id string) (*models.FriendRequest, error)
	FindRequestBetween(userA, userB string) (*models.FriendRequest, error)
	GetPendingRequests(receiverID string) ([]models.FriendRequest, error)
	DeleteFriendRequest(id string) error

	AddOnlineUser(userID string) error
	RemoveOnlineUser(userID string) error
	GetOnlineUsers() ([]string, error)
}

// Service implements Storage over PostgreSQL (GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Users ---

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserPresence updates the persisted online flag and last-active
// timestamp for a user.
func (s *Service) SetUserPresence(id string, online bool, at time.Time) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online":   online,
			"last_active": at,
		}).Error
}

// AddFriends links two users symmetrically. Both friend arrays are
// updated in one transaction; an id already present is not duplicated.
func (s *Service) AddFriends(userID, friendID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := appendFriend(tx, userID, friendID); err != nil {
			return err
		}
		return appendFriend(tx, friendID, userID)
	})
}

func appendFriend(tx *gorm.DB, userID, friendID string) error {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if user.IsFriendsWith(friendID) {
		return nil
	}
	user.Friends = append(user.Friends, friendID)
	return tx.Save(&user).Error
}

func (s *Service) GetFriends(userID string) ([]models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || len(user.Friends) == 0 {
		return []models.User{}, nil
	}

	var friends []models.User
	if err := s.DB.Where("id IN ?", []string(user.Friends)).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// SuggestUsers returns users who are not the caller, not already
// friends, and have no request pending in either direction.
func (s *Service) SuggestUsers(userID string, limit int) ([]models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	var requests []models.FriendRequest
	if err := s.DB.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&requests).Error; err != nil {
		return nil, err
	}

	exclude := []string{userID}
	exclude = append(exclude, user.Friends...)
	for _, req := range requests {
		exclude = append(exclude, req.SenderID, req.ReceiverID)
	}

	var suggestions []models.User
	if err := s.DB.Where("id NOT IN ?", exclude).
		Limit(limit).
		Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// --- Chats ---

func (s *Service) CreateChat(chat *models.Chat) error {
	return s.DB.Create(chat).Error
}

func (s *Service) GetChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get chat %s: %v", id, err)
		return nil, err
	}
	return &chat, nil
}

// GetChatsForUser loads every conversation the user participates in,
// most recently active first.
func (s *Service) GetChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Where("participants @> ?", pq.StringArray{userID}).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to load chats for user %s: %v", userID, err)
		return nil, err
	}
	return chats, nil
}

// FindDirectChat returns the existing two-person chat between userA and
// userB, if any.
func (s *Service) FindDirectChat(userA, userB string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("is_group = ?", false).
		Where("participants @> ?", pq.StringArray{userA, userB}).
		Where("array_length(participants, 1) = 2").
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// --- Messages ---

// SaveMessage persists the message and points the chat's lastMessage at
// it. The generated message ID is filled in on msg.
func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).
			Where("id = ?", msg.ChatID).
			Update("last_message_id", msg.ID).Error
	})
}

// GetChatMessages returns one page of a chat's history in chronological
// order, plus the total message count for pagination.
func (s *Service) GetChatMessages(chatID string, page, limit int) ([]models.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int64
	if err := s.DB.Model(&models.Message{}).
		Where("chat_id = ?", chatID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := s.DB.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for chat %s: %v", chatID, err)
		return nil, 0, err
	}

	// Newest page first from the DB, oldest first for the client.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

// --- Friend requests ---

func (s *Service) CreateFriendRequest(req *models.FriendRequest) error {
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	return s.DB.Create(req).Error
}

func (s *Service) GetFriendRequestByID(id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindRequestBetween returns a request linking the two users in either
// direction, if one exists.
func (s *Service) FindRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) GetPendingRequests(receiverID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := s.DB.Where("receiver_id = ? AND status = ?", receiverID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Service) DeleteFriendRequest(id string) error {
	return s.DB.Delete(&models.FriendRequest{}, "id = ?", id).Error
}
