package chathub_test

import (
	"sync"
	"time"

	"chatlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage
// interface, using testify/mock for flexible expectation setting.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SetUserPresence(id string, online bool, at time.Time) error {
	args := m.Called(id, online, at)
	return args.Error(0)
}

func (m *MockStorage) AddFriends(userID, friendID string) error {
	args := m.Called(userID, friendID)
	return args.Error(0)
}

func (m *MockStorage) GetFriends(userID string) ([]models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SuggestUsers(userID string, limit int) ([]models.User, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetChatByID(id string) (*models.Chat, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChatsForUser(userID string) ([]models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) FindDirectChat(userA, userB string) (*models.Chat, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatMessages(chatID string, page, limit int) ([]models.Message, int64, error) {
	args := m.Called(chatID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) CreateFriendRequest(req *models.FriendRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockStorage) GetFriendRequestByID(id string) (*models.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockStorage) FindRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockStorage) GetPendingRequests(receiverID string) ([]models.FriendRequest, error) {
	args := m.Called(receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockStorage) DeleteFriendRequest(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AddOnlineUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) RemoveOnlineUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetOnlineUsers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockClient is a plain test double for the chathub.Client interface.
// The send channel is buffered so hub fan-out never blocks a test, and
// Deliver/Close carry the same closed-flag guard as the WebSocket
// client so teardown races behave the same way under test.
type MockClient struct {
	userID string
	mu     sync.Mutex
	closed bool
	send   chan models.Event
}

func newMockClient(id string) *MockClient {
	return &MockClient{
		userID: id,
		send:   make(chan models.Event, 16),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }
func (c *MockClient) Run()              {}

func (c *MockClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Received drains and returns every event delivered so far.
func (c *MockClient) Received() []models.Event {
	var events []models.Event
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// recordingNotifier captures offline-participant signals.
type recordingNotifier struct {
	mu      sync.Mutex
	offline []string
}

func (n *recordingNotifier) NotifyOffline(userID string, msg *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offline = append(n.offline, userID)
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.offline...)
}
