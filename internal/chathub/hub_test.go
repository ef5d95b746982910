package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type hubFixture struct {
	*relayFixture
	hub *chathub.Hub
}

func newHubFixture() *hubFixture {
	f := newRelayFixture()
	return &hubFixture{
		relayFixture: f,
		hub:          chathub.NewHub(f.registry, f.rooms, f.relay),
	}
}

// expectLifecycle sets up the storage calls every connect/disconnect
// cycle makes: room joins and both presence transitions.
func (f *hubFixture) expectLifecycle(userID string, chats []models.Chat) {
	user := &models.User{ID: userID}
	f.storage.On("GetChatsForUser", userID).Return(chats, nil)
	f.storage.On("SetUserPresence", userID, mock.AnythingOfType("bool"), mock.AnythingOfType("time.Time")).Return(nil)
	f.storage.On("AddOnlineUser", userID).Return(nil)
	f.storage.On("RemoveOnlineUser", userID).Return(nil)
	f.storage.On("GetUserByID", userID).Return(user, nil)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	f := newHubFixture()
	chats := []models.Chat{{ID: "chat1", Participants: pq.StringArray{"user_A", "user_B"}}}
	f.expectLifecycle("user_A", chats)

	go f.hub.Run()

	client := newMockClient("user_A")
	f.hub.RegisterCh <- client
	time.Sleep(100 * time.Millisecond)

	got, ok := f.registry.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, client, got)
	// Personal room plus the conversation room.
	assert.Len(t, f.rooms.Members("user_A"), 1)
	assert.Len(t, f.rooms.Members("chat1"), 1)

	f.hub.UnregisterCh <- client
	time.Sleep(100 * time.Millisecond)

	_, ok = f.registry.Lookup("user_A")
	assert.False(t, ok)
	assert.Empty(t, f.rooms.Members("chat1"))
	f.storage.AssertCalled(t, "SetUserPresence", "user_A", false, mock.AnythingOfType("time.Time"))
}

// A reconnect races its predecessor's teardown: the late disconnect of
// the old connection must neither evict the new registry entry nor
// broadcast a spurious offline transition.
func TestHub_LateDisconnectOfSupersededConnection(t *testing.T) {
	f := newHubFixture()
	f.expectLifecycle("user_A", []models.Chat{})

	go f.hub.Run()

	oldClient := newMockClient("user_A")
	newClient := newMockClient("user_A")

	f.hub.RegisterCh <- oldClient
	f.hub.RegisterCh <- newClient
	time.Sleep(100 * time.Millisecond)

	f.hub.UnregisterCh <- oldClient
	time.Sleep(100 * time.Millisecond)

	got, ok := f.registry.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, newClient, got)
	f.storage.AssertNotCalled(t, "SetUserPresence", "user_A", false, mock.AnythingOfType("time.Time"))
}

func TestHub_DispatchJoinAndLeaveChat(t *testing.T) {
	f := newHubFixture()
	go f.hub.Run()

	client := newMockClient("user_A")
	data, _ := json.Marshal(models.ChatRefPayload{ChatID: "chat9"})

	f.hub.InboundCh <- chathub.Inbound{Client: client, Event: models.Event{Name: models.EventJoinChat, Data: data}}
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, f.rooms.Members("chat9"), 1)

	f.hub.InboundCh <- chathub.Inbound{Client: client, Event: models.Event{Name: models.EventLeaveChat, Data: data}}
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, f.rooms.Members("chat9"))
}

func TestHub_DispatchSendMessage(t *testing.T) {
	f := newHubFixture()
	chat := &models.Chat{ID: "chat1", Participants: pq.StringArray{"user_A", "user_B"}}
	sender := &models.User{ID: "user_A", Username: "alice"}
	f.storage.On("GetChatByID", "chat1").Return(chat, nil)
	f.storage.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	f.storage.On("GetUserByID", "user_A").Return(sender, nil)

	go f.hub.Run()

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	f.registry.Register("user_A", clientA)
	f.registry.Register("user_B", clientB)
	f.rooms.Join("chat1", clientA)
	f.rooms.Join("chat1", clientB)

	data, _ := json.Marshal(models.SendMessagePayload{ChatID: "chat1", Content: "hi"})
	f.hub.InboundCh <- chathub.Inbound{Client: clientA, Event: models.Event{Name: models.EventSendMessage, Data: data}}
	time.Sleep(100 * time.Millisecond)

	f.storage.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))
	assert.Len(t, clientB.Received(), 1)
}

func TestHub_MalformedPayloadsAreRejectedAtTheBoundary(t *testing.T) {
	f := newHubFixture()
	go f.hub.Run()

	client := newMockClient("user_A")
	malformed := []models.Event{
		{Name: models.EventSendMessage, Data: json.RawMessage(`"not an object"`)},
		{Name: models.EventSendMessage, Data: json.RawMessage(`{}`)},
		{Name: models.EventJoinChat, Data: json.RawMessage(`{"chatId": 7}`)},
		{Name: "unknownEvent", Data: json.RawMessage(`{}`)},
	}
	for _, ev := range malformed {
		f.hub.InboundCh <- chathub.Inbound{Client: client, Event: ev}
	}
	time.Sleep(100 * time.Millisecond)

	f.storage.AssertNotCalled(t, "GetChatByID", mock.Anything)
	f.storage.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestHub_TypingDispatchSkipsSender(t *testing.T) {
	f := newHubFixture()
	go f.hub.Run()

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	f.rooms.Join("chat1", clientA)
	f.rooms.Join("chat1", clientB)

	data, _ := json.Marshal(models.ChatRefPayload{ChatID: "chat1"})
	f.hub.InboundCh <- chathub.Inbound{Client: clientA, Event: models.Event{Name: models.EventTyping, Data: data}}
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, clientA.Received())
	events := clientB.Received()
	assert.Len(t, events, 1)
	assert.Equal(t, models.EventUserTyping, events[0].Name)
}
