package chathub

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chatlink/backend/internal/models"
	"chatlink/backend/internal/storage"

	"github.com/lib/pq"
)

// Friend-request outcomes surfaced to the HTTP routes. The WebSocket
// path only logs them.
var (
	ErrInvalidRequest  = errors.New("invalid friend request")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrRequestExists   = errors.New("friend request already exists")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotAuthorized   = errors.New("not authorized to respond to this request")
	ErrInvalidAction   = errors.New("invalid action")
)

// Relay validates, persists and fans out domain events. It is shared
// by the hub's WebSocket dispatch and the HTTP handlers, so every
// method is safe for concurrent use.
type Relay struct {
	Registry *Registry
	Rooms    *Rooms
	Storage  storage.Storage
	Notifier Notifier
}

func NewRelay(reg *Registry, rooms *Rooms, s storage.Storage, n Notifier) *Relay {
	if n == nil {
		n = LogNotifier{}
	}
	return &Relay{
		Registry: reg,
		Rooms:    rooms,
		Storage:  s,
		Notifier: n,
	}
}

// sendTo targets a single user. The registry decides whether the user
// counts as reachable; delivery then goes through the personal room so
// a connection mid-handover still sees the event. Returns false if the
// user has no live connection, which is a normal outcome.
func (r *Relay) sendTo(userID string, ev models.Event) bool {
	c, ok := r.Registry.Lookup(userID)
	if !ok {
		return false
	}
	if members := r.Rooms.Members(userID); len(members) > 0 {
		for _, m := range members {
			m.Deliver(ev)
		}
		return true
	}
	c.Deliver(ev)
	return true
}

// --- Room membership ---

// JoinRooms joins a freshly registered client to its personal room and
// to one room per conversation the user participates in.
func (r *Relay) JoinRooms(c Client) {
	r.Rooms.Join(c.GetUserID(), c)

	chats, err := r.Storage.GetChatsForUser(c.GetUserID())
	if err != nil {
		log.Printf("ERROR: Failed to load chats for user %s: %v", c.GetUserID(), err)
		return
	}
	for _, chat := range chats {
		r.Rooms.Join(chat.ID, c)
	}
}

// --- Presence ---

// HandleConnect persists the online transition and announces it to
// every friend with a live connection.
func (r *Relay) HandleConnect(userID string) {
	r.broadcastPresence(userID, models.StatusOnline)
}

// HandleDisconnect is the symmetric offline transition.
func (r *Relay) HandleDisconnect(userID string) {
	r.broadcastPresence(userID, models.StatusOffline)
}

func (r *Relay) broadcastPresence(userID, status string) {
	online := status == models.StatusOnline
	if err := r.Storage.SetUserPresence(userID, online, time.Now()); err != nil {
		log.Printf("ERROR: Failed to persist %s status for user %s: %v", status, userID, err)
		return
	}

	// Mirror to Redis for diagnostics; routing never depends on it.
	var mirrorErr error
	if online {
		mirrorErr = r.Storage.AddOnlineUser(userID)
	} else {
		mirrorErr = r.Storage.RemoveOnlineUser(userID)
	}
	if mirrorErr != nil {
		log.Printf("WARNING: Failed to mirror presence for user %s: %v", userID, mirrorErr)
	}

	user, err := r.Storage.GetUserByID(userID)
	if err != nil || user == nil {
		log.Printf("ERROR: Failed to load user %s for presence fan-out: %v", userID, err)
		return
	}

	ev, err := models.NewEvent(models.EventUserStatus, models.UserStatusPayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	for _, friendID := range user.Friends {
		r.sendTo(friendID, ev)
	}
}

// --- Messages ---

// SendMessage validates, persists and broadcasts one chat message, and
// returns the populated message so the HTTP send path can echo it. A
// nil message with a nil error means the event was dropped: blank
// content, unknown chat, or a sender who is not a participant.
func (r *Relay) SendMessage(senderID string, p models.SendMessagePayload) (*models.NewMessagePayload, error) {
	if strings.TrimSpace(p.Content) == "" {
		return nil, nil
	}

	chat, err := r.Storage.GetChatByID(p.ChatID)
	if err != nil {
		log.Printf("ERROR: Failed to load chat %s: %v", p.ChatID, err)
		return nil, err
	}
	if chat == nil || !chat.HasParticipant(senderID) {
		// Fail closed. The sender gets no error, only the missing echo.
		log.Printf("WARNING: User %s is not a participant of chat %s, message dropped", senderID, p.ChatID)
		return nil, nil
	}

	msgType := p.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	msg := &models.Message{
		ChatID:      chat.ID,
		SenderID:    senderID,
		Content:     p.Content,
		MessageType: msgType,
		FileURL:     p.FileURL,
		ReadBy:      pq.StringArray{senderID},
	}
	if err := r.Storage.SaveMessage(msg); err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", chat.ID, err)
		return nil, err
	}

	// The message is persisted at this point, so a missing sender row
	// is an error, not a not-found drop.
	sender, err := r.Storage.GetUserByID(senderID)
	if err == nil && sender == nil {
		err = fmt.Errorf("sender %s not found after saving message %s", senderID, msg.ID)
	}
	if err != nil {
		log.Printf("ERROR: Failed to load sender %s for message broadcast: %v", senderID, err)
		return nil, err
	}

	populated := &models.NewMessagePayload{Message: *msg, Sender: sender.Public()}
	ev, err := models.NewEvent(models.EventNewMessage, populated)
	if err != nil {
		return nil, err
	}
	// The sender receives its own echo so multi-device clients can
	// reconcile optimistic messages.
	r.Rooms.Broadcast(chat.ID, ev)

	for _, participantID := range chat.Participants {
		if participantID == senderID {
			continue
		}
		if _, connected := r.Registry.Lookup(participantID); !connected {
			r.Notifier.NotifyOffline(participantID, msg)
		}
	}
	return populated, nil
}

// Typing relays an ephemeral typing signal to everyone else in the
// room. Nothing is persisted and drops are tolerated.
func (r *Relay) Typing(c Client, chatID string) {
	r.relayTyping(c, chatID, models.EventUserTyping)
}

func (r *Relay) StopTyping(c Client, chatID string) {
	r.relayTyping(c, chatID, models.EventUserStopTyping)
}

func (r *Relay) relayTyping(c Client, chatID, name string) {
	// Membership is checked against room state, not the store: only a
	// client that joined the room may signal into it.
	if !r.Rooms.Contains(chatID, c) {
		return
	}
	ev, err := models.NewEvent(name, models.TypingPayload{
		ChatID: chatID,
		UserID: c.GetUserID(),
	})
	if err != nil {
		return
	}
	r.Rooms.BroadcastExcept(chatID, ev, c)
}

// --- Friend events ---

// SendFriendRequest persists a new pending request and notifies the
// receiver if connected. Validation matches the HTTP friends route: no
// self-requests, no duplicates, no requests between existing friends.
func (r *Relay) SendFriendRequest(senderID, receiverID string) (*models.FriendRequest, error) {
	if receiverID == "" || receiverID == senderID {
		return nil, ErrInvalidRequest
	}

	receiver, err := r.Storage.GetUserByID(receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}
	if receiver.IsFriendsWith(senderID) {
		return nil, ErrAlreadyFriends
	}

	existing, err := r.Storage.FindRequestBetween(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestExists
	}

	req := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
	}
	if err := r.Storage.CreateFriendRequest(req); err != nil {
		return nil, err
	}

	sender, err := r.Storage.GetUserByID(senderID)
	if err != nil || sender == nil {
		log.Printf("ERROR: Failed to load sender %s for friend request notify: %v", senderID, err)
		return req, nil
	}
	ev, err := models.NewEvent(models.EventFriendRequest, models.FriendRequestPayload{
		RequestID: req.ID,
		Sender:    sender.Public(),
	})
	if err == nil {
		r.sendTo(receiverID, ev)
	}
	return req, nil
}

// RespondToFriendRequest resolves a pending request. Accepting links
// both users and notifies each with the other's profile; rejecting
// notifies the original sender. The request row is removed either way
// so the pair can exchange a new request later.
func (r *Relay) RespondToFriendRequest(responderID, requestID, action string) (*models.FriendRequest, error) {
	req, err := r.Storage.GetFriendRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.ReceiverID != responderID {
		return nil, ErrNotAuthorized
	}

	switch action {
	case "accept", models.RequestAccepted:
		if err := r.Storage.AddFriends(req.SenderID, req.ReceiverID); err != nil {
			return nil, err
		}
		req.Status = models.RequestAccepted
		r.notifyAccepted(req)

	case "reject", models.RequestRejected:
		req.Status = models.RequestRejected
		ev, err := models.NewEvent(models.EventFriendRequestRejected, models.FriendRejectedPayload{
			RequestID: req.ID,
		})
		if err == nil {
			r.sendTo(req.SenderID, ev)
		}

	default:
		return nil, ErrInvalidAction
	}

	if err := r.Storage.DeleteFriendRequest(req.ID); err != nil {
		log.Printf("ERROR: Failed to delete resolved friend request %s: %v", req.ID, err)
	}
	return req, nil
}

// notifyAccepted delivers friendRequestAccepted to both parties, each
// carrying the other party's public profile.
func (r *Relay) notifyAccepted(req *models.FriendRequest) {
	sender, serr := r.Storage.GetUserByID(req.SenderID)
	receiver, rerr := r.Storage.GetUserByID(req.ReceiverID)
	if serr != nil || rerr != nil || sender == nil || receiver == nil {
		log.Printf("ERROR: Failed to load parties of friend request %s for notify", req.ID)
		return
	}

	if ev, err := models.NewEvent(models.EventFriendRequestAccepted, models.FriendAcceptedPayload{
		User: receiver.Public(),
	}); err == nil {
		r.sendTo(req.SenderID, ev)
	}
	if ev, err := models.NewEvent(models.EventFriendRequestAccepted, models.FriendAcceptedPayload{
		User: sender.Public(),
	}); err == nil {
		r.sendTo(req.ReceiverID, ev)
	}
}
