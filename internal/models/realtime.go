package models

import "encoding/json"

// Wire event names. These are the contract with the web client: the
// hub routes inbound frames by name and ignores unknown ones.
const (
	EventJoinChat    = "joinChat"
	EventLeaveChat   = "leaveChat"
	EventSendMessage = "sendMessage"
	EventNewMessage  = "newMessage"

	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
	EventUserTyping     = "userTyping"
	EventUserStopTyping = "userStopTyping"

	EventUserStatus = "userStatus"

	EventSendFriendRequest      = "sendFriendRequest"
	EventRespondToFriendRequest = "respondToFriendRequest"
	EventFriendRequest          = "friendRequest"
	EventFriendRequestAccepted  = "friendRequestAccepted"
	EventFriendRequestRejected  = "friendRequestRejected"
)

// Presence values carried by userStatus events.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Event is the envelope every WebSocket frame carries in both
// directions. Data is decoded into the payload type matching Name; a
// frame that does not fit its payload type is rejected at the boundary.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewEvent marshals payload into an outbound envelope.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}

// Client -> server payloads.

// ChatRefPayload carries just a conversation id. Used by joinChat,
// leaveChat, typing and stopTyping.
type ChatRefPayload struct {
	ChatID string `json:"chatId"`
}

type SendMessagePayload struct {
	ChatID      string `json:"chatId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	FileURL     string `json:"fileUrl,omitempty"`
}

type SendFriendRequestPayload struct {
	ReceiverID string `json:"receiverId"`
}

type RespondToFriendRequestPayload struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

// Server -> client payloads.

// NewMessagePayload is a persisted message with the sender's public
// profile resolved, as broadcast to the conversation room.
type NewMessagePayload struct {
	Message
	Sender PublicUser `json:"sender"`
}

type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type UserStatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type FriendRequestPayload struct {
	RequestID string     `json:"requestId"`
	Sender    PublicUser `json:"sender"`
}

type FriendAcceptedPayload struct {
	User PublicUser `json:"user"`
}

type FriendRejectedPayload struct {
	RequestID string `json:"requestId"`
}
