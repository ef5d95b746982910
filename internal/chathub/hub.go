package chathub

import (
	"encoding/json"
	"log"

	"chatlink/backend/internal/models"
)

// Inbound couples a decoded client frame with its origin connection.
type Inbound struct {
	Client Client
	Event  models.Event
}

// Hub owns the connection lifecycle and dispatches inbound WebSocket
// events to the relay. Registration, teardown and event handling all
// funnel through the single Run goroutine; the relay itself is also
// called directly by HTTP handlers, which is why registry and room
// state carry their own locks.
type Hub struct {
	Registry *Registry
	Rooms    *Rooms
	Relay    *Relay

	RegisterCh   chan Client
	UnregisterCh chan Client
	InboundCh    chan Inbound

	// generations maps each live client to its registry token. Only
	// touched from the Run goroutine.
	generations map[Client]uint64
}

func NewHub(reg *Registry, rooms *Rooms, relay *Relay) *Hub {
	return &Hub{
		Registry:     reg,
		Rooms:        rooms,
		Relay:        relay,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		InboundCh:    make(chan Inbound),
		generations:  make(map[Client]uint64),
	}
}

// Run is the hub's dispatch loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	log.Println("Chat hub started.")
	for {
		select {
		case c := <-h.RegisterCh:
			h.handleRegister(c)
		case c := <-h.UnregisterCh:
			h.handleUnregister(c)
		case in := <-h.InboundCh:
			h.dispatch(in)
		}
	}
}

func (h *Hub) handleRegister(c Client) {
	userID := c.GetUserID()
	h.generations[c] = h.Registry.Register(userID, c)
	h.Relay.JoinRooms(c)
	h.Relay.HandleConnect(userID)
	log.Printf("User connected: %s", userID)
}

func (h *Hub) handleUnregister(c Client) {
	gen, known := h.generations[c]
	if !known {
		return
	}
	delete(h.generations, c)

	userID := c.GetUserID()
	// Compare-and-delete: if a newer connection superseded this one,
	// leave its registry entry alone and stay silent about presence.
	if h.Registry.Remove(userID, gen) {
		h.Relay.HandleDisconnect(userID)
		log.Printf("User disconnected: %s", userID)
	}
	h.Rooms.LeaveAll(c)
	c.Close()
}

// dispatch routes one inbound frame by event name. A frame whose
// payload does not decode is rejected here; one event's failure never
// touches another connection.
func (h *Hub) dispatch(in Inbound) {
	userID := in.Client.GetUserID()

	switch in.Event.Name {
	case models.EventJoinChat:
		p, ok := decodeChatRef(in, userID)
		if !ok {
			return
		}
		h.Rooms.Join(p.ChatID, in.Client)

	case models.EventLeaveChat:
		p, ok := decodeChatRef(in, userID)
		if !ok {
			return
		}
		h.Rooms.Leave(p.ChatID, in.Client)

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err := json.Unmarshal(in.Event.Data, &p); err != nil || p.ChatID == "" {
			log.Printf("WARNING: Malformed %s payload from user %s", in.Event.Name, userID)
			return
		}
		if _, err := h.Relay.SendMessage(userID, p); err != nil {
			log.Printf("ERROR: Failed to relay message from user %s: %v", userID, err)
		}

	case models.EventTyping:
		p, ok := decodeChatRef(in, userID)
		if !ok {
			return
		}
		h.Relay.Typing(in.Client, p.ChatID)

	case models.EventStopTyping:
		p, ok := decodeChatRef(in, userID)
		if !ok {
			return
		}
		h.Relay.StopTyping(in.Client, p.ChatID)

	case models.EventSendFriendRequest:
		var p models.SendFriendRequestPayload
		if err := json.Unmarshal(in.Event.Data, &p); err != nil || p.ReceiverID == "" {
			log.Printf("WARNING: Malformed %s payload from user %s", in.Event.Name, userID)
			return
		}
		if _, err := h.Relay.SendFriendRequest(userID, p.ReceiverID); err != nil {
			log.Printf("ERROR: Failed to send friend request from user %s: %v", userID, err)
		}

	case models.EventRespondToFriendRequest:
		var p models.RespondToFriendRequestPayload
		if err := json.Unmarshal(in.Event.Data, &p); err != nil || p.RequestID == "" {
			log.Printf("WARNING: Malformed %s payload from user %s", in.Event.Name, userID)
			return
		}
		if _, err := h.Relay.RespondToFriendRequest(userID, p.RequestID, p.Action); err != nil {
			log.Printf("ERROR: Failed to resolve friend request %s: %v", p.RequestID, err)
		}

	default:
		log.Printf("WARNING: Unknown event %q from user %s, ignored", in.Event.Name, userID)
	}
}

func decodeChatRef(in Inbound, userID string) (models.ChatRefPayload, bool) {
	var p models.ChatRefPayload
	if err := json.Unmarshal(in.Event.Data, &p); err != nil || p.ChatID == "" {
		log.Printf("WARNING: Malformed %s payload from user %s", in.Event.Name, userID)
		return p, false
	}
	return p, true
}
