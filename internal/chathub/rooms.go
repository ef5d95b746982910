package chathub

import (
	"sync"

	"chatlink/backend/internal/models"
)

// Rooms tracks channel membership. A room is either a user's personal
// room (keyed by user id, for targeted events) or a conversation room
// (keyed by chat id, for broadcast). Rooms exist only while they have
// members.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[Client]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[Client]struct{})}
}

func (r *Rooms) Join(roomID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[roomID]
	if members == nil {
		members = make(map[Client]struct{})
		r.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

func (r *Rooms) Leave(roomID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members := r.rooms[roomID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// LeaveAll removes the client from every room it joined. Called from
// the connection teardown path.
func (r *Rooms) LeaveAll(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, members := range r.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Contains reports whether c is currently a member of roomID.
func (r *Rooms) Contains(roomID string, c Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][c]
	return ok
}

// Members returns a snapshot of the room's current members.
func (r *Rooms) Members(roomID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]Client, 0, len(r.rooms[roomID]))
	for c := range r.rooms[roomID] {
		members = append(members, c)
	}
	return members
}

// Broadcast delivers ev to every member of roomID, including the
// sender if present. Delivery is at most once with no retry: a client
// with a full send buffer, or one racing its own teardown, misses the
// event rather than stalling or crashing the dispatcher.
func (r *Rooms) Broadcast(roomID string, ev models.Event) {
	for _, c := range r.Members(roomID) {
		c.Deliver(ev)
	}
}

// BroadcastExcept delivers ev to every member of roomID except skip.
func (r *Rooms) BroadcastExcept(roomID string, ev models.Event, skip Client) {
	for _, c := range r.Members(roomID) {
		if c == skip {
			continue
		}
		c.Deliver(ev)
	}
}
