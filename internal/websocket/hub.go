package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"zion/gateway/internal/chat"

	"go.uber.org/zap"
)

// Authorizer decides whether a user may join a room
type Authorizer func(ctx context.Context, userID, roomID string) bool

// Hub maintains the set of active clients and the group rooms they joined
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[string]*Client

	// Group ID to subscribed user IDs
	rooms map[string]map[string]struct{}

	// Event ID to user IDs watching its wish list
	events map[string]map[string]struct{}

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	typing         *chat.TypingTracker
	authorize      Authorizer
	authorizeEvent Authorizer
	log            *zap.Logger

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub. groups guards chat group rooms,
// events guards wish list rooms.
func NewHub(typing *chat.TypingTracker, groups, events Authorizer, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:        make(map[string]*Client),
		rooms:          make(map[string]map[string]struct{}),
		events:         make(map[string]map[string]struct{}),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		typing:         typing,
		authorize:      groups,
		authorizeEvent: events,
		log:            log.With(zap.String("component", "ws_hub")),
	}
}

// Typing returns the tracker fed by typing events
func (h *Hub) Typing() *chat.TypingTracker { return h.typing }

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// If user already has a connection, close the old one
	if existing, ok := h.Clients[client.ID]; ok && existing != client {
		h.dropLocked(existing)
	}
	h.Clients[client.ID] = client

	h.log.Info("client connected", zap.String("user_id", client.ID))
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.Clients[client.ID]; ok && current == client {
		delete(h.Clients, client.ID)
		for groupID := range client.groups {
			if h.typing != nil {
				h.typing.Set(groupID, client.ID, "", false)
			}
			leaveLocked(h.rooms, client.ID, groupID)
		}
		for eventID := range client.events {
			leaveLocked(h.events, client.ID, eventID)
		}
		client.close()
		h.log.Info("client disconnected", zap.String("user_id", client.ID))
	}
}

func (h *Hub) dropLocked(client *Client) {
	for groupID := range client.groups {
		leaveLocked(h.rooms, client.ID, groupID)
	}
	for eventID := range client.events {
		leaveLocked(h.events, client.ID, eventID)
	}
	client.close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.Clients {
		c.close()
		delete(h.Clients, id)
	}
	h.rooms = make(map[string]map[string]struct{})
	h.events = make(map[string]map[string]struct{})
}

func joinLocked(rooms map[string]map[string]struct{}, userID, roomID string) {
	members := rooms[roomID]
	if members == nil {
		members = make(map[string]struct{})
		rooms[roomID] = members
	}
	members[userID] = struct{}{}
}

func leaveLocked(rooms map[string]map[string]struct{}, userID, roomID string) {
	members := rooms[roomID]
	if members == nil {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(rooms, roomID)
	}
}

// Subscribe puts client into the room of groupID after authorization
func (h *Hub) Subscribe(ctx context.Context, client *Client, groupID string) bool {
	if groupID == "" {
		return false
	}
	if h.authorize != nil && !h.authorize(ctx, client.ID, groupID) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Clients[client.ID] != client {
		return false
	}
	joinLocked(h.rooms, client.ID, groupID)
	client.groups[groupID] = struct{}{}
	return true
}

// Unsubscribe removes client from the room of groupID
func (h *Hub) Unsubscribe(client *Client, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.groups, groupID)
	leaveLocked(h.rooms, client.ID, groupID)
}

// WatchEvent puts client into the wish list room of eventID. Without an
// event authorizer nobody may watch.
func (h *Hub) WatchEvent(ctx context.Context, client *Client, eventID string) bool {
	if eventID == "" || h.authorizeEvent == nil || !h.authorizeEvent(ctx, client.ID, eventID) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Clients[client.ID] != client {
		return false
	}
	joinLocked(h.events, client.ID, eventID)
	client.events[eventID] = struct{}{}
	return true
}

// UnwatchEvent removes client from the wish list room of eventID
func (h *Hub) UnwatchEvent(client *Client, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.events, eventID)
	leaveLocked(h.events, client.ID, eventID)
}

// IsSubscribed reports whether userID is in the room of groupID
func (h *Hub) IsSubscribed(userID, groupID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[groupID][userID]
	return ok
}

func (h *Hub) sendLocked(userID string, data []byte) {
	client, ok := h.Clients[userID]
	if !ok {
		return
	}
	if !client.enqueue(data) {
		h.log.Warn("client send buffer full, dropping message", zap.String("user_id", userID))
	}
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("marshal ws message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.sendLocked(userID, data)
}

// BroadcastToGroup sends a message to every subscriber of a group room
func (h *Hub) BroadcastToGroup(groupID string, message WSMessage, excludeUserID string) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("marshal ws message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID := range h.rooms[groupID] {
		// Skip the sender
		if userID == excludeUserID {
			continue
		}
		h.sendLocked(userID, data)
	}
}

// NotifyGroupMessage tells the room that a new message was stored upstream
func (h *Hub) NotifyGroupMessage(groupID, senderID, messageID string) {
	h.BroadcastToGroup(groupID, newMessage(EventGroupMessageSent, GroupMessagePayload{
		GroupID:   groupID,
		SenderID:  senderID,
		MessageID: messageID,
	}), senderID)
}

// NotifyWishList tells the watchers of eventID that one of its wishes changed
func (h *Hub) NotifyWishList(eventID string, index int, actorID string) {
	data, err := json.Marshal(newMessage(EventWishListChanged, WishListPayload{EventID: eventID, Index: index}))
	if err != nil {
		h.log.Error("marshal ws message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID := range h.events[eventID] {
		if userID != actorID {
			h.sendLocked(userID, data)
		}
	}
}

// NotifyTyping relays a typing change to the room. Each member gets the
// indicator text of the others typing, never their own name.
func (h *Hub) NotifyTyping(groupID, userID, userName string, typing bool) {
	t := EventTypingStop
	if typing {
		t = EventTypingStart
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.rooms[groupID] {
		if member == userID {
			continue
		}
		text := ""
		if h.typing != nil {
			text = chat.IndicatorText(h.typing.Typing(groupID, member))
		}
		data, err := json.Marshal(newMessage(t, TypingPayload{
			UserID:   userID,
			GroupID:  groupID,
			UserName: userName,
			Text:     text,
		}))
		if err != nil {
			h.log.Error("marshal ws message", zap.Error(err))
			return
		}
		h.sendLocked(member, data)
	}
}

// IsUserOnline checks if a user is currently connected
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// GetOnlineCount returns the number of connected users
func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

// RoomCount returns the number of group rooms with at least one subscriber
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
