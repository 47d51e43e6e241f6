package websocket

import "time"

// EventType represents different WebSocket event types
type EventType string

const (
	// Room events
	EventSubscribe   EventType = "subscribe"
	EventUnsubscribe EventType = "unsubscribe"
	EventSubscribed  EventType = "subscribed"

	// Group message events
	EventGroupMessageSent EventType = "group_message_sent"

	// Typing events
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"

	// Wish list events
	EventWishListChanged EventType = "wish_list_changed"

	// Error events
	EventError EventType = "error"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// GroupMessagePayload tells group members to refetch their conversation
type GroupMessagePayload struct {
	GroupID   string `json:"groupId"`
	SenderID  string `json:"senderId"`
	MessageID string `json:"messageId,omitempty"`
}

// TypingPayload represents typing indicator payload
type TypingPayload struct {
	UserID   string `json:"userId"`
	GroupID  string `json:"groupId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

// WishListPayload tells viewers of an event that claims changed
type WishListPayload struct {
	EventID string `json:"eventId"`
	Index   int    `json:"index"`
}

// RoomPayload confirms a subscription
type RoomPayload struct {
	GroupID string `json:"groupId,omitempty"`
	EventID string `json:"eventId,omitempty"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType      `json:"type"`
	Payload IncomingFields `json:"payload"`
}

// IncomingFields are the payload fields a client may send
type IncomingFields struct {
	GroupID  string `json:"groupId"`
	EventID  string `json:"eventId"`
	UserName string `json:"userName"`
}

func newMessage(t EventType, payload interface{}) WSMessage {
	return WSMessage{Type: t, Payload: payload, Timestamp: time.Now()}
}
