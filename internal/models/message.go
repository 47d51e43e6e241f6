package models

import "time"

// MessageType is the kind of content a message carries
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeFile  MessageType = "FILE"
)

// MessageStatus is the delivery state of a message
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Attachment describes a file sent with a message
type Attachment struct {
	Filename string `json:"filename"`
	FilePath string `json:"file_path"`
	MimeType string `json:"mime_type"`
}

// Message represents a chat message
type Message struct {
	ID           string        `json:"id"`
	GroupID      string        `json:"group_id"`
	SenderID     string        `json:"sender_id"`
	Sender       *UserSummary  `json:"sender,omitempty"`
	Content      string        `json:"content"`
	MessageType  MessageType   `json:"message_type"`
	Status       MessageStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	ReplyTo      *string       `json:"reply_to,omitempty"`
	ReplyMessage *Message      `json:"reply_message,omitempty"`
	Attachment   *Attachment   `json:"attachment,omitempty"`
	IsEdited     bool          `json:"is_edited"`
}

// MessageList is the upstream response of GET /api/chat-groups/{id}/messages
type MessageList struct {
	Messages []Message `json:"messages"`
}

// SendMessageRequest is the upstream body for posting a message
type SendMessageRequest struct {
	GroupID     string      `json:"group_id" validate:"required"`
	Content     string      `json:"content" validate:"required,max=4000"`
	MessageType MessageType `json:"message_type" validate:"required,oneof=TEXT IMAGE FILE"`
}
