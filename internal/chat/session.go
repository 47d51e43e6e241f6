// Package chat keeps the message list of one chat group and the typing
// state of group members.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"zion/gateway/internal/generation"
	"zion/gateway/internal/models"
	"zion/gateway/internal/validation"

	"go.uber.org/zap"
)

// ErrRefetchFailed means the message was sent but the list could not be reloaded
var ErrRefetchFailed = errors.New("message sent but refreshing the conversation failed")

// Source is the part of the REST client a chat session depends on
type Source interface {
	Messages(ctx context.Context, groupID string) ([]models.Message, error)
	SendMessage(ctx context.Context, req models.SendMessageRequest) error
}

// View is the message list of a group. ScrollTo is the newest message id.
type View struct {
	GroupID  string           `json:"group_id"`
	Messages []models.Message `json:"messages"`
	ScrollTo string           `json:"scroll_to,omitempty"`
}

// Session holds the messages of one group
type Session struct {
	groupID string
	src     Source
	log     *zap.Logger

	gen generation.Tracker

	mu       sync.Mutex
	messages []models.Message
}

// NewSession creates a chat session for groupID
func NewSession(src Source, groupID string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		groupID: groupID,
		src:     src,
		log:     log.With(zap.String("component", "chat"), zap.String("group_id", groupID)),
	}
}

// GroupID returns the group of the session
func (s *Session) GroupID() string { return s.groupID }

// Snapshot returns the current view without touching the network
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	v := View{GroupID: s.groupID, Messages: msgs}
	if n := len(msgs); n > 0 {
		v.ScrollTo = msgs[n-1].ID
	}
	return v
}

// Fetch replaces the whole message list with the upstream one
func (s *Session) Fetch(ctx context.Context) (View, error) {
	gctx, gen := s.gen.Begin(ctx)
	defer s.gen.Finish(gen)

	msgs, err := s.src.Messages(gctx, s.groupID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Check(gen) != nil {
		// the newer fetch owns the list; report what is held now
		return s.viewLocked(), generation.ErrStale
	}
	if err != nil {
		s.log.Warn("fetch messages", zap.Error(err))
		return s.viewLocked(), err
	}

	s.messages = prepare(msgs)
	return s.viewLocked(), nil
}

// prepare orders messages by created_at and links replies to the messages
// they reference when upstream did not embed them
func prepare(msgs []models.Message) []models.Message {
	slices.SortStableFunc(msgs, func(a, b models.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	byID := make(map[string]int, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = i
	}
	for i := range msgs {
		m := &msgs[i]
		if m.ReplyTo == nil || m.ReplyMessage != nil {
			continue
		}
		j, ok := byID[*m.ReplyTo]
		if !ok {
			continue
		}
		ref := msgs[j]
		ref.ReplyMessage = nil
		m.ReplyMessage = &ref
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs
}

// Send posts a message then reloads the whole conversation
func (s *Session) Send(ctx context.Context, content string, msgType models.MessageType) (View, error) {
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	req := models.SendMessageRequest{
		GroupID:     s.groupID,
		Content:     strings.TrimSpace(content),
		MessageType: msgType,
	}
	if err := validation.Struct(req); err != nil {
		return s.Snapshot(), err
	}

	if err := s.src.SendMessage(ctx, req); err != nil {
		s.log.Warn("send message", zap.Error(err))
		return s.Snapshot(), err
	}

	view, err := s.Fetch(ctx)
	if err != nil {
		return view, fmt.Errorf("%w: %w", ErrRefetchFailed, err)
	}
	return view, nil
}
