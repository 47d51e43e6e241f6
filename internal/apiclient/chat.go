package apiclient

import (
	"context"
	"net/http"

	"zion/gateway/internal/models"
)

// ChatGroups lists every group the current user belongs to
func (c *Client) ChatGroups(ctx context.Context) ([]models.Membership, error) {
	var out models.MembershipList
	if err := c.get(ctx, "/api/chat-groups", nil, &out); err != nil {
		return nil, err
	}
	return out.ChatGroups, nil
}

// ScheduledActions lists the scheduled actions of one group
func (c *Client) ScheduledActions(ctx context.Context, groupID string) ([]models.ScheduledAction, error) {
	var out models.ScheduledActionList
	if err := c.get(ctx, pathf("/api/chat-groups/%s/scheduled-actions", groupID), nil, &out); err != nil {
		return nil, err
	}
	return out.ScheduledActions, nil
}

// Messages returns the full message list of a group
func (c *Client) Messages(ctx context.Context, groupID string) ([]models.Message, error) {
	var out models.MessageList
	if err := c.get(ctx, pathf("/api/chat-groups/%s/messages", groupID), nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage posts a message to a group
func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) error {
	return c.do(ctx, http.MethodPost, pathf("/api/chat-groups/%s/messages", req.GroupID), nil, req, nil)
}
