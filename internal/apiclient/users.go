package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"zion/gateway/internal/models"
)

// Suggestions returns people the current user may know
func (c *Client) Suggestions(ctx context.Context, limit int) ([]models.Suggestion, error) {
	var out models.SuggestionList
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if err := c.get(ctx, "/api/users/suggestions", q, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// SearchUsers finds users by free text
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	var out models.UserSearchResult
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))
	if err := c.get(ctx, "/api/users/search", q, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Follow follows a user
func (c *Client) Follow(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, pathf("/api/users/%s/follow", userID), nil, nil, nil)
}

// SendFriendRequest asks a user to become a friend
func (c *Client) SendFriendRequest(ctx context.Context, userID string) error {
	body := map[string]string{"receiver_id": userID}
	return c.do(ctx, http.MethodPost, "/api/friend-requests", nil, body, nil)
}
