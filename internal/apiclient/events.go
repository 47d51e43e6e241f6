package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"zion/gateway/internal/models"
)

// WishList returns the wish list of an event with claim state for the current user
func (c *Client) WishList(ctx context.Context, eventID string) (*models.WishList, error) {
	var out models.WishList
	if err := c.get(ctx, pathf("/api/events/%s/wish-list", eventID), nil, &out); err != nil {
		return nil, err
	}
	if out.EventID == "" {
		out.EventID = eventID
	}
	return &out, nil
}

// ClaimWish reserves a wish list item for the current user
func (c *Client) ClaimWish(ctx context.Context, eventID string, index int) error {
	return c.do(ctx, http.MethodPost, pathf("/api/events/%s/wish-list/%s/claim", eventID, index), nil, nil, nil)
}

// UnclaimWish releases the current user's reservation
func (c *Client) UnclaimWish(ctx context.Context, eventID string, index int) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/events/%s/wish-list/%s/claim", eventID, index), nil, nil, nil)
}

// Analytics returns organization metrics for a period as an opaque document
func (c *Client) Analytics(ctx context.Context, orgID string, period models.AnalyticsPeriod) (models.Analytics, error) {
	var out models.Analytics
	q := url.Values{}
	q.Set("period", string(period))
	if err := c.get(ctx, pathf("/api/work/organizations/%s/analytics", orgID), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
