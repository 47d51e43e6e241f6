package models

// WishListItem is one gift on an event's wish list; Index is its identity
type WishListItem struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	IsClaimed     bool    `json:"is_claimed"`
	IsClaimedByMe bool    `json:"is_claimed_by_me"`
	ClaimedByName *string `json:"claimed_by_name,omitempty"`
}

// WishList is the upstream response of GET /api/events/{id}/wish-list
type WishList struct {
	EventID      string         `json:"event_id"`
	Wishes       []WishListItem `json:"wishes"`
	ClaimedCount int            `json:"claimed_count"`
	TotalWishes  int            `json:"total_wishes"`
}
