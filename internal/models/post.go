package models

import "time"

// Visibility controls who can read a post
type Visibility string

const (
	VisibilityPublic              Visibility = "PUBLIC"
	VisibilityFriendsAndFollowers Visibility = "FRIENDS_AND_FOLLOWERS"
	VisibilityFriendsOnly         Visibility = "FRIENDS_ONLY"
)

// Valid reports whether v is one of the known visibilities
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriendsAndFollowers, VisibilityFriendsOnly:
		return true
	}
	return false
}

// Channel is the news channel a post was published to
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post represents a news feed entry
type Post struct {
	ID            string      `json:"id"`
	Author        UserSummary `json:"author"`
	Content       string      `json:"content"`
	Visibility    Visibility  `json:"visibility"`
	CreatedAt     time.Time   `json:"created_at"`
	LikesCount    int         `json:"likes_count"`
	IsLiked       bool        `json:"is_liked"`
	CommentsCount int         `json:"comments_count"`
	Channel       *Channel    `json:"channel,omitempty"`
}

// PostPage is one page of the feed as returned upstream
type PostPage struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"has_more"`
}

// CreatePostRequest is the upstream body for publishing a post
type CreatePostRequest struct {
	Content     string     `json:"content" validate:"required,max=5000"`
	Visibility  Visibility `json:"visibility" validate:"required,oneof=PUBLIC FRIENDS_AND_FOLLOWERS FRIENDS_ONLY"`
	ChannelID   *string    `json:"channel_id"`
	MediaFiles  []string   `json:"media_files"`
	YoutubeURLs []string   `json:"youtube_urls"`
}

// CommentRequest is the upstream body for commenting on a post
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
