package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"zion/gateway/internal/models"
)

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// Feed returns one page of the user's news feed
func (c *Client) Feed(ctx context.Context, limit, offset int) (*models.PostPage, error) {
	var page models.PostPage
	if err := c.get(ctx, "/api/news/posts/feed", pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ChannelPosts returns one page of a channel's posts
func (c *Client) ChannelPosts(ctx context.Context, channelID string, limit, offset int) (*models.PostPage, error) {
	var page models.PostPage
	if err := c.get(ctx, pathf("/api/news/posts/channel/%s", channelID), pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePost publishes a post
func (c *Client) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	if req.MediaFiles == nil {
		req.MediaFiles = []string{}
	}
	if req.YoutubeURLs == nil {
		req.YoutubeURLs = []string{}
	}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/news/posts", nil, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost likes a post as the current user
func (c *Client) LikePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, pathf("/api/news/posts/%s/like", postID), nil, nil, nil)
}

// UnlikePost removes the current user's like
func (c *Client) UnlikePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/news/posts/%s/like", postID), nil, nil, nil)
}

// DeletePost deletes a post
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/news/posts/%s", postID), nil, nil, nil)
}

// CommentPost adds a comment to a post
func (c *Client) CommentPost(ctx context.Context, postID string, req models.CommentRequest) error {
	return c.do(ctx, http.MethodPost, pathf("/api/news/posts/%s/comments", postID), nil, req, nil)
}
