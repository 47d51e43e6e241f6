// Package feed keeps the paginated news feed of one user, with optimistic
// like toggling and reload-after-create.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"zion/gateway/internal/generation"
	"zion/gateway/internal/models"
	"zion/gateway/internal/validation"

	"go.uber.org/zap"
)

var (
	ErrNotConfirmed = errors.New("post deletion requires confirmation")
	ErrPostNotFound = errors.New("post is not in the loaded feed")
	ErrLoadInFlight = errors.New("next page is already loading")
	ErrReloadFailed = errors.New("post created but the feed could not be reloaded")
)

// Source is the part of the REST client the feed depends on
type Source interface {
	Feed(ctx context.Context, limit, offset int) (*models.PostPage, error)
	ChannelPosts(ctx context.Context, channelID string, limit, offset int) (*models.PostPage, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error)
	LikePost(ctx context.Context, postID string) error
	UnlikePost(ctx context.Context, postID string) error
	DeletePost(ctx context.Context, postID string) error
	CommentPost(ctx context.Context, postID string, req models.CommentRequest) error
}

// Page is the feed view returned to callers
type Page struct {
	Posts   []models.Post `json:"posts"`
	HasMore bool          `json:"has_more"`
}

// CreateInput is what a user submits from the composer
type CreateInput struct {
	Content    string            `json:"content"`
	Visibility models.Visibility `json:"visibility"`
	ChannelID  *string           `json:"channel_id,omitempty"`
}

// Aggregator holds the in-memory feed. Posts keep server order.
type Aggregator struct {
	src       Source
	channelID string
	pageSize  int
	log       *zap.Logger

	gen generation.Tracker

	mu           sync.Mutex
	posts        []models.Post
	offset       int
	hasMore      bool
	loaded       bool
	appending    bool
	appendCancel context.CancelFunc
	// epoch moves on every reset; an append fetched under an older epoch is dropped
	epoch     uint64
	resetting int
}

// New creates a feed aggregator. An empty channelID selects the main feed.
func New(src Source, channelID string, pageSize int, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		src:       src,
		channelID: channelID,
		pageSize:  pageSize,
		log:       log.With(zap.String("component", "feed"), zap.String("channel", channelID)),
	}
}

// ChannelID is the channel this feed is bound to, empty for the main feed
func (a *Aggregator) ChannelID() string { return a.channelID }

func (a *Aggregator) fetch(ctx context.Context, offset int) (*models.PostPage, error) {
	if a.channelID != "" {
		return a.src.ChannelPosts(ctx, a.channelID, a.pageSize, offset)
	}
	return a.src.Feed(ctx, a.pageSize, offset)
}

// LoadPosts refetches page 0 when reset is true, otherwise appends the next page
func (a *Aggregator) LoadPosts(ctx context.Context, reset bool) (Page, error) {
	if reset {
		return a.reload(ctx)
	}
	return a.loadMore(ctx)
}

// Snapshot returns the current view without touching the network
func (a *Aggregator) Snapshot() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Page {
	posts := make([]models.Post, len(a.posts))
	copy(posts, a.posts)
	return Page{Posts: posts, HasMore: a.hasMore}
}

func (a *Aggregator) reload(ctx context.Context) (Page, error) {
	gctx, gen := a.gen.Begin(ctx)
	defer a.gen.Finish(gen)

	a.mu.Lock()
	a.epoch++
	a.resetting++
	if a.appendCancel != nil {
		a.appendCancel()
		a.appendCancel = nil
	}
	a.appending = false
	a.mu.Unlock()

	page, err := a.fetch(gctx, 0)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetting--
	if a.gen.Check(gen) != nil {
		return Page{}, generation.ErrStale
	}
	if err != nil {
		a.log.Warn("reload feed", zap.Error(err))
		return a.snapshotLocked(), err
	}

	a.posts = a.posts[:0]
	seen := make(map[string]struct{}, len(page.Posts))
	for _, p := range page.Posts {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		a.posts = append(a.posts, p)
	}
	a.offset = a.pageSize
	a.hasMore = page.HasMore
	a.loaded = true
	return a.snapshotLocked(), nil
}

func (a *Aggregator) loadMore(ctx context.Context) (Page, error) {
	a.mu.Lock()
	if !a.loaded {
		a.mu.Unlock()
		return a.reload(ctx)
	}
	if a.appending || a.resetting > 0 {
		a.mu.Unlock()
		return Page{}, ErrLoadInFlight
	}
	if !a.hasMore {
		defer a.mu.Unlock()
		return a.snapshotLocked(), nil
	}
	offset := a.offset
	epoch := a.epoch
	actx, cancel := context.WithCancel(ctx)
	a.appending = true
	a.appendCancel = cancel
	a.mu.Unlock()

	page, err := a.fetch(actx, offset)
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.epoch != epoch {
		return Page{}, generation.ErrStale
	}
	a.appending = false
	a.appendCancel = nil
	if err != nil {
		a.log.Warn("load next page", zap.Int("offset", offset), zap.Error(err))
		return a.snapshotLocked(), err
	}

	seen := make(map[string]struct{}, len(a.posts))
	for _, p := range a.posts {
		seen[p.ID] = struct{}{}
	}
	for _, p := range page.Posts {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		a.posts = append(a.posts, p)
	}
	a.offset += a.pageSize
	a.hasMore = page.HasMore
	return a.snapshotLocked(), nil
}

func (a *Aggregator) indexLocked(postID string) int {
	for i := range a.posts {
		if a.posts[i].ID == postID {
			return i
		}
	}
	return -1
}

// withLike returns p with the like state set to liked, keeping likes_count >= 0
func withLike(p models.Post, liked bool) models.Post {
	if p.IsLiked == liked {
		return p
	}
	p.IsLiked = liked
	if liked {
		p.LikesCount++
	} else if p.LikesCount > 0 {
		p.LikesCount--
	}
	return p
}

// ToggleLike flips the like optimistically, then confirms upstream.
// On failure the flip is reverted and the error returned.
func (a *Aggregator) ToggleLike(ctx context.Context, postID string) (models.Post, error) {
	a.mu.Lock()
	i := a.indexLocked(postID)
	if i < 0 {
		a.mu.Unlock()
		return models.Post{}, ErrPostNotFound
	}
	wasLiked := a.posts[i].IsLiked
	patched := withLike(a.posts[i], !wasLiked)
	a.posts[i] = patched
	a.mu.Unlock()

	var err error
	if wasLiked {
		err = a.src.UnlikePost(ctx, postID)
	} else {
		err = a.src.LikePost(ctx, postID)
	}
	if err == nil {
		return patched, nil
	}

	a.log.Warn("like toggle rejected, reverting", zap.String("post_id", postID), zap.Error(err))
	a.mu.Lock()
	defer a.mu.Unlock()
	if j := a.indexLocked(postID); j >= 0 {
		if a.posts[j].IsLiked == patched.IsLiked {
			a.posts[j] = withLike(a.posts[j], wasLiked)
		}
		return a.posts[j], err
	}
	return withLike(patched, wasLiked), err
}

// Delete removes a post upstream and, on success, from the loaded feed
func (a *Aggregator) Delete(ctx context.Context, postID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := a.src.DeletePost(ctx, postID); err != nil {
		a.log.Warn("delete post", zap.String("post_id", postID), zap.Error(err))
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexLocked(postID); i >= 0 {
		a.posts = append(a.posts[:i], a.posts[i+1:]...)
	}
	return nil
}

// Create publishes a post and reloads the feed from page 0 so that
// server-assigned fields are authoritative
func (a *Aggregator) Create(ctx context.Context, in CreateInput) (Page, error) {
	req := models.CreatePostRequest{
		Content:    strings.TrimSpace(in.Content),
		Visibility: in.Visibility,
		ChannelID:  in.ChannelID,
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}
	if req.ChannelID == nil && a.channelID != "" {
		ch := a.channelID
		req.ChannelID = &ch
	}
	if err := validation.Struct(req); err != nil {
		return a.Snapshot(), err
	}

	if _, err := a.src.CreatePost(ctx, req); err != nil {
		a.log.Warn("create post", zap.Error(err))
		return a.Snapshot(), err
	}
	page, err := a.reload(ctx)
	if err != nil {
		// the post is stored upstream at this point
		return a.Snapshot(), fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return page, nil
}

// AddComment posts a comment and bumps comments_count locally on success
func (a *Aggregator) AddComment(ctx context.Context, postID, content string) (models.Post, error) {
	req := models.CommentRequest{Content: strings.TrimSpace(content)}
	if err := validation.Struct(req); err != nil {
		return models.Post{}, err
	}
	if err := a.src.CommentPost(ctx, postID, req); err != nil {
		return models.Post{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexLocked(postID)
	if i < 0 {
		return models.Post{ID: postID}, nil
	}
	a.posts[i].CommentsCount++
	return a.posts[i], nil
}
