// Package workspace keeps the view state of every signed-in user: one REST
// client bound to the user's token and the aggregators built on top of it.
package workspace

import (
	"context"
	"net/http"
	"sync"
	"time"

	"zion/gateway/internal/apiclient"
	"zion/gateway/internal/calendar"
	"zion/gateway/internal/chat"
	"zion/gateway/internal/discovery"
	"zion/gateway/internal/feed"
	"zion/gateway/internal/wishlist"

	"go.uber.org/zap"
)

// Options configure new workspaces
type Options struct {
	UpstreamURL  string
	HTTPClient   *http.Client
	Retries      int
	RetryBackoff time.Duration
	FeedPageSize int
	Calendar     calendar.Options
	IdleTTL      time.Duration
}

// Workspace is the state of one user. The token is fixed for its lifetime.
type Workspace struct {
	UserID string
	token  string
	opts   Options
	log    *zap.Logger

	Client   *apiclient.Client
	Calendar *calendar.Aggregator
	Wishes   *wishlist.Interaction
	People   *discovery.Discovery

	mu       sync.Mutex
	feeds    map[string]*feed.Aggregator
	chats    map[string]*chat.Session
	lastSeen time.Time
}

func newWorkspace(userID, token string, opts Options, log *zap.Logger, now time.Time) *Workspace {
	log = log.With(zap.String("user_id", userID))
	client := apiclient.New(opts.UpstreamURL, token,
		apiclient.WithHTTPClient(opts.HTTPClient),
		apiclient.WithRetries(opts.Retries, opts.RetryBackoff),
		apiclient.WithLogger(log),
	)
	return &Workspace{
		UserID:   userID,
		token:    token,
		opts:     opts,
		log:      log,
		Client:   client,
		Calendar: calendar.New(client, opts.Calendar, log),
		Wishes:   wishlist.New(client, log),
		People:   discovery.New(client, log),
		feeds:    make(map[string]*feed.Aggregator),
		chats:    make(map[string]*chat.Session),
		lastSeen: now,
	}
}

// Feed returns the feed of channelID, the main feed for an empty id
func (w *Workspace) Feed(channelID string) *feed.Aggregator {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.feeds[channelID]
	if !ok {
		f = feed.New(w.Client, channelID, w.opts.FeedPageSize, w.log)
		w.feeds[channelID] = f
	}
	return f
}

// Chat returns the chat session of groupID
func (w *Workspace) Chat(groupID string) *chat.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.chats[groupID]
	if !ok {
		s = chat.NewSession(w.Client, groupID, w.log)
		w.chats[groupID] = s
	}
	return s
}

// IsMember asks upstream whether the user belongs to groupID
func (w *Workspace) IsMember(ctx context.Context, groupID string) bool {
	memberships, err := w.Client.ChatGroups(ctx)
	if err != nil {
		w.log.Warn("check group membership", zap.String("group_id", groupID), zap.Error(err))
		return false
	}
	for _, m := range memberships {
		if m.Group.ID == groupID {
			return true
		}
	}
	return false
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Registry owns the workspaces of all users
type Registry struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FeedPageSize <= 0 {
		opts.FeedPageSize = 20
	}
	return &Registry{
		opts:  opts,
		log:   log,
		now:   time.Now,
		items: make(map[string]*Workspace),
	}
}

// Get returns the workspace of userID. A different token replaces the
// workspace so that no state crosses credentials.
func (r *Registry) Get(userID, token string) *Workspace {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.items[userID]; ok && w.token == token {
		w.touch(now)
		return w
	}
	w := newWorkspace(userID, token, r.opts, r.log, now)
	r.items[userID] = w
	return w
}

// Lookup returns an existing workspace without creating one
func (r *Registry) Lookup(userID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[userID]
	return w, ok
}

// Remove drops the workspace of userID
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.items, userID)
	r.mu.Unlock()
}

// Len returns the number of live workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Evict removes workspaces idle for longer than the configured TTL
func (r *Registry) Evict() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.items {
		if w.idleSince().Before(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

// Run evicts idle workspaces every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.log.Info("evicted idle workspaces", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// RoomAuthorizer lets a user join a group room only when a workspace exists
// for them and upstream lists the group among their memberships
func (r *Registry) RoomAuthorizer() func(ctx context.Context, userID, groupID string) bool {
	return func(ctx context.Context, userID, groupID string) bool {
		w, ok := r.Lookup(userID)
		if !ok {
			return false
		}
		return w.IsMember(ctx, groupID)
	}
}

// EventAuthorizer lets a user watch an event's wish list only after their
// workspace has opened it
func (r *Registry) EventAuthorizer() func(ctx context.Context, userID, eventID string) bool {
	return func(ctx context.Context, userID, eventID string) bool {
		w, ok := r.Lookup(userID)
		return ok && w.Wishes.Opened(eventID)
	}
}
