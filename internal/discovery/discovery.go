// Package discovery serves people suggestions and search-as-you-type.
package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"zion/gateway/internal/apperrors"
	"zion/gateway/internal/generation"
	"zion/gateway/internal/models"

	"go.uber.org/zap"
)

const (
	SuggestionLimit = 30
	SearchLimit     = 10
	MinQueryLength  = 2
)

// Filter narrows the suggestion list
type Filter string

const (
	FilterAll        Filter = "all"
	FilterMutual     Filter = "mutual"
	FilterNearby     Filter = "nearby"
	FilterColleagues Filter = "colleagues"
)

// Filters lists the filters in display order
var Filters = []Filter{FilterAll, FilterMutual, FilterNearby, FilterColleagues}

// ParseFilter accepts an empty string as FilterAll
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", apperrors.New(apperrors.KindValidation, "unknown filter "+s)
}

func (f Filter) match(s models.Suggestion) bool {
	switch f {
	case FilterMutual:
		return s.HasCategory(models.CategoryMutual)
	case FilterNearby:
		return s.HasCategory(models.CategoryNearby)
	case FilterColleagues:
		return s.HasCategory(models.CategoryColleagues)
	}
	return true
}

// Source is the part of the REST client discovery depends on
type Source interface {
	Suggestions(ctx context.Context, limit int) ([]models.Suggestion, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	Follow(ctx context.Context, userID string) error
	SendFriendRequest(ctx context.Context, userID string) error
}

// View is the filtered suggestion list with per-filter counts
type View struct {
	Filter       Filter              `json:"filter"`
	Suggestions  []models.Suggestion `json:"suggestions"`
	Counts       map[Filter]int      `json:"counts"`
	SentRequests []string            `json:"sent_requests"`
}

// Discovery holds the suggestions of one user
type Discovery struct {
	src Source
	log *zap.Logger

	search generation.Tracker

	mu          sync.Mutex
	suggestions []models.Suggestion
	loaded      bool
	sent        map[string]struct{}
}

// New creates a discovery view
func New(src Source, log *zap.Logger) *Discovery {
	if log == nil {
		log = zap.NewNop()
	}
	return &Discovery{
		src:  src,
		log:  log.With(zap.String("component", "discovery")),
		sent: make(map[string]struct{}),
	}
}

// Load fetches suggestions and categorises each one once
func (d *Discovery) Load(ctx context.Context) error {
	list, err := d.src.Suggestions(ctx, SuggestionLimit)
	if err != nil {
		d.log.Warn("load suggestions", zap.Error(err))
		return err
	}
	for i := range list {
		Categorize(&list[i])
	}

	d.mu.Lock()
	d.suggestions = list
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// Loaded reports whether suggestions were fetched at least once
func (d *Discovery) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// View returns the suggestions matching f
func (d *Discovery) View(f Filter) View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Filter:       f,
		Suggestions:  []models.Suggestion{},
		Counts:       make(map[Filter]int, len(Filters)),
		SentRequests: make([]string, 0, len(d.sent)),
	}
	for _, s := range d.suggestions {
		for _, flt := range Filters {
			if flt.match(s) {
				v.Counts[flt]++
			}
		}
		if f.match(s) {
			v.Suggestions = append(v.Suggestions, s)
		}
	}
	for id := range d.sent {
		v.SentRequests = append(v.SentRequests, id)
	}
	return v
}

// Search looks users up by name. Queries shorter than MinQueryLength return
// nothing without a request. A newer query cancels the previous one.
func (d *Discovery) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	gctx, gen := d.search.Begin(ctx)
	defer d.search.Finish(gen)

	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.UserSummary{}, nil
	}

	users, err := d.src.SearchUsers(gctx, query, SearchLimit)
	if d.search.Check(gen) != nil {
		return nil, generation.ErrStale
	}
	if err != nil {
		d.log.Warn("search users", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return users, nil
}

// Follow follows userID. A failure is logged and leaves state unchanged.
func (d *Discovery) Follow(ctx context.Context, userID string) bool {
	if err := d.src.Follow(ctx, userID); err != nil {
		d.log.Warn("follow user", zap.String("user_id", userID), zap.Error(err))
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.suggestions {
		if d.suggestions[i].ID == userID {
			d.suggestions[i].IsFollowing = true
		}
	}
	return true
}

// ErrRequestAlreadySent is returned for a second friend request to the same user
var ErrRequestAlreadySent = errors.New("friend request already sent")

// SendFriendRequest sends at most one friend request per user
func (d *Discovery) SendFriendRequest(ctx context.Context, userID string) error {
	d.mu.Lock()
	if _, dup := d.sent[userID]; dup {
		d.mu.Unlock()
		return ErrRequestAlreadySent
	}
	// reserve the slot so a concurrent call does not send twice
	d.sent[userID] = struct{}{}
	d.mu.Unlock()

	if err := d.src.SendFriendRequest(ctx, userID); err != nil {
		d.mu.Lock()
		delete(d.sent, userID)
		d.mu.Unlock()
		d.log.Warn("send friend request", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// Dismiss hides a suggestion locally
func (d *Discovery) Dismiss(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.suggestions[:0]
	for _, s := range d.suggestions {
		if s.ID != userID {
			out = append(out, s)
		}
	}
	d.suggestions = out
}
