// Package wishlist implements claiming and releasing items of an event wish list.
package wishlist

import (
	"context"
	"errors"
	"sync"

	"zion/gateway/internal/models"

	"go.uber.org/zap"
)

var (
	ErrClaimedByOther = errors.New("wish is already claimed by someone else")
	ErrClaimInFlight  = errors.New("a claim request for this wish is already running")
	ErrWishNotFound   = errors.New("wish not found")
)

// Action is what the claim button does for an item
type Action string

const (
	ActionClaim   Action = "claim"
	ActionUnclaim Action = "unclaim"
	ActionNone    Action = "none"
)

// Source is the part of the REST client the wish list depends on
type Source interface {
	WishList(ctx context.Context, eventID string) (*models.WishList, error)
	ClaimWish(ctx context.Context, eventID string, index int) error
	UnclaimWish(ctx context.Context, eventID string, index int) error
}

// CanClaim reports whether the claim button is enabled for item
func CanClaim(item models.WishListItem) bool {
	return !item.IsClaimed || item.IsClaimedByMe
}

// ActionFor returns the button action for item
func ActionFor(item models.WishListItem) Action {
	switch {
	case !item.IsClaimed:
		return ActionClaim
	case item.IsClaimedByMe:
		return ActionUnclaim
	}
	return ActionNone
}

// Item is a wish list item with its button state
type Item struct {
	models.WishListItem
	CanClaim bool   `json:"can_claim"`
	Action   Action `json:"action"`
}

// View is a wish list ready for rendering
type View struct {
	EventID      string `json:"event_id"`
	Wishes       []Item `json:"wishes"`
	ClaimedCount int    `json:"claimed_count"`
	TotalWishes  int    `json:"total_wishes"`
}

// NewView decorates list with button state
func NewView(list *models.WishList) View {
	v := View{Wishes: []Item{}}
	if list == nil {
		return v
	}
	v.EventID = list.EventID
	v.ClaimedCount = list.ClaimedCount
	v.TotalWishes = list.TotalWishes
	for _, w := range list.Wishes {
		v.Wishes = append(v.Wishes, Item{WishListItem: w, CanClaim: CanClaim(w), Action: ActionFor(w)})
	}
	return v
}

type claimKey struct {
	eventID string
	index   int
}

// Interaction holds the wish lists a user has opened and the claims in flight
type Interaction struct {
	src Source
	log *zap.Logger

	mu       sync.Mutex
	lists    map[string]*models.WishList
	inFlight map[claimKey]struct{}
}

// New creates a wish-claim interaction
func New(src Source, log *zap.Logger) *Interaction {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interaction{
		src:      src,
		log:      log.With(zap.String("component", "wishlist")),
		lists:    make(map[string]*models.WishList),
		inFlight: make(map[claimKey]struct{}),
	}
}

// Load fetches the wish list of eventID and caches it
func (w *Interaction) Load(ctx context.Context, eventID string) (View, error) {
	list, err := w.src.WishList(ctx, eventID)
	if err != nil {
		w.log.Warn("load wish list", zap.String("event_id", eventID), zap.Error(err))
		return w.cachedView(eventID), err
	}

	w.mu.Lock()
	w.lists[eventID] = list
	w.mu.Unlock()
	return NewView(list), nil
}

// Opened reports whether the wish list of eventID was loaded successfully,
// which proves upstream lets this user see it
func (w *Interaction) Opened(eventID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.lists[eventID]
	return ok
}

func (w *Interaction) cachedView(eventID string) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return NewView(w.lists[eventID])
}

func (w *Interaction) item(eventID string, index int) (models.WishListItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	list := w.lists[eventID]
	if list == nil {
		return models.WishListItem{}, false
	}
	for _, it := range list.Wishes {
		if it.Index == index {
			return it, true
		}
	}
	return models.WishListItem{}, false
}

// ClaimOrUnclaim claims an unclaimed item or releases the caller's own claim,
// then reloads the list. Only one request per item runs at a time.
func (w *Interaction) ClaimOrUnclaim(ctx context.Context, eventID string, index int) (View, error) {
	key := claimKey{eventID: eventID, index: index}

	w.mu.Lock()
	if _, busy := w.inFlight[key]; busy {
		w.mu.Unlock()
		return View{}, ErrClaimInFlight
	}
	w.inFlight[key] = struct{}{}
	_, loaded := w.lists[eventID]
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inFlight, key)
		w.mu.Unlock()
	}()

	if !loaded {
		if _, err := w.Load(ctx, eventID); err != nil {
			return View{}, err
		}
	}

	item, ok := w.item(eventID, index)
	if !ok {
		return w.cachedView(eventID), ErrWishNotFound
	}

	var err error
	switch ActionFor(item) {
	case ActionClaim:
		err = w.src.ClaimWish(ctx, eventID, index)
	case ActionUnclaim:
		err = w.src.UnclaimWish(ctx, eventID, index)
	default:
		return w.cachedView(eventID), ErrClaimedByOther
	}
	if err != nil {
		w.log.Warn("toggle wish claim",
			zap.String("event_id", eventID),
			zap.Int("index", index),
			zap.Error(err),
		)
		// upstream decides; show its current state
		view, lerr := w.Load(ctx, eventID)
		if lerr != nil {
			return w.cachedView(eventID), err
		}
		return view, err
	}
	return w.Load(ctx, eventID)
}
