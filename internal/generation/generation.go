// Package generation tracks which view request is the latest one so that
// responses for views the user already left can be dropped.
package generation

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned when a response belongs to a superseded view
var ErrStale = errors.New("stale view generation")

// Tracker hands out monotonically increasing generations. Beginning a new
// generation cancels the context of the previous one.
type Tracker struct {
	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
}

// Begin starts a new generation derived from parent
func (t *Tracker) Begin(parent context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.current++
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	return ctx, t.current
}

// Current returns the latest generation, 0 before the first Begin
func (t *Tracker) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// IsCurrent reports whether gen is still the latest generation
func (t *Tracker) IsCurrent(gen uint64) bool {
	return t.Current() == gen
}

// Check returns ErrStale when gen has been superseded
func (t *Tracker) Check(gen uint64) error {
	if !t.IsCurrent(gen) {
		return ErrStale
	}
	return nil
}

// Finish releases the context of gen once its request completed
func (t *Tracker) Finish(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen == t.current && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
