package chat

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Typist is a group member currently typing
type Typist struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	Since    time.Time `json:"since"`
}

// TypingTracker remembers who is typing in which group. Entries expire after ttl
// unless refreshed.
type TypingTracker struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	groups map[string]map[string]typingEntry
}

type typingEntry struct {
	typist  Typist
	expires time.Time
}

// NewTypingTracker creates a tracker with the given expiry
func NewTypingTracker(ttl time.Duration) *TypingTracker {
	return &TypingTracker{
		ttl:    ttl,
		now:    time.Now,
		groups: make(map[string]map[string]typingEntry),
	}
}

// Set records that userID started or stopped typing in groupID
func (t *TypingTracker) Set(groupID, userID, userName string, typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members := t.groups[groupID]
	if !typing {
		if members != nil {
			delete(members, userID)
			if len(members) == 0 {
				delete(t.groups, groupID)
			}
		}
		return
	}

	if members == nil {
		members = make(map[string]typingEntry)
		t.groups[groupID] = members
	}
	now := t.now()
	entry, ok := members[userID]
	if !ok {
		entry.typist = Typist{UserID: userID, Since: now}
	}
	entry.typist.UserName = userName
	entry.expires = now.Add(t.ttl)
	members[userID] = entry
}

// Typing lists the members typing in groupID, oldest first, leaving out exceptUserID
func (t *TypingTracker) Typing(groupID, exceptUserID string) []Typist {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	out := []Typist{}
	for id, e := range t.groups[groupID] {
		if now.After(e.expires) {
			delete(t.groups[groupID], id)
			continue
		}
		if id == exceptUserID {
			continue
		}
		out = append(out, e.typist)
	}
	if len(t.groups[groupID]) == 0 {
		delete(t.groups, groupID)
	}

	slices.SortFunc(out, func(a, b Typist) int {
		if c := a.Since.Compare(b.Since); c != 0 {
			return c
		}
		if a.UserID < b.UserID {
			return -1
		}
		if a.UserID > b.UserID {
			return 1
		}
		return 0
	})
	return out
}

// IndicatorText renders the typing line shown under a conversation
func IndicatorText(typists []Typist) string {
	switch len(typists) {
	case 0:
		return ""
	case 1:
		name := typists[0].UserName
		if name == "" {
			name = "Someone"
		}
		return name + " is typing"
	case 2:
		return fmt.Sprintf("%s and %s are typing", typists[0].UserName, typists[1].UserName)
	default:
		return "Several people are typing"
	}
}
