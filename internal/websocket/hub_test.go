package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"zion/gateway/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(allowed map[string]bool) *Hub {
	check := func(ctx context.Context, userID, roomID string) bool {
		return allowed[userID+"/"+roomID]
	}
	return NewHub(chat.NewTypingTracker(time.Minute), check, check, nil)
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return WSMessage{}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message %s", data)
	default:
	}
}

func TestSubscribeRequiresAuthorization(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/g1": true})
	c := NewClient("u1", nil, h)
	h.registerClient(c)

	assert.True(t, h.Subscribe(context.Background(), c, "g1"))
	assert.False(t, h.Subscribe(context.Background(), c, "g2"))
	assert.False(t, h.Subscribe(context.Background(), c, ""))
	assert.True(t, h.IsSubscribed("u1", "g1"))
	assert.Equal(t, 1, h.RoomCount())

	h.Unsubscribe(c, "g1")
	assert.False(t, h.IsSubscribed("u1", "g1"))
	assert.Zero(t, h.RoomCount())
}

func TestGroupBroadcastSkipsSenderAndOutsiders(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/g1": true, "u2/g1": true})
	c1, c2, c3 := NewClient("u1", nil, h), NewClient("u2", nil, h), NewClient("u3", nil, h)
	for _, c := range []*Client{c1, c2, c3} {
		h.registerClient(c)
	}
	require.True(t, h.Subscribe(context.Background(), c1, "g1"))
	require.True(t, h.Subscribe(context.Background(), c2, "g1"))

	h.NotifyGroupMessage("g1", "u1", "m1")

	msg := receive(t, c2)
	assert.Equal(t, EventGroupMessageSent, msg.Type)
	assertSilent(t, c1)
	assertSilent(t, c3)
}

func TestTypingRelayedToRoom(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/g1": true, "u2/g1": true})
	c1, c2 := NewClient("u1", nil, h), NewClient("u2", nil, h)
	h.registerClient(c1)
	h.registerClient(c2)
	require.True(t, h.Subscribe(context.Background(), c1, "g1"))
	require.True(t, h.Subscribe(context.Background(), c2, "g1"))

	c1.handleIncomingMessage(context.Background(), IncomingMessage{
		Type:    EventTypingStart,
		Payload: IncomingFields{GroupID: "g1", UserName: "Anna"},
	})

	msg := receive(t, c2)
	assert.Equal(t, EventTypingStart, msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "Anna is typing", payload["text"])
	assert.Len(t, h.Typing().Typing("g1", "u2"), 1)

	h.unregisterClient(c1)
	assert.Empty(t, h.Typing().Typing("g1", ""))
}

func TestReconnectReplacesOldClient(t *testing.T) {
	h := newTestHub(nil)
	old := NewClient("u1", nil, h)
	h.registerClient(old)
	fresh := NewClient("u1", nil, h)
	h.registerClient(fresh)

	_, open := <-old.Send
	assert.False(t, open)

	// the stale client unregistering must not evict the new one
	h.unregisterClient(old)
	assert.True(t, h.IsUserOnline("u1"))
	assert.Equal(t, 1, h.GetOnlineCount())
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newTestHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := NewClient("u1", nil, h)
	h.Register <- c
	assert.Eventually(t, func() bool { return h.IsUserOnline("u1") }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, h.GetOnlineCount())
}

func TestWishListChangeReachesWatchersOnly(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/e1": true, "u2/e1": true})
	actor, watcher, outsider := NewClient("u1", nil, h), NewClient("u2", nil, h), NewClient("u3", nil, h)
	h.registerClient(actor)
	h.registerClient(watcher)
	h.registerClient(outsider)

	require.True(t, h.WatchEvent(context.Background(), actor, "e1"))
	require.True(t, h.WatchEvent(context.Background(), watcher, "e1"))
	assert.False(t, h.WatchEvent(context.Background(), outsider, "e1"))

	h.NotifyWishList("e1", 3, "u1")

	msg := receive(t, watcher)
	assert.Equal(t, EventWishListChanged, msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "e1", payload["eventId"])
	assert.EqualValues(t, 3, payload["index"])
	assertSilent(t, actor)
	assertSilent(t, outsider)

	h.UnwatchEvent(watcher, "e1")
	h.NotifyWishList("e1", 4, "u1")
	assertSilent(t, watcher)
}

func TestWatchEventOverSocketMessage(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/e1": true})
	c := NewClient("u1", nil, h)
	h.registerClient(c)

	c.handleIncomingMessage(context.Background(), IncomingMessage{Type: EventSubscribe, Payload: IncomingFields{EventID: "e1"}})
	msg := receive(t, c)
	assert.Equal(t, EventSubscribed, msg.Type)
	assert.Equal(t, "e1", msg.Payload.(map[string]interface{})["eventId"])

	c.handleIncomingMessage(context.Background(), IncomingMessage{Type: EventSubscribe, Payload: IncomingFields{EventID: "e2"}})
	assert.Equal(t, EventError, receive(t, c).Type)

	h.unregisterClient(c)
	h.mu.RLock()
	assert.Empty(t, h.events)
	h.mu.RUnlock()
}

func TestTypingTextLeavesOutRecipient(t *testing.T) {
	h := newTestHub(map[string]bool{"u1/g1": true, "u2/g1": true, "u3/g1": true})
	c1, c2, c3 := NewClient("u1", nil, h), NewClient("u2", nil, h), NewClient("u3", nil, h)
	for _, c := range []*Client{c1, c2, c3} {
		h.registerClient(c)
		require.True(t, h.Subscribe(context.Background(), c, "g1"))
	}

	c2.handleIncomingMessage(context.Background(), IncomingMessage{
		Type:    EventTypingStart,
		Payload: IncomingFields{GroupID: "g1", UserName: "Bea"},
	})
	receive(t, c1)
	receive(t, c3)

	c1.handleIncomingMessage(context.Background(), IncomingMessage{
		Type:    EventTypingStart,
		Payload: IncomingFields{GroupID: "g1", UserName: "Anna"},
	})

	// u2 is typing too but only sees the others
	toTypist := receive(t, c2).Payload.(map[string]interface{})
	assert.Equal(t, "Anna is typing", toTypist["text"])

	toReader := receive(t, c3).Payload.(map[string]interface{})
	assert.Contains(t, toReader["text"], "Anna")
	assert.Contains(t, toReader["text"], "Bea")
	assertSilent(t, c1)
}
