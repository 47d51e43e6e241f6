package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zion/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReusesWorkspacePerToken(t *testing.T) {
	r := NewRegistry(Options{UpstreamURL: "http://upstream"}, nil)

	w1 := r.Get("u1", "tok-a")
	assert.Same(t, w1, r.Get("u1", "tok-a"))
	assert.Same(t, w1.Feed(""), w1.Feed(""))
	assert.NotSame(t, w1.Feed(""), w1.Feed("ch1"))
	assert.Same(t, w1.Chat("g1"), w1.Chat("g1"))

	w2 := r.Get("u1", "tok-b")
	assert.NotSame(t, w1, w2)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, w2, got)

	r.Remove("u1")
	_, ok = r.Lookup("u1")
	assert.False(t, ok)
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(Options{IdleTTL: time.Minute}, nil)
	r.now = func() time.Time { return now }

	r.Get("old", "t")
	now = now.Add(50 * time.Second)
	r.Get("fresh", "t")
	now = now.Add(20 * time.Second)

	assert.Equal(t, 1, r.Evict())
	_, ok := r.Lookup("fresh")
	assert.True(t, ok)
	_, ok = r.Lookup("old")
	assert.False(t, ok)
}

func TestIsMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.MembershipList{ChatGroups: []models.Membership{
			{Group: models.ChatGroup{ID: "g1", GroupType: models.GroupTypeFamily}},
		}})
	}))
	defer srv.Close()

	r := NewRegistry(Options{UpstreamURL: srv.URL, HTTPClient: srv.Client()}, nil)
	w := r.Get("u1", "tok")
	assert.True(t, w.IsMember(context.Background(), "g1"))
	assert.False(t, w.IsMember(context.Background(), "g2"))
}

func TestEventAuthorizerNeedsOpenedWishList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/events/e1/wish-list" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.WishList{EventID: "e1"})
	}))
	defer srv.Close()

	r := NewRegistry(Options{UpstreamURL: srv.URL, HTTPClient: srv.Client()}, nil)
	allow := r.EventAuthorizer()
	assert.False(t, allow(context.Background(), "u1", "e1"))

	w := r.Get("u1", "tok")
	assert.False(t, allow(context.Background(), "u1", "e1"))

	_, err := w.Wishes.Load(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, allow(context.Background(), "u1", "e1"))

	_, err = w.Wishes.Load(context.Background(), "e2")
	require.Error(t, err)
	assert.False(t, allow(context.Background(), "u1", "e2"))
	assert.False(t, allow(context.Background(), "u2", "e1"))
}
