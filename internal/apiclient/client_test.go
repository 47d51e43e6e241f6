package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"zion/gateway/internal/apperrors"
	"zion/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "tok-123", WithRetries(3, time.Millisecond))
}

func TestFeedSendsBearerAndPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/news/posts/feed", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		_ = json.NewEncoder(w).Encode(models.PostPage{
			Posts:   []models.Post{{ID: "p1", LikesCount: 2}},
			HasMore: true,
		})
	})

	page, err := c.Feed(context.Background(), 20, 40)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "p1", page.Posts[0].ID)
}

func TestChannelPostsEscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/news/posts/channel/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"posts":[],"has_more":false}`))
	})
	_, err := c.ChannelPosts(context.Background(), "a/b", 20, 0)
	require.NoError(t, err)
}

func TestErrorDetailSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not a member of this group"}`))
	})

	_, err := c.Messages(context.Background(), "g1")
	require.Error(t, err)
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
	assert.Equal(t, "Not a member of this group", apperrors.UserMessage(err))
}

func TestStructuredDetailFallsBackToGeneric(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","content"],"msg":"field required"}]}`))
	})

	err := c.SendMessage(context.Background(), models.SendMessageRequest{GroupID: "g1", Content: "hi", MessageType: models.MessageTypeText})
	require.Error(t, err)
	assert.Equal(t, apperrors.MsgGeneric, apperrors.UserMessage(err))
}

func TestGetRetriesOnUnavailable(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"chat_groups":[{"group":{"id":"g1","name":"Home","group_type":"FAMILY"},"member_count":3}]}`))
	})

	groups, err := c.ChatGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupTypeFamily, groups[0].Group.GroupType)
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.LikePost(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNetworkFailureIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, "t", WithRetries(1, time.Millisecond))
	_, err := c.ChatGroups(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
}

func TestCanceledContextIsNotNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ScheduledActions(ctx, "g1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreatePostBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])
		assert.Equal(t, "FRIENDS_ONLY", body["visibility"])
		assert.Nil(t, body["channel_id"])
		assert.Equal(t, []any{}, body["media_files"])
		assert.Equal(t, []any{}, body["youtube_urls"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new"}`))
	})

	post, err := c.CreatePost(context.Background(), models.CreatePostRequest{Content: "hello", Visibility: models.VisibilityFriendsOnly})
	require.NoError(t, err)
	assert.Equal(t, "new", post.ID)
}

func TestClaimAndUnclaimWish(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.ClaimWish(context.Background(), "e1", 2))
	require.NoError(t, c.UnclaimWish(context.Background(), "e1", 2))
	assert.Equal(t, []string{
		"POST /api/events/e1/wish-list/2/claim",
		"DELETE /api/events/e1/wish-list/2/claim",
	}, seen)
}

func TestAnalyticsPassThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30d", r.URL.Query().Get("period"))
		_, _ = w.Write([]byte(`{"organization_name":"Acme","posts":{"total":4}}`))
	})

	doc, err := c.Analytics(context.Background(), "org1", models.Period30d)
	require.NoError(t, err)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"organization_name":"Acme","posts":{"total":4}}`, string(out))
}

func TestSearchUsersQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ann lee", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"users":[{"id":"u1","first_name":"Ann"}]}`))
	})

	users, err := c.SearchUsers(context.Background(), "ann lee", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].DisplayName())
}
