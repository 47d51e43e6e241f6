package discovery

import (
	"context"
	"errors"
	"testing"

	"zion/gateway/internal/apperrors"
	"zion/gateway/internal/generation"
	"zion/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Suggestions(ctx context.Context, limit int) ([]models.Suggestion, error) {
	args := m.Called(limit)
	out, _ := args.Get(0).([]models.Suggestion)
	return out, args.Error(1)
}

func (m *mockSource) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	args := m.Called(ctx, query, limit)
	out, _ := args.Get(0).([]models.UserSummary)
	return out, args.Error(1)
}

func (m *mockSource) Follow(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

func (m *mockSource) SendFriendRequest(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		in   models.Suggestion
		want []models.SuggestionCategory
	}{
		{
			name: "tags win over text",
			in:   models.Suggestion{ReasonTags: []string{"Nearby"}, SuggestionReasons: []string{"Коллега по работе"}},
			want: []models.SuggestionCategory{models.CategoryNearby},
		},
		{
			name: "russian reasons",
			in:   models.Suggestion{SuggestionReasons: []string{"Живёт в Москве", "Коллега по работе"}},
			want: []models.SuggestionCategory{models.CategoryNearby, models.CategoryColleagues},
		},
		{
			name: "mutual count",
			in:   models.Suggestion{MutualFriendsCount: 3, SuggestionReasons: []string{"3 общих друга"}},
			want: []models.SuggestionCategory{models.CategoryMutual},
		},
		{
			name: "school counts as colleagues",
			in:   models.Suggestion{SuggestionReasons: []string{"Из одной школы"}},
			want: []models.SuggestionCategory{models.CategoryNearby, models.CategoryColleagues},
		},
		{
			name: "nothing recognised",
			in:   models.Suggestion{SuggestionReasons: []string{"Новый пользователь"}},
			want: []models.SuggestionCategory{models.CategoryOther},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := c.in
			Categorize(&s)
			assert.Equal(t, c.want, s.Categories)
		})
	}
}

func loaded(t *testing.T, src *mockSource) *Discovery {
	t.Helper()
	src.On("Suggestions", SuggestionLimit).Return([]models.Suggestion{
		{ID: "u1", MutualFriendsCount: 2},
		{ID: "u2", SuggestionReasons: []string{"Живёт в Казани"}},
		{ID: "u3", ReasonTags: []string{"colleagues"}},
		{ID: "u4"},
	}, nil)
	d := New(src, nil)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestFilters(t *testing.T) {
	d := loaded(t, new(mockSource))

	all := d.View(FilterAll)
	assert.Len(t, all.Suggestions, 4)
	assert.Equal(t, map[Filter]int{FilterAll: 4, FilterMutual: 1, FilterNearby: 1, FilterColleagues: 1}, all.Counts)

	nearby := d.View(FilterNearby)
	require.Len(t, nearby.Suggestions, 1)
	assert.Equal(t, "u2", nearby.Suggestions[0].ID)

	_, err := ParseFilter("popular")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)
}

func TestSearchMinimumLength(t *testing.T) {
	src := new(mockSource)
	d := New(src, nil)

	users, err := d.Search(context.Background(), " a ")
	require.NoError(t, err)
	assert.Empty(t, users)
	src.AssertNotCalled(t, "SearchUsers", mock.Anything, mock.Anything, mock.Anything)

	src.On("SearchUsers", mock.Anything, "an", SearchLimit).Return([]models.UserSummary{{ID: "u1"}}, nil)
	users, err = d.Search(context.Background(), "an")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNewerSearchDiscardsOlder(t *testing.T) {
	src := new(mockSource)
	d := New(src, nil)

	started := make(chan struct{})
	src.On("SearchUsers", mock.Anything, "an", SearchLimit).Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.Canceled)
	src.On("SearchUsers", mock.Anything, "ann", SearchLimit).Return([]models.UserSummary{{ID: "u9"}}, nil)

	first := make(chan error, 1)
	go func() {
		_, err := d.Search(context.Background(), "an")
		first <- err
	}()
	<-started

	users, err := d.Search(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "u9", users[0].ID)
	assert.ErrorIs(t, <-first, generation.ErrStale)
}

func TestFollow(t *testing.T) {
	src := new(mockSource)
	d := loaded(t, src)
	src.On("Follow", "u1").Return(nil)
	src.On("Follow", "u2").Return(errors.New("down"))

	assert.True(t, d.Follow(context.Background(), "u1"))
	assert.False(t, d.Follow(context.Background(), "u2"))

	for _, s := range d.View(FilterAll).Suggestions {
		assert.Equal(t, s.ID == "u1", s.IsFollowing, s.ID)
	}
}

func TestFriendRequestDeduplicated(t *testing.T) {
	src := new(mockSource)
	d := New(src, nil)
	src.On("SendFriendRequest", "u1").Return(nil).Once()
	src.On("SendFriendRequest", "u2").Return(apperrors.HTTP(400, "Request exists")).Once()
	src.On("SendFriendRequest", "u2").Return(nil).Once()

	require.NoError(t, d.SendFriendRequest(context.Background(), "u1"))
	assert.ErrorIs(t, d.SendFriendRequest(context.Background(), "u1"), ErrRequestAlreadySent)

	// a failed request can be retried
	assert.Error(t, d.SendFriendRequest(context.Background(), "u2"))
	require.NoError(t, d.SendFriendRequest(context.Background(), "u2"))

	assert.ElementsMatch(t, []string{"u1", "u2"}, d.View(FilterAll).SentRequests)
	src.AssertExpectations(t)
}

func TestDismiss(t *testing.T) {
	d := loaded(t, new(mockSource))
	d.Dismiss("u2")
	d.Dismiss("nobody")
	assert.Len(t, d.View(FilterAll).Suggestions, 3)
	assert.Empty(t, d.View(FilterNearby).Suggestions)
}
