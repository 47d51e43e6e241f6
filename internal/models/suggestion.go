package models

// SuggestionCategory is the typed reason a person is suggested
type SuggestionCategory string

const (
	CategoryMutual     SuggestionCategory = "mutual"
	CategoryNearby     SuggestionCategory = "nearby"
	CategoryColleagues SuggestionCategory = "colleagues"
	CategoryFollowed   SuggestionCategory = "followed"
	CategoryOther      SuggestionCategory = "other"
)

// Suggestion is a person the user may know
type Suggestion struct {
	ID                 string               `json:"id"`
	FirstName          string               `json:"first_name"`
	LastName           string               `json:"last_name"`
	ProfilePicture     *string              `json:"profile_picture,omitempty"`
	MutualFriendsCount int                  `json:"mutual_friends_count"`
	SuggestionReasons  []string             `json:"suggestion_reasons"`
	ReasonTags         []string             `json:"reason_tags,omitempty"`
	IsFollowing        bool                 `json:"is_following"`
	Categories         []SuggestionCategory `json:"categories"`
}

// HasCategory reports whether c was assigned to the suggestion
func (s Suggestion) HasCategory(c SuggestionCategory) bool {
	for _, have := range s.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// SuggestionList is the upstream response of GET /api/users/suggestions
type SuggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// UserSearchResult is the upstream response of GET /api/users/search
type UserSearchResult struct {
	Users []UserSummary `json:"users"`
}
