package discovery

import (
	"strings"

	"zion/gateway/internal/models"
)

// tagCategories maps server reason tags onto categories
var tagCategories = map[string]models.SuggestionCategory{
	"mutual":         models.CategoryMutual,
	"mutual_friends": models.CategoryMutual,
	"nearby":         models.CategoryNearby,
	"location":       models.CategoryNearby,
	"colleagues":     models.CategoryColleagues,
	"work":           models.CategoryColleagues,
	"school":         models.CategoryColleagues,
	"followed":       models.CategoryFollowed,
	"follows":        models.CategoryFollowed,
}

// reasonMarkers classify free-text reasons when no tags were sent.
// Upstream writes reasons in Russian.
var reasonMarkers = []struct {
	category models.SuggestionCategory
	markers  []string
}{
	{models.CategoryMutual, []string{"общи", "mutual"}},
	{models.CategoryNearby, []string{"живёт", "живет", "из ", "lives in", "from "}},
	{models.CategoryColleagues, []string{"коллега", "школы", "colleague", "school"}},
	{models.CategoryFollowed, []string{"подписан", "follows you"}},
}

// Categorize fills s.Categories. Server tags win over text classification.
// A suggestion with no recognised reason is CategoryOther.
func Categorize(s *models.Suggestion) {
	seen := make(map[models.SuggestionCategory]bool)
	var cats []models.SuggestionCategory
	add := func(c models.SuggestionCategory) {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}

	if len(s.ReasonTags) > 0 {
		for _, tag := range s.ReasonTags {
			if c, ok := tagCategories[strings.ToLower(strings.TrimSpace(tag))]; ok {
				add(c)
			}
		}
	} else {
		for _, reason := range s.SuggestionReasons {
			r := strings.ToLower(reason)
			for _, rm := range reasonMarkers {
				for _, m := range rm.markers {
					if strings.Contains(r, m) {
						add(rm.category)
						break
					}
				}
			}
		}
	}
	if s.MutualFriendsCount > 0 {
		add(models.CategoryMutual)
	}
	if len(cats) == 0 {
		cats = append(cats, models.CategoryOther)
	}
	s.Categories = cats
}
