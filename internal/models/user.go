package models

import "strings"

// UserSummary is the author/sender shape embedded in posts, messages and search results
type UserSummary struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name,omitempty"`
	LastName       string  `json:"last_name,omitempty"`
	Name           string  `json:"name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// DisplayName prefers the explicit name, then first + last name
func (u UserSummary) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
