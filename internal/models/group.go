package models

// GroupType classifies a chat group
type GroupType string

const (
	GroupTypeFamily    GroupType = "FAMILY"
	GroupTypeRelatives GroupType = "RELATIVES"
	GroupTypeCustom    GroupType = "CUSTOM"
	GroupTypeChannel   GroupType = "CHANNEL"
	GroupTypeWork      GroupType = "WORK"
)

// ChatGroup represents a chat group
type ChatGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GroupType   GroupType `json:"group_type"`
	ColorCode   string    `json:"color_code,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Membership is one entry of the current user's group list
type Membership struct {
	Group       ChatGroup `json:"group"`
	MemberCount int       `json:"member_count"`
}

// MembershipList is the upstream response of GET /api/chat-groups
type MembershipList struct {
	ChatGroups []Membership `json:"chat_groups"`
}
