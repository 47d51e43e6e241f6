package models

// ActionType is the kind of a scheduled action
type ActionType string

const (
	ActionReminder    ActionType = "REMINDER"
	ActionBirthday    ActionType = "BIRTHDAY"
	ActionAppointment ActionType = "APPOINTMENT"
	ActionEvent       ActionType = "EVENT"
)

// ScheduledAction is a dated item attached to one chat group.
// Group and ModuleColor are filled in by the gateway, not upstream.
type ScheduledAction struct {
	ID            string     `json:"id"`
	GroupID       string     `json:"group_id"`
	Title         string     `json:"title"`
	ActionType    ActionType `json:"action_type"`
	ScheduledDate string     `json:"scheduled_date"`
	ScheduledTime *string    `json:"scheduled_time,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Description   *string    `json:"description,omitempty"`
	IsCompleted   bool       `json:"is_completed"`
	Group         *ChatGroup `json:"group,omitempty"`
	ModuleColor   string     `json:"module_color,omitempty"`
}

// ScheduledActionList is the upstream response of GET /api/chat-groups/{id}/scheduled-actions
type ScheduledActionList struct {
	ScheduledActions []ScheduledAction `json:"scheduled_actions"`
}

// CalendarDay is a derived, never persisted, cell of the month view
type CalendarDay struct {
	Date           string            `json:"date"`
	Day            int               `json:"day"`
	Actions        []ScheduledAction `json:"actions"`
	IsToday        bool              `json:"is_today"`
	IsCurrentMonth bool              `json:"is_current_month"`
}
