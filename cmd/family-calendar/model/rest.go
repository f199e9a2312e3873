package model

import "time"

type BaseResponse struct {
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type EventCreateRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Notes             string     `json:"notes"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Location          string     `json:"location"`
	MeetingURL        string     `json:"meeting_url"`
	EventTypeID       *string    `json:"event_type_id"`
	IsImportant       bool       `json:"is_important"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern"`
	SharedWith        []string   `json:"shared_with"`
}

// EventPatch is a partial update. Nil fields are left unchanged; the Clear
// flags exist because a JSON null cannot be told apart from an absent key.
type EventPatch struct {
	Title             *string      `json:"title"`
	Description       *string      `json:"description"`
	Notes             *string      `json:"notes"`
	StartDate         *time.Time   `json:"start_date"`
	EndDate           *time.Time   `json:"end_date"`
	ClearEndDate      bool         `json:"clear_end_date"`
	Location          *string      `json:"location"`
	MeetingURL        *string      `json:"meeting_url"`
	EventTypeID       *string      `json:"event_type_id"`
	ClearEventType    bool         `json:"clear_event_type"`
	Status            *EventStatus `json:"status"`
	IsImportant       *bool        `json:"is_important"`
	IsRecurring       *bool        `json:"is_recurring"`
	RecurrencePattern *string      `json:"recurrence_pattern"`
}

type ShareRequest struct {
	SharedWith []string `json:"shared_with"`
}

type EditorsRequest struct {
	AllowedEditors []string `json:"allowed_editors"`
}

type InviteRequest struct {
	Email string `json:"email"`
}
