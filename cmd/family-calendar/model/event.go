package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type EventStatus string

var (
	Scheduled EventStatus = "scheduled"
	Completed EventStatus = "completed"
	Overdue   EventStatus = "overdue"
	Cancelled EventStatus = "cancelled"

	// Pending is a legacy value still found in old rows. It is read as Scheduled.
	Pending EventStatus = "pending"
)

func (s EventStatus) Valid() bool {
	switch s {
	case Scheduled, Completed, Overdue, Cancelled:
		return true
	}
	return false
}

// Normalized folds legacy values into their current meaning.
func (s EventStatus) Normalized() EventStatus {
	if s == Pending || s == "" {
		return Scheduled
	}
	return s
}

// ShareFamily is the shared_with entry meaning "every current family member".
const ShareFamily = "family"

var RecurrencePatterns = []string{"daily", "weekly", "monthly", "yearly"}

func ValidRecurrencePattern(p string) bool {
	for _, v := range RecurrencePatterns {
		if strings.EqualFold(v, p) {
			return true
		}
	}
	return false
}

type Event struct {
	ID                string      `gorm:"column:id;primaryKey" json:"id"`
	UserID            string      `gorm:"column:user_id;index" json:"user_id"`
	CreatedBy         string      `gorm:"column:created_by" json:"created_by"`
	Title             string      `gorm:"column:title" json:"title"`
	Description       string      `gorm:"column:description" json:"description,omitempty"`
	Notes             string      `gorm:"column:notes" json:"notes,omitempty"`
	StartDate         time.Time   `gorm:"column:start_date;index" json:"start_date"`
	EndDate           *time.Time  `gorm:"column:end_date" json:"end_date,omitempty"`
	Location          string      `gorm:"column:location" json:"location,omitempty"`
	MeetingURL        string      `gorm:"column:meeting_url" json:"meeting_url,omitempty"`
	EventTypeID       *string     `gorm:"column:event_type_id;index" json:"event_type_id"`
	Status            EventStatus `gorm:"column:status" json:"status"`
	IsImportant       bool        `gorm:"column:is_important" json:"is_important"`
	IsRecurring       bool        `gorm:"column:is_recurring" json:"is_recurring"`
	RecurrencePattern string      `gorm:"column:recurrence_pattern" json:"recurrence_pattern,omitempty"`
	SharedWith        []string    `gorm:"column:shared_with;type:text;serializer:json" json:"shared_with"`
	FallbackIcon      string      `gorm:"column:fallback_icon" json:"fallback_icon,omitempty"`
	FallbackColor     string      `gorm:"column:fallback_color" json:"fallback_color,omitempty"`
	FallbackBgColor   string      `gorm:"column:fallback_bg_color" json:"fallback_bg_color,omitempty"`
	CreatedAt         time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"column:updated_at" json:"updated_at"`

	EventType *EventType `gorm:"foreignKey:EventTypeID" json:"-"`
}

func (m *Event) TableName() string {
	return "events"
}

// BeforeSave stores every instant in UTC. The sqlite driver keeps timestamps
// as text, so range filters only order correctly with a single offset.
func (m *Event) BeforeSave(*gorm.DB) error {
	m.StartDate = m.StartDate.UTC()
	if m.EndDate != nil {
		end := m.EndDate.UTC()
		m.EndDate = &end
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

// EffectiveEnd is end_date when present, otherwise start_date.
func (m *Event) EffectiveEnd() time.Time {
	if m.EndDate != nil {
		return *m.EndDate
	}
	return m.StartDate
}

// InProgress is a display-only state and is never persisted.
func (m *Event) InProgress(now time.Time) bool {
	if m.Status.Normalized() != Scheduled || m.EndDate == nil {
		return false
	}
	return !now.Before(m.StartDate) && now.Before(*m.EndDate)
}

type TypeState string

const (
	TypeResolved TypeState = "resolved"
	TypeOrphaned TypeState = "orphaned"
)

// TypeRef is the display metadata of an event's type. When the type was
// deleted it is built from the event's snapshot fields and marked orphaned.
type TypeRef struct {
	State   TypeState `json:"state"`
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Icon    string    `json:"icon"`
	Color   string    `json:"color"`
	BgColor string    `json:"bg_color"`
}

// EventView is an event hydrated with its type metadata.
type EventView struct {
	Event
	Type       TypeRef `json:"type"`
	InProgress bool    `json:"in_progress"`
}

func ResolveType(e Event) TypeRef {
	if e.EventTypeID != nil && e.EventType != nil {
		return TypeRef{
			State:   TypeResolved,
			ID:      e.EventType.ID,
			Name:    e.EventType.Name,
			Icon:    e.EventType.Icon,
			Color:   e.EventType.Color,
			BgColor: e.EventType.BgColor,
		}
	}

	ref := TypeRef{
		State:   TypeOrphaned,
		Icon:    e.FallbackIcon,
		Color:   e.FallbackColor,
		BgColor: e.FallbackBgColor,
	}
	if ref.Icon == "" {
		ref.Icon = DefaultTypeIcon
	}
	if ref.Color == "" {
		ref.Color = DefaultTypeColor
	}
	if ref.BgColor == "" {
		ref.BgColor = DefaultTypeBgColor
	}
	return ref
}

func NewEventView(e Event, now time.Time) EventView {
	return EventView{
		Event:      e,
		Type:       ResolveType(e),
		InProgress: e.InProgress(now),
	}
}
