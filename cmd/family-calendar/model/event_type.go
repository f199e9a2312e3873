package model

import (
	_ "embed"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTypeIcon    = "calendar"
	DefaultTypeColor   = "text-gray-600"
	DefaultTypeBgColor = "bg-gray-100"
)

type EventType struct {
	ID               string    `gorm:"column:id;primaryKey" json:"id" yaml:"-"`
	UserID           string    `gorm:"column:user_id;uniqueIndex:idx_event_types_user_name" json:"user_id" yaml:"-"`
	Name             string    `gorm:"column:name;uniqueIndex:idx_event_types_user_name" json:"name" yaml:"name"`
	Icon             string    `gorm:"column:icon" json:"icon" yaml:"icon"`
	Color            string    `gorm:"column:color" json:"color" yaml:"color"`
	BgColor          string    `gorm:"column:bg_color" json:"bg_color" yaml:"bg_color"`
	RequiresEndTime  bool      `gorm:"column:requires_end_time" json:"requires_end_time" yaml:"requires_end_time"`
	RequiresLocation bool      `gorm:"column:requires_location" json:"requires_location" yaml:"requires_location"`
	RequiresURL      bool      `gorm:"column:requires_url" json:"requires_url" yaml:"requires_url"`
	DefaultRecurring bool      `gorm:"column:default_recurring" json:"default_recurring" yaml:"default_recurring"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at" yaml:"-"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at" yaml:"-"`
}

func (m *EventType) TableName() string {
	return "event_types"
}

// EventTypePatch holds the fields an update may change. Nil means unchanged.
type EventTypePatch struct {
	Name             *string `json:"name"`
	Icon             *string `json:"icon"`
	Color            *string `json:"color"`
	BgColor          *string `json:"bg_color"`
	RequiresEndTime  *bool   `json:"requires_end_time"`
	RequiresLocation *bool   `json:"requires_location"`
	RequiresURL      *bool   `json:"requires_url"`
	DefaultRecurring *bool   `json:"default_recurring"`
}

func (p EventTypePatch) Apply(t *EventType) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		t.Icon = *p.Icon
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.BgColor != nil {
		t.BgColor = *p.BgColor
	}
	if p.RequiresEndTime != nil {
		t.RequiresEndTime = *p.RequiresEndTime
	}
	if p.RequiresLocation != nil {
		t.RequiresLocation = *p.RequiresLocation
	}
	if p.RequiresURL != nil {
		t.RequiresURL = *p.RequiresURL
	}
	if p.DefaultRecurring != nil {
		t.DefaultRecurring = *p.DefaultRecurring
	}
}

//go:embed default_event_types.yaml
var defaultEventTypesYAML []byte

var defaultEventTypes []EventType

func init() {
	var catalog struct {
		Types []EventType `yaml:"types"`
	}
	if err := yaml.Unmarshal(defaultEventTypesYAML, &catalog); err != nil {
		panic(err)
	}
	defaultEventTypes = catalog.Types
}

// DefaultEventTypes returns a fresh copy of the built-in catalog, without ids or owner.
func DefaultEventTypes() []EventType {
	out := make([]EventType, len(defaultEventTypes))
	copy(out, defaultEventTypes)
	return out
}
