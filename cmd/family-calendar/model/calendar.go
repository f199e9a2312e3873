package model

import "time"

// GridCells is the fixed size of a month grid: six weeks of seven days.
const GridCells = 42

// MaxIndicators caps the color dots shown on a grid cell.
const MaxIndicators = 3

// CalendarCell is one day of a month grid. Cells outside the month are
// ghosts and only carry their day-of-month number.
type CalendarCell struct {
	Day         int        `json:"day"`
	Date        *time.Time `json:"date,omitempty"`
	IsPrevMonth bool       `json:"is_prev_month"`
	IsNextMonth bool       `json:"is_next_month"`
	IsToday     bool       `json:"is_today"`
	Indicators  []string   `json:"indicators,omitempty"`
	EventCount  int        `json:"event_count"`
}

func (c CalendarCell) Ghost() bool {
	return c.IsPrevMonth || c.IsNextMonth
}

type MonthGrid struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Cells []CalendarCell `json:"cells"`
}

type Stats struct {
	Completed int64 `json:"completed"`
	Upcoming  int64 `json:"upcoming"`
	Overdue   int64 `json:"overdue"`
}

// SweepResult reports what a status sweep changed.
type SweepResult struct {
	Completed []string `json:"completed"`
	Overdue   []string `json:"overdue"`
}
