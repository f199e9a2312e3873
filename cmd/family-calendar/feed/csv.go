package feed

import (
	"family-calendar-backend/cmd/family-calendar/model"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

type EventCSV struct {
	ID                string `csv:"id"`
	Title             string `csv:"title"`
	Type              string `csv:"type"`
	Status            string `csv:"status"`
	StartDate         string `csv:"start_date"`
	EndDate           string `csv:"end_date"`
	Location          string `csv:"location"`
	MeetingURL        string `csv:"meeting_url"`
	IsImportant       bool   `csv:"is_important"`
	RecurrencePattern string `csv:"recurrence_pattern"`
	SharedWith        string `csv:"shared_with"`
	Description       string `csv:"description"`
}

// CSV renders events with dates in loc, one row per event.
func CSV(events []model.EventView, loc *time.Location) ([]byte, error) {
	rows := make([]EventCSV, 0, len(events))
	for _, e := range events {
		row := EventCSV{
			ID:          e.ID,
			Title:       e.Title,
			Type:        e.Type.Name,
			Status:      string(e.Status.Normalized()),
			StartDate:   e.StartDate.In(loc).Format(time.RFC3339),
			Location:    e.Location,
			MeetingURL:  e.MeetingURL,
			IsImportant: e.IsImportant,
			SharedWith:  strings.Join(e.SharedWith, ";"),
			Description: e.Description,
		}
		if e.EndDate != nil {
			row.EndDate = e.EndDate.In(loc).Format(time.RFC3339)
		}
		if e.IsRecurring {
			row.RecurrencePattern = e.RecurrencePattern
		}
		rows = append(rows, row)
	}

	return gocsv.MarshalBytes(&rows)
}
