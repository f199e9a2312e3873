package feed

import (
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

const productID = "-//family-calendar//calendar export//ES"

// RRule renders a stored recurrence pattern as an RFC 5545 RRULE value.
// The pattern stays advisory: nothing here expands occurrences.
func RRule(pattern string) (string, error) {
	freq, err := rrule.StrToFreq(strings.ToUpper(strings.TrimSpace(pattern)))
	if err != nil {
		return "", fmt.Errorf("recurrence pattern %q: %w", pattern, err)
	}
	switch freq {
	case rrule.DAILY, rrule.WEEKLY, rrule.MONTHLY, rrule.YEARLY:
	default:
		return "", fmt.Errorf("recurrence pattern %q is not supported", pattern)
	}

	opt := rrule.ROption{Freq: freq}
	return opt.RRuleString(), nil
}

// ICS serializes events as a VCALENDAR document.
func ICS(name string, events []model.EventView, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
	}

	for _, e := range events {
		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(e.CreatedAt.UTC())
		ev.SetModifiedAt(e.UpdatedAt.UTC())
		ev.SetStartAt(e.StartDate.UTC())
		ev.SetEndAt(e.EffectiveEnd().UTC())
		ev.SetSummary(e.Title)

		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		if e.MeetingURL != "" {
			ev.SetURL(e.MeetingURL)
		}
		if e.Type.Name != "" {
			ev.AddProperty(ical.ComponentPropertyCategories, e.Type.Name)
		}
		if e.IsImportant {
			ev.AddProperty(ical.ComponentPropertyPriority, "1")
		}
		ev.SetStatus(icsStatus(e.Status))

		if e.IsRecurring && e.RecurrencePattern != "" {
			if rule, err := RRule(e.RecurrencePattern); err == nil {
				ev.AddProperty(ical.ComponentPropertyRrule, rule)
			}
		}
	}

	return cal.Serialize()
}

func icsStatus(s model.EventStatus) ical.ObjectStatus {
	switch s.Normalized() {
	case model.Cancelled:
		return ical.ObjectStatusCancelled
	case model.Completed:
		return ical.ObjectStatusCompleted
	default:
		return ical.ObjectStatusConfirmed
	}
}
