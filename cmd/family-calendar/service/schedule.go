package service

import (
	"family-calendar-backend/cmd/family-calendar/model"
	"sort"
	"time"
)

// Agenda tiers, lowest first.
const (
	TierToday = iota
	TierFuture
	TierPastOrOverdue
)

// DaySchedule keeps the events whose local start date is day, earliest first.
func DaySchedule(events []model.Event, day time.Time, loc *time.Location) []model.Event {
	out := make([]model.Event, 0)
	for _, e := range events {
		if sameDay(e.StartDate, day, loc) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// ScheduleTier buckets an event for the agenda: today, then future, then
// anything overdue or already past.
func ScheduleTier(e model.Event, now time.Time, loc *time.Location) int {
	if sameDay(e.StartDate, now, loc) {
		return TierToday
	}
	tomorrow := startOfDay(now, loc).AddDate(0, 0, 1)
	if e.Status != model.Overdue && !e.StartDate.Before(tomorrow) {
		return TierFuture
	}
	return TierPastOrOverdue
}

// Agenda orders events by tier and then by start date, so what needs
// attention today comes before what is merely next chronologically.
func Agenda(events []model.Event, now time.Time, loc *time.Location) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)

	tiers := make(map[string]int, len(out))
	for _, e := range out {
		tiers[e.ID] = ScheduleTier(e, now, loc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := tiers[out[i].ID], tiers[out[j].ID]
		if ti != tj {
			return ti < tj
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}
