package service

import (
	"family-calendar-backend/cmd/family-calendar/model"
	"time"
)

// GridStart returns the first day shown on the month grid: the week-start
// day on or before the 1st of the month.
func GridStart(year int, month time.Month, loc *time.Location, weekStart time.Weekday) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	return first.AddDate(0, 0, -offset)
}

// BuildMonthGrid lays out six full weeks so the layout never changes height.
// Events are expected in fetch order (start ascending); indicators follow
// that order and stop at model.MaxIndicators, while EventCount keeps the
// full number.
func BuildMonthGrid(year int, month time.Month, events []model.Event, now time.Time, loc *time.Location, weekStart time.Weekday) model.MonthGrid {
	byDay := map[string][]model.Event{}
	for _, e := range events {
		key := dayKey(e.StartDate, loc)
		byDay[key] = append(byDay[key], e)
	}

	start := GridStart(year, month, loc, weekStart)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	grid := model.MonthGrid{
		Year:  first.Year(),
		Month: first.Month(),
		Cells: make([]model.CalendarCell, 0, model.GridCells),
	}

	for i := 0; i < model.GridCells; i++ {
		day := start.AddDate(0, 0, i)
		cell := model.CalendarCell{Day: day.Day()}

		if day.Month() != first.Month() || day.Year() != first.Year() {
			if day.Before(first) {
				cell.IsPrevMonth = true
			} else {
				cell.IsNextMonth = true
			}
			grid.Cells = append(grid.Cells, cell)
			continue
		}

		date := day
		cell.Date = &date
		cell.IsToday = sameDay(day, now, loc)

		dayEvents := byDay[dayKey(day, loc)]
		cell.EventCount = len(dayEvents)
		for _, e := range dayEvents {
			if len(cell.Indicators) == model.MaxIndicators {
				break
			}
			cell.Indicators = append(cell.Indicators, model.ResolveType(e).Color)
		}

		grid.Cells = append(grid.Cells, cell)
	}

	return grid
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
