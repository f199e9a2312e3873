package service

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CalendarService serves the read side: month grid, day/agenda schedule and
// stats. Schedule and stats sweep stale statuses first.
type CalendarService struct {
	events    IEventRepo
	sharing   *SharingEngine
	access    *AccessControl
	status    *StatusMaintainer
	clock     Clock
	loc       *time.Location
	weekStart time.Weekday
	log       *zap.Logger
}

func NewCalendarService(
	events IEventRepo,
	sharing *SharingEngine,
	access *AccessControl,
	status *StatusMaintainer,
	clock Clock,
	loc *time.Location,
	weekStart time.Weekday,
	log *zap.Logger,
) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		events:    events,
		sharing:   sharing,
		access:    access,
		status:    status,
		clock:     clock,
		loc:       loc,
		weekStart: weekStart,
		log:       log.Named("calendar"),
	}
}

func (s *CalendarService) Location() *time.Location {
	return s.loc
}

func (s *CalendarService) MonthGrid(ctx context.Context, actorID, ownerID string, year int, month time.Month) (model.MonthGrid, error) {
	v := model.NewValidationError()
	if month < time.January || month > time.December {
		v.Add("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		v.Add("year", "must be between 1 and 9999")
	}
	if err := v.OrNil(); err != nil {
		return model.MonthGrid{}, err
	}

	from := GridStart(year, month, s.loc, s.weekStart)
	to := from.AddDate(0, 0, model.GridCells)

	events, err := s.visibleRange(ctx, actorID, ownerID, from, to)
	if err != nil {
		return model.MonthGrid{}, err
	}

	return BuildMonthGrid(year, month, events, s.clock.Now(), s.loc, s.weekStart), nil
}

// Schedule returns the events of one day when day is set, otherwise the
// agenda from the later of the reference month's start and today, plus
// every overdue event whatever its date. Only actors who may edit the
// calendar trigger a sweep; viewers read the stored statuses.
func (s *CalendarService) Schedule(ctx context.Context, actorID, ownerID string, day *time.Time, reference time.Time) ([]model.EventView, error) {
	if s.access.CanEdit(ctx, ownerID, actorID) {
		s.status.Sweep(ctx, ownerID)
	}

	now := s.clock.Now()

	if day != nil {
		from := startOfDay(*day, s.loc)
		events, err := s.visibleRange(ctx, actorID, ownerID, from, from.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		return toViews(DaySchedule(events, from, s.loc), now), nil
	}

	if reference.IsZero() {
		reference = now
	}
	ref := reference.In(s.loc)
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, s.loc)
	if today := startOfDay(now, s.loc); today.After(from) {
		from = today
	}

	events, err := s.events.ListAgenda(ctx, ownerID, from)
	if err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}
	visible, err := s.sharing.Visible(ctx, ownerID, actorID, events)
	if err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}

	return toViews(Agenda(visible, now, s.loc), now), nil
}

// Stats counts completed, upcoming and overdue events after a sweep. The
// three counts read disjoint rows and run concurrently.
func (s *CalendarService) Stats(ctx context.Context, actorID, ownerID string) (model.Stats, error) {
	if !s.access.CanEdit(ctx, ownerID, actorID) {
		return model.Stats{}, fmt.Errorf("stats for %s: %w", ownerID, model.ErrForbidden)
	}

	s.status.Sweep(ctx, ownerID)

	var stats model.Stats
	now := s.clock.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.events.CountByStatus(gctx, ownerID, model.Completed)
		stats.Completed = n
		return err
	})
	g.Go(func() error {
		n, err := s.events.CountUpcoming(gctx, ownerID, now)
		stats.Upcoming = n
		return err
	})
	g.Go(func() error {
		n, err := s.events.CountByStatus(gctx, ownerID, model.Overdue)
		stats.Overdue = n
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Stats{}, fmt.Errorf("stats: %w", err)
	}

	return stats, nil
}

func (s *CalendarService) visibleRange(ctx context.Context, actorID, ownerID string, from, to time.Time) ([]model.Event, error) {
	events, err := s.events.ListEvents(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	visible, err := s.sharing.Visible(ctx, ownerID, actorID, events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return visible, nil
}
