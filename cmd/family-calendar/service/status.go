package service

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/model"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Type names whose past events are simply done rather than missed.
var autoCompleteTypeNames = map[string]bool{
	"recordatorio": true,
	"cumpleaños":   true,
	"reminder":     true,
	"birthday":     true,
}

// StatusMaintainer moves stale open events to completed or overdue.
// It runs inline before reads that need fresh statuses.
type StatusMaintainer struct {
	events IEventRepo
	clock  Clock
	log    *zap.Logger
}

func NewStatusMaintainer(events IEventRepo, clock Clock, log *zap.Logger) *StatusMaintainer {
	return &StatusMaintainer{
		events: events,
		clock:  clock,
		log:    log.Named("status"),
	}
}

// AutoCompletable reports whether a past event should become completed
// instead of overdue: reminder/birthday types and events with no type.
func AutoCompletable(e model.Event) bool {
	if e.EventTypeID == nil || e.EventType == nil {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(e.EventType.Name))
	return autoCompleteTypeNames[name]
}

// Classify returns the status a stale event moves to, or "" to leave it.
func Classify(e model.Event) model.EventStatus {
	status := e.Status.Normalized()
	switch status {
	case model.Scheduled, model.Overdue:
	default:
		return ""
	}

	if AutoCompletable(e) {
		return model.Completed
	}
	if status == model.Scheduled {
		return model.Overdue
	}
	return ""
}

// Sweep is best-effort. Failures are logged and the caller reads whatever
// statuses are stored; running it again is always safe.
func (m *StatusMaintainer) Sweep(ctx context.Context, ownerID string) model.SweepResult {
	var res model.SweepResult
	now := m.clock.Now()

	stale, err := m.events.ListStale(ctx, ownerID, now)
	if err != nil {
		m.logFailure(ctx, "status sweep: list stale events failed", ownerID, err)
		return res
	}

	var completeIDs, overdueIDs []string
	for _, e := range stale {
		if !e.EffectiveEnd().Before(now) {
			continue
		}
		switch Classify(e) {
		case model.Completed:
			completeIDs = append(completeIDs, e.ID)
		case model.Overdue:
			overdueIDs = append(overdueIDs, e.ID)
		}
	}

	apply := func(ids []string, status model.EventStatus, applied *[]string) func() error {
		return func() error {
			if len(ids) == 0 {
				return nil
			}
			if err := m.events.UpdateStatuses(ctx, ids, status, now); err != nil {
				return fmt.Errorf("mark %d events %s: %w", len(ids), status, err)
			}
			*applied = ids
			return nil
		}
	}

	// Disjoint rows, so both updates may run at once.
	var g errgroup.Group
	g.Go(apply(completeIDs, model.Completed, &res.Completed))
	g.Go(apply(overdueIDs, model.Overdue, &res.Overdue))
	if err := g.Wait(); err != nil {
		m.logFailure(ctx, "status sweep incomplete", ownerID, err)
	}

	if len(res.Completed) > 0 || len(res.Overdue) > 0 {
		m.log.Debug("status sweep applied",
			zap.String("owner_id", ownerID),
			zap.Int("completed", len(res.Completed)),
			zap.Int("overdue", len(res.Overdue)))
	}

	return res
}

func (m *StatusMaintainer) logFailure(ctx context.Context, msg, ownerID string, err error) {
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}
	m.log.Warn(msg, zap.String("owner_id", ownerID), zap.Error(err))
}
