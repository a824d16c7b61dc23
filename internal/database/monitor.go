package database

import (
	"context"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
)

// chainMonitors fans every command event out to each monitor in order.
//
// The driver accepts a single CommandMonitor, so this is how the query
// logger and the New Relic recorder both see the same commands.
func chainMonitors(monitors ...*event.CommandMonitor) *event.CommandMonitor {
	active := make([]*event.CommandMonitor, 0, len(monitors))
	for _, m := range monitors {
		if m != nil {
			active = append(active, m)
		}
	}

	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			for _, m := range active {
				if m.Started != nil {
					m.Started(ctx, evt)
				}
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			for _, m := range active {
				if m.Succeeded != nil {
					m.Succeeded(ctx, evt)
				}
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			for _, m := range active {
				if m.Failed != nil {
					m.Failed(ctx, evt)
				}
			}
		},
	}
}

// newLogMonitor logs commands.
//
//   - commandLogger, when non-nil, receives every command (local env only).
//   - logger receives a warning for commands slower than slowThreshold;
//     a zero threshold disables the check.
func newLogMonitor(logger, commandLogger *zerolog.Logger, slowThreshold time.Duration) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if commandLogger == nil {
				return
			}
			commandLogger.Debug().
				Int64("request_id", evt.RequestID).
				Str("command", evt.CommandName).
				Str("database", evt.DatabaseName).
				Str("body", evt.Command.String()).
				Msg("mongo command started")
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			duration := time.Duration(evt.DurationNanos)

			if commandLogger != nil {
				commandLogger.Debug().
					Int64("request_id", evt.RequestID).
					Str("command", evt.CommandName).
					Dur("duration", duration).
					Msg("mongo command succeeded")
			}

			if slowThreshold > 0 && duration > slowThreshold {
				logger.Warn().
					Int64("request_id", evt.RequestID).
					Str("command", evt.CommandName).
					Dur("duration", duration).
					Dur("threshold", slowThreshold).
					Msg("slow mongo command")
			}
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			if commandLogger == nil {
				return
			}
			commandLogger.Warn().
				Int64("request_id", evt.RequestID).
				Str("command", evt.CommandName).
				Dur("duration", time.Duration(evt.DurationNanos)).
				Str("failure", evt.Failure).
				Msg("mongo command failed")
		},
	}
}

// segmentMonitor records a New Relic datastore segment per command, for
// commands issued with a transaction in their context.
type segmentMonitor struct {
	database string

	mu       sync.Mutex
	segments map[int64]*newrelic.DatastoreSegment
}

func newSegmentMonitor(database string) *event.CommandMonitor {
	sm := &segmentMonitor{
		database: database,
		segments: make(map[int64]*newrelic.DatastoreSegment),
	}

	return &event.CommandMonitor{
		Started:   sm.started,
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) { sm.finish(evt.RequestID) },
		Failed:    func(_ context.Context, evt *event.CommandFailedEvent) { sm.finish(evt.RequestID) },
	}
}

func (sm *segmentMonitor) started(ctx context.Context, evt *event.CommandStartedEvent) {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return
	}

	collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()

	segment := &newrelic.DatastoreSegment{
		StartTime:    txn.StartSegmentNow(),
		Product:      newrelic.DatastoreMongoDB,
		Collection:   collection,
		Operation:    evt.CommandName,
		DatabaseName: sm.database,
	}

	sm.mu.Lock()
	sm.segments[evt.RequestID] = segment
	sm.mu.Unlock()
}

func (sm *segmentMonitor) finish(requestID int64) {
	sm.mu.Lock()
	segment, ok := sm.segments[requestID]
	delete(sm.segments, requestID)
	sm.mu.Unlock()

	if ok {
		segment.End()
	}
}
