// Package health runs a cron-scheduled heartbeat that logs each registered
// actor's last-tick timestamp, purely as an operator-facing liveness aid.
// It sits outside the request path entirely: it never touches dispatch or
// actor state, only reads a timestamp each actor updates on its own tick.
package health

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
)

// Tracker records the last-tick time for a set of named actors. Each actor
// calls Touch once per runtime loop iteration; the heartbeat schedule reads
// Snapshot on its own cadence.
type Tracker struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]time.Time)}
}

// Touch records that resource completed a tick just now.
func (t *Tracker) Touch(resource string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[resource] = time.Now()
}

// Snapshot returns a copy of the last-tick timestamps.
func (t *Tracker) Snapshot() map[string]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Time, len(t.last))
	for k, v := range t.last {
		out[k] = v
	}
	return out
}

// Heartbeat wraps a robfig/cron schedule that logs the tracker's snapshot.
type Heartbeat struct {
	cron *cron.Cron
}

// Start schedules the heartbeat (default: every minute) and begins running
// it in the background. Call Stop to end it.
func Start(tracker *Tracker, schedule string, log *zap.Logger) (*Heartbeat, error) {
	if schedule == "" {
		schedule = "@every 1m"
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		for resource, last := range tracker.Snapshot() {
			log.Info("actor heartbeat",
				zap.String("resource", resource),
				zap.Time("last_tick", last),
				zap.Duration("since_last_tick", time.Since(last)),
			)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return &Heartbeat{cron: c}, nil
}

// Stop ends the heartbeat schedule.
func (h *Heartbeat) Stop() {
	h.cron.Stop()
}

// observed wraps an actor.Actor so every Step call also touches a Tracker,
// letting main wire heartbeat tracking in without each device package
// importing internal/health itself.
type observed struct {
	actor.Actor
	tracker  *Tracker
	resource string
}

// Observe returns a, decorated so the tracker records a tick each time
// Step runs.
func Observe(a actor.Actor, resource string, tracker *Tracker) actor.Actor {
	return &observed{Actor: a, tracker: tracker, resource: resource}
}

func (o *observed) Step() {
	o.Actor.Step()
	o.tracker.Touch(o.resource)
}
