// Package scheduler gates the reconciliation loop on client activity. The
// external transaction service exposes no push mechanism, so polling is the
// only option; polling while nobody is looking at the dashboard just burns
// rate limit. Visibility and input signals arrive as an explicit event stream
// rather than ambient listeners.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Event is one activity signal from a client.
type Event struct {
	// Visible, when set, reports a tab visibility change.
	Visible *bool
	// Input reports user input activity.
	Input bool
}

type Config struct {
	Interval     time.Duration // poll interval while active
	IdleTimeout  time.Duration // no input for this long means idle
	CatchUpGrace time.Duration // hidden longer than this triggers a catch-up run
}

// Scheduler is a two-state machine (active/idle). While active, run is
// invoked at a fixed interval; while idle the timer is disarmed. All runs
// happen on the scheduler's own goroutine, so they are strictly sequential.
type Scheduler struct {
	cfg    Config
	run    func(ctx context.Context)
	events chan Event
}

func New(cfg Config, run func(ctx context.Context)) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 3 * time.Minute
	}
	if cfg.CatchUpGrace <= 0 {
		cfg.CatchUpGrace = 15 * time.Second
	}
	return &Scheduler{
		cfg:    cfg,
		run:    run,
		events: make(chan Event, 64),
	}
}

// Notify feeds an activity event into the state machine. Never blocks; if the
// buffer is full the event is dropped (a later event carries the same signal).
func (s *Scheduler) Notify(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Run drives the state machine until the context is cancelled. In-flight
// reconciliation is not aborted on idle transitions, only not re-scheduled.
func (s *Scheduler) Run(ctx context.Context) {
	visible := true
	active := true
	lastInput := time.Now()
	var hiddenAt time.Time

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.run(ctx)

	for {
		var tick <-chan time.Time
		if active {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return

		case <-tick:
			if !visible || time.Since(lastInput) >= s.cfg.IdleTimeout {
				log.Printf("scheduler: going idle")
				active = false
				continue
			}
			s.run(ctx)

		case ev := <-s.events:
			now := time.Now()
			if ev.Input {
				lastInput = now
			}
			switch {
			case ev.Visible != nil && *ev.Visible:
				hiddenFor := time.Duration(0)
				if !hiddenAt.IsZero() {
					hiddenFor = now.Sub(hiddenAt)
				}
				hiddenAt = time.Time{}
				visible = true
				lastInput = now
				if !active {
					active = true
					ticker.Reset(s.cfg.Interval)
				}
				// Background polling was suspended while hidden; catch up
				// right away instead of waiting for the next tick.
				if hiddenFor > s.cfg.CatchUpGrace {
					s.run(ctx)
				}
			case ev.Visible != nil:
				visible = false
				hiddenAt = now
				active = false
			case ev.Input && visible && !active:
				active = true
				ticker.Reset(s.cfg.Interval)
			}
		}
	}
}
