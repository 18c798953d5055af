package wm

import (
	"context"
	"errors"
	"time"

	"github.com/1broseidon/stackwm/internal/platform"
)

type eventResult struct {
	ev  platform.Event
	err error
}

// Post schedules fn to run on the event loop. It is safe to call from any
// goroutine and is dropped after Logout.
func (m *Manager) Post(fn func()) {
	select {
	case m.tasks <- fn:
	case <-m.done:
	}
}

// Run processes server events and posted tasks one at a time until Logout
// (nil), ctx cancellation (ctx.Err()) or loss of the display connection.
func (m *Manager) Run(ctx context.Context) error {
	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan eventResult)
	go m.pump(pumpCtx, events)

	for {
		select {
		case <-m.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-m.tasks:
			fn()
		case r := <-events:
			if r.err != nil {
				if m.loggedOut() {
					return nil
				}
				if errors.Is(r.err, platform.ErrDisconnected) {
					m.logger.Error("display connection lost")
				}
				return r.err
			}
			m.handle(r.ev)
		}
	}
}

// pump blocks on the backend so the loop can also serve posted tasks.
func (m *Manager) pump(ctx context.Context, out chan<- eventResult) {
	for {
		ev, err := m.backend.NextEvent(ctx)
		select {
		case out <- eventResult{ev: ev, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (m *Manager) loggedOut() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// handle runs the handler for one event to completion.
func (m *Manager) handle(ev platform.Event) {
	start := time.Now()
	m.logger.Debug("event", "event", ev.String())

	switch e := ev.(type) {
	case platform.ConfigureRequest:
		m.onConfigureRequest(e)
	case platform.KeyPress:
		m.onKeyPress(e)
	case platform.MapRequest:
		m.onMapRequest(e)
	case platform.UnmapNotify:
		m.onRemove(e.Window)
	case platform.DestroyNotify:
		m.onRemove(e.Window)
	}

	m.metrics.ObserveEvent(platform.Kind(ev), time.Since(start))
}
