// Package trigger provides the wake-up facility: named one-shot timers
// that fire a handler and can be cancelled or atomically replaced by id.
package trigger

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Handler is invoked with the trigger id when its instant arrives. Handlers
// must be self-contained and re-read durable state; nothing is carried
// between firings.
type Handler func(id string)

type Registry interface {
	// Register arms a trigger for the given instant, replacing any pending
	// trigger with the same id.
	Register(id string, at time.Time)
	// Cancel disarms a pending trigger. Cancelling an unknown id is a
	// no-op.
	Cancel(id string)
}

// TimerRegistry backs Registry with process-local timers. Triggers do not
// survive a restart on their own; the boot re-arm pass rebuilds them from
// the event store.
type TimerRegistry struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler Handler
}

var _ Registry = (*TimerRegistry)(nil)

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: map[string]*time.Timer{}}
}

// OnFire installs the dispatch handler. Must be called before any trigger
// fires; firings with no handler installed are dropped with a log line.
func (r *TimerRegistry) OnFire(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

func (r *TimerRegistry) Register(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.timers[id]; ok {
		prev.Stop()
	}

	log.Debug().Str("trigger", id).Time("at", at).Msg("trigger armed")
	r.timers[id] = time.AfterFunc(time.Until(at), func() {
		r.mu.Lock()
		delete(r.timers, id)
		handler := r.handler
		r.mu.Unlock()
		if handler == nil {
			log.Error().Str("trigger", id).Msg("trigger fired with no handler installed")
			return
		}
		log.Info().Str("trigger", id).Msg("trigger fired")
		handler(id)
	})
}

func (r *TimerRegistry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
		log.Debug().Str("trigger", id).Msg("trigger cancelled")
	}
}

// Pending reports whether a trigger with the given id is armed.
func (r *TimerRegistry) Pending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[id]
	return ok
}
