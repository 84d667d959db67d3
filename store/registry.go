package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment_lending_client/models"
)

// Factory builds an API bound to token. onUnauthorized must run whenever a
// call with that token comes back 401.
type Factory func(token string, onUnauthorized func()) API

type entry struct {
	actions  *Actions
	lastUsed time.Time
}

// Registry maps gateway session ids to their Actions. Entries are created on
// demand and evicted when idle or when the backend rejects their token.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	opts    Options
	idle    time.Duration
	now     func() time.Time
}

func NewRegistry(factory Factory, opts Options, idle time.Duration) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		opts:    opts,
		idle:    idle,
		now:     now,
	}
}

func (r *Registry) newActions(sessionID string) *Actions {
	var a *Actions
	a = NewActions(func(token string) API {
		return r.factory(token, func() { r.dropIf(sessionID, a) })
	}, r.opts)
	return a
}

// Open starts a fresh, signed-out entry for sessionID, replacing any old one.
func (r *Registry) Open(sessionID string) *Actions {
	a := r.newActions(sessionID)
	r.mu.Lock()
	old := r.entries[sessionID]
	r.entries[sessionID] = &entry{actions: a, lastUsed: r.now()}
	r.mu.Unlock()
	if old != nil {
		old.actions.Store.Alerts.Clear()
	}
	return a
}

// Get returns the entry for sessionID, rebuilding it from the session's user
// and token when the gateway has none in memory.
func (r *Registry) Get(sessionID string, user models.AuthUser, token string) *Actions {
	r.mu.Lock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.actions
	}
	r.mu.Unlock()

	a := r.newActions(sessionID)
	a.Restore(user, token)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastUsed = r.now()
		return e.actions
	}
	r.entries[sessionID] = &entry{actions: a, lastUsed: r.now()}
	return a
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	delete(r.entries, sessionID)
	r.mu.Unlock()
	if ok {
		e.actions.Store.Alerts.Clear()
	}
}

func (r *Registry) dropIf(sessionID string, a *Actions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok && e.actions == a {
		delete(r.entries, sessionID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts entries idle for longer than the idle limit.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	var evicted []*entry
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			evicted = append(evicted, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()
	for _, e := range evicted {
		e.actions.Store.Alerts.Clear()
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.opts.Logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Wait blocks until background persistence of every live entry is done.
func (r *Registry) Wait() {
	r.mu.Lock()
	live := make([]*Actions, 0, len(r.entries))
	for _, e := range r.entries {
		live = append(live, e.actions)
	}
	r.mu.Unlock()
	for _, a := range live {
		a.Wait()
	}
}
