// Package store keeps the last-fetched snapshot of lending data for one
// signed-in browser session and the actions that refresh it.
package store

import (
	"context"
	"sync"

	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

type AuthState struct {
	User          *models.AuthUser `json:"user"`
	Token         string           `json:"-"`
	Authenticated bool             `json:"isAuthenticated"`
}

type EquipmentState struct {
	Items    []models.Equipment `json:"items"`
	Selected *models.Equipment  `json:"selected"`
	Loading  bool               `json:"loading"`
	Error    string             `json:"error,omitempty"`
}

type RequestState struct {
	Items    []models.BorrowRequest `json:"items"`
	Selected *models.BorrowRequest  `json:"selected"`
	Loading  bool                   `json:"loading"`
	Error    string                 `json:"error,omitempty"`
}

type NotificationState struct {
	ReadIDs rules.IDSet `json:"-"`
	Loading bool        `json:"loading"`
	Error   string      `json:"error,omitempty"`
}

type State struct {
	Auth          AuthState         `json:"auth"`
	Equipment     EquipmentState    `json:"equipment"`
	Requests      RequestState      `json:"requests"`
	Notifications NotificationState `json:"notifications"`
	Alerts        []models.Alert    `json:"alerts"`
}

func initialState() State {
	return State{
		Equipment:     EquipmentState{Items: []models.Equipment{}},
		Requests:      RequestState{Items: []models.BorrowRequest{}},
		Notifications: NotificationState{ReadIDs: rules.NewIDSet()},
	}
}

type resource int

const (
	resEquipment resource = iota
	resEquipmentItem
	resRequests
	resRequestItem
	resReadIDs
)

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// ticket identifies one fetch of a resource. Only the newest ticket per
// resource may write its result.
type ticket struct {
	res resource
	gen uint64
}

// Store is the state container. All writes go through its methods and are
// serialized by mu.
type Store struct {
	mu       sync.Mutex
	state    State
	inflight map[resource]inflight
	gen      uint64
	Alerts   *AlertList
}

func New(alerts *AlertList) *Store {
	if alerts == nil {
		alerts = NewAlertList(DefaultAlertTimeout)
	}
	return &Store{
		state:    initialState(),
		inflight: make(map[resource]inflight),
		Alerts:   alerts,
	}
}

// Snapshot returns a copy safe to read without the lock.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Equipment.Items = append([]models.Equipment(nil), s.state.Equipment.Items...)
	st.Requests.Items = append([]models.BorrowRequest(nil), s.state.Requests.Items...)
	st.Notifications.ReadIDs = s.state.Notifications.ReadIDs.Clone()
	if u := s.state.Auth.User; u != nil {
		cp := *u
		st.Auth.User = &cp
	}
	if e := s.state.Equipment.Selected; e != nil {
		cp := *e
		st.Equipment.Selected = &cp
	}
	if r := s.state.Requests.Selected; r != nil {
		cp := *r
		st.Requests.Selected = &cp
	}
	st.Alerts = s.Alerts.List()
	return st
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Reset cancels every in-flight fetch and returns to the initial,
// signed-out state. Pending results are discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for res, f := range s.inflight {
		f.cancel()
		delete(s.inflight, res)
	}
	s.gen++
	s.state = initialState()
}

// begin starts a fetch of res, cancelling any older one still running.
func (s *Store) begin(ctx context.Context, res resource, loading func(*State)) (context.Context, ticket, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[res]; ok {
		prev.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(ctx)
	s.inflight[res] = inflight{gen: s.gen, cancel: cancel}
	if loading != nil {
		loading(&s.state)
	}
	return ctx, ticket{res: res, gen: s.gen}, cancel
}

// finish applies fn only if t is still the newest fetch of its resource.
func (s *Store) finish(t ticket, fn func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.inflight[t.res]
	if !ok || cur.gen != t.gen {
		return false
	}
	delete(s.inflight, t.res)
	fn(&s.state)
	return true
}

// fetch runs load under supersession. When a newer fetch of the same
// resource has started, the result is dropped and ErrSuperseded returned.
func fetch[T any](ctx context.Context, s *Store, res resource, loading func(*State), load func(context.Context) (T, error), ok func(*State, T), fail func(*State, error)) (T, error) {
	ctx, t, cancel := s.begin(ctx, res, loading)
	defer cancel()

	v, err := load(ctx)
	applied := s.finish(t, func(st *State) {
		if err != nil {
			fail(st, err)
			return
		}
		ok(st, v)
	})
	if !applied {
		var zero T
		return zero, ErrSuperseded
	}
	return v, err
}
