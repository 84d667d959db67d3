package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

// ReadCache keeps read notification ids close to the gateway and throttles
// how often they are re-synced from the backend.
type ReadCache interface {
	ReadIDs(ctx context.Context, userID string) ([]string, error)
	AddReadIDs(ctx context.Context, userID string, ids ...string) error
	SyncDue(ctx context.Context, userID string) (bool, error)
}

// FetchReadNotifications loads the read set. Cached ids are merged first;
// the backend is asked only when the cache says a sync is due, or always
// when there is no cache. Ids marked locally but not yet persisted survive.
func (a *Actions) FetchReadNotifications(ctx context.Context, cache ReadCache) (rules.IDSet, error) {
	u, err := a.user()
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if ids, err := cache.ReadIDs(ctx, u.ID); err == nil {
			a.Store.update(func(st *State) { st.Notifications.ReadIDs.Add(ids...) })
		} else {
			a.log.Warn("read cache unavailable", zap.Error(err))
		}
		due, err := cache.SyncDue(ctx, u.ID)
		if err == nil && !due {
			return a.Store.Snapshot().Notifications.ReadIDs, nil
		}
	}

	api := a.client()
	ids, err := fetch(ctx, a.Store, resReadIDs,
		func(st *State) { st.Notifications.Loading = true },
		func(ctx context.Context) ([]string, error) { return api.GetReadNotifications(ctx, u.ID) },
		func(st *State, ids []string) {
			st.Notifications.ReadIDs.Add(ids...)
			st.Notifications.Loading = false
			st.Notifications.Error = ""
		},
		func(st *State, err error) {
			st.Notifications.Loading = false
			st.Notifications.Error = err.Error()
		},
	)
	if err != nil {
		return nil, a.failure(err, msgLoadReadState)
	}
	if cache != nil {
		if err := cache.AddReadIDs(ctx, u.ID, ids...); err != nil {
			a.log.Warn("read cache write failed", zap.Error(err))
		}
	}
	return a.Store.Snapshot().Notifications.ReadIDs, nil
}

// MarkNotificationsRead adds ids to the read set right away and persists the
// new ones in the background. Persistence failures are logged, never
// surfaced. It returns how many ids were new.
func (a *Actions) MarkNotificationsRead(ctx context.Context, cache ReadCache, ids ...string) int {
	u, err := a.user()
	if err != nil {
		return 0
	}
	var fresh []string
	a.Store.update(func(st *State) {
		for _, id := range ids {
			if st.Notifications.ReadIDs.Add(id) == 1 {
				fresh = append(fresh, id)
			}
		}
	})
	if len(fresh) == 0 {
		return 0
	}
	if cache != nil {
		if err := cache.AddReadIDs(ctx, u.ID, fresh...); err != nil {
			a.log.Warn("read cache write failed", zap.Error(err))
		}
	}

	api := a.client()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.persistTimeout)
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		defer cancel()
		if err := api.MarkNotificationsRead(pctx, u.ID, fresh); err != nil {
			a.log.Warn("persisting read notifications failed",
				zap.String("user", u.ID),
				zap.Strings("ids", fresh),
				zap.Error(err),
			)
		}
	}()
	return len(fresh)
}

func (a *Actions) events(now time.Time) []rules.Event {
	st := a.Store.Snapshot()
	if st.Auth.User == nil {
		return nil
	}
	mine := rules.OwnedBy(st.Requests.Items, st.Auth.User.ID)
	return rules.DeriveNotifications(mine, st.Notifications.ReadIDs, now, a.identity)
}

// Notifications derives the signed-in student's events from the cached
// requests and read set.
func (a *Actions) Notifications(now time.Time) ([]rules.Event, error) {
	if _, err := a.user(); err != nil {
		return nil, err
	}
	events := a.events(now)
	if events == nil {
		events = []rules.Event{}
	}
	return events, nil
}

// ViewNotification opens one event and marks it read.
func (a *Actions) ViewNotification(ctx context.Context, cache ReadCache, id string, now time.Time) (rules.Event, rules.EventDetail, error) {
	if _, err := a.user(); err != nil {
		return rules.Event{}, rules.EventDetail{}, err
	}
	ev, ok := rules.FindEvent(a.events(now), id)
	if !ok {
		return rules.Event{}, rules.EventDetail{}, ErrNotificationAbsent
	}
	a.MarkNotificationsRead(ctx, cache, ev.ID)
	ev.Read = true
	return ev, rules.Detail(ev), nil
}

// MarkAllNotificationsRead marks every currently derived event read.
func (a *Actions) MarkAllNotificationsRead(ctx context.Context, cache ReadCache, now time.Time) (int, error) {
	if _, err := a.user(); err != nil {
		return 0, err
	}
	return a.MarkNotificationsRead(ctx, cache, rules.EventIDs(a.events(now))...), nil
}

// Alert pushes a message onto this session's alert list.
func (a *Actions) Alert(sev models.Severity, msg string) models.Alert {
	return a.Store.Alerts.Push(sev, msg)
}
