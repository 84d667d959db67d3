package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"equipment_lending_client/models"
)

// DefaultAlertTimeout is how long an alert stays up unless dismissed.
const DefaultAlertTimeout = 5 * time.Second

type timer interface {
	Stop() bool
}

// AlertList holds transient alerts. Each alert removes itself after the
// timeout; dismissing it first stops its timer.
type AlertList struct {
	mu      sync.Mutex
	timeout time.Duration
	alerts  []models.Alert
	timers  map[string]timer

	afterFunc func(time.Duration, func()) timer
	newID     func() string
}

func NewAlertList(timeout time.Duration) *AlertList {
	if timeout <= 0 {
		timeout = DefaultAlertTimeout
	}
	return &AlertList{
		timeout: timeout,
		timers:  make(map[string]timer),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		newID: uuid.NewString,
	}
}

func (l *AlertList) Push(severity models.Severity, message string) models.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	a := models.Alert{ID: l.newID(), Message: message, Severity: severity}
	l.alerts = append(l.alerts, a)
	l.timers[a.ID] = l.afterFunc(l.timeout, func() { l.expire(a.ID) })
	return a
}

func (l *AlertList) expire(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.timers[id]; !ok {
		return
	}
	delete(l.timers, id)
	l.remove(id)
}

// Dismiss removes the alert and cancels its expiry. It reports whether the
// alert was still up.
func (l *AlertList) Dismiss(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(l.timers, id)
	l.remove(id)
	return true
}

func (l *AlertList) remove(id string) {
	for i, a := range l.alerts {
		if a.ID == id {
			l.alerts = append(l.alerts[:i], l.alerts[i+1:]...)
			return
		}
	}
}

func (l *AlertList) List() []models.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// Clear drops every alert and stops all pending timers.
func (l *AlertList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
	l.alerts = nil
}

// Pending is the number of live expiry timers.
func (l *AlertList) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}
