package store

import (
	"fmt"
	"testing"
	"time"

	"equipment_lending_client/models"
)

func manualAlerts() (*AlertList, map[string]*fakeTimer) {
	l := NewAlertList(0)
	timers := map[string]*fakeTimer{}
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("a%d", n)
	}
	l.afterFunc = func(d time.Duration, fn func()) timer {
		t := &fakeTimer{fn: fn}
		timers[fmt.Sprintf("a%d", n)] = t
		return t
	}
	return l, timers
}

func TestAlertExpires(t *testing.T) {
	t.Parallel()

	l, timers := manualAlerts()
	if l.timeout != DefaultAlertTimeout {
		t.Fatalf("timeout = %v, want %v", l.timeout, DefaultAlertTimeout)
	}
	a := l.Push(models.SeveritySuccess, "saved")
	l.Push(models.SeverityInfo, "other")
	if got := len(l.List()); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}

	timers[a.ID].fn()
	list := l.List()
	if len(list) != 1 || list[0].Message != "other" {
		t.Fatalf("after expiry = %+v", list)
	}
	if l.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", l.Pending())
	}
}

func TestAlertDismissStopsTimer(t *testing.T) {
	t.Parallel()

	l, timers := manualAlerts()
	a := l.Push(models.SeverityError, "boom")
	if !l.Dismiss(a.ID) {
		t.Fatal("Dismiss = false, want true")
	}
	if !timers[a.ID].stopped {
		t.Fatal("timer still armed after dismissal")
	}
	if l.Dismiss(a.ID) {
		t.Fatal("second Dismiss = true, want false")
	}

	// A late callback must not touch a list it no longer belongs to.
	b := l.Push(models.SeverityInfo, "next")
	timers[a.ID].fn()
	if list := l.List(); len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list = %+v, want only %s", list, b.ID)
	}
}

func TestAlertClear(t *testing.T) {
	t.Parallel()

	l, timers := manualAlerts()
	l.Push(models.SeverityInfo, "one")
	l.Push(models.SeverityInfo, "two")
	l.Clear()
	if len(l.List()) != 0 || l.Pending() != 0 {
		t.Fatal("Clear left alerts behind")
	}
	for id, tm := range timers {
		if !tm.stopped {
			t.Fatalf("timer %s not stopped", id)
		}
	}
}

func TestAlertRealTimer(t *testing.T) {
	t.Parallel()

	l := NewAlertList(20 * time.Millisecond)
	l.Push(models.SeverityInfo, "short lived")
	deadline := time.Now().Add(2 * time.Second)
	for len(l.List()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("alert did not expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
