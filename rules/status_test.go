package rules

import (
	"testing"
	"time"

	"equipment_lending_client/models"
)

func TestDisplayStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.Local)
	due := func(d time.Time, s models.RequestStatus) models.BorrowRequest {
		return models.BorrowRequest{ID: "r", Status: s, ReturnDate: models.DateOf(d)}
	}

	testCases := []struct {
		name string
		req  models.BorrowRequest
		want models.RequestStatus
	}{
		{name: "approved, due next week", req: due(now.AddDate(0, 0, 7), models.RequestApproved), want: models.RequestApproved},
		{name: "approved, due yesterday", req: due(now.AddDate(0, 0, -1), models.RequestApproved), want: models.RequestOverdue},
		{name: "approved, due today after midnight", req: due(now, models.RequestApproved), want: models.RequestOverdue},
		{name: "returned, due yesterday", req: due(now.AddDate(0, 0, -1), models.RequestReturned), want: models.RequestReturned},
		{name: "pending, due yesterday", req: due(now.AddDate(0, 0, -1), models.RequestPending), want: models.RequestPending},
		{name: "approved without return date", req: models.BorrowRequest{Status: models.RequestApproved}, want: models.RequestApproved},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DisplayStatus(tc.req, now); got != tc.want {
				t.Fatalf("DisplayStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, time.March, 28, 23, 50, 0, 0, time.UTC)
	testCases := []struct {
		to   time.Time
		want int
	}{
		{to: time.Date(2026, time.March, 29, 0, 5, 0, 0, time.UTC), want: 1},
		{to: time.Date(2026, time.March, 28, 0, 0, 0, 0, time.UTC), want: 0},
		{to: time.Date(2026, time.March, 26, 12, 0, 0, 0, time.UTC), want: -2},
		{to: time.Date(2026, time.April, 28, 0, 0, 0, 0, time.UTC), want: 31},
	}
	for _, tc := range testCases {
		if got := DaysBetween(from, tc.to); got != tc.want {
			t.Fatalf("DaysBetween(%v, %v) = %d, want %d", from, tc.to, got, tc.want)
		}
	}
}

func TestFilterByDisplayStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.Local)
	requests := []models.BorrowRequest{
		{ID: "a", Status: models.RequestApproved, ReturnDate: models.DateOf(now.AddDate(0, 0, -2))},
		{ID: "b", Status: models.RequestApproved, ReturnDate: models.DateOf(now.AddDate(0, 0, 2))},
		{ID: "c", Status: models.RequestPending},
	}
	rows := FilterByDisplayStatus(Rows(requests, now), models.RequestOverdue)
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("overdue rows = %+v, want only a", rows)
	}
	// The stored status is untouched.
	if rows[0].Status != models.RequestApproved {
		t.Fatalf("stored status = %s, want APPROVED", rows[0].Status)
	}
}

func TestDaysBetweenUsesDueDateZone(t *testing.T) {
	t.Parallel()

	ict := time.FixedZone("ICT", 7*60*60)
	// 10:00 UTC is already 17:00 on the same day in ICT; 20:00 UTC is the
	// next day there.
	due := time.Date(2026, time.October, 17, 0, 0, 0, 0, ict)
	testCases := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC), want: 1},
		{now: time.Date(2026, time.October, 16, 20, 0, 0, 0, time.UTC), want: 0},
		{now: time.Date(2026, time.October, 15, 16, 59, 0, 0, time.UTC), want: 2},
	}
	for _, tc := range testCases {
		if got := DaysBetween(tc.now, due); got != tc.want {
			t.Fatalf("DaysBetween(%v, %v) = %d, want %d", tc.now, due, got, tc.want)
		}
	}
}

func TestReturnReminderInConfiguredZone(t *testing.T) {
	t.Parallel()

	ict := time.FixedZone("ICT", 7*60*60)
	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	req := models.BorrowRequest{
		ID:         "r1",
		UserID:     "alice",
		Status:     models.RequestApproved,
		BorrowDate: models.At(time.Date(2026, time.October, 10, 0, 0, 0, 0, ict)),
		ReturnDate: models.At(time.Date(2026, time.October, 17, 0, 0, 0, 0, ict)),
	}
	events := DeriveNotifications([]models.BorrowRequest{req}, NewIDSet(), now, TypedIdentity)
	if len(events) != 1 || events[0].Kind != KindReturn {
		t.Fatalf("events = %+v, want one return reminder", events)
	}
	if events[0].Due != DueTomorrow || events[0].DaysUntilDue != 1 {
		t.Fatalf("due = %s days = %d, want %s 1", events[0].Due, events[0].DaysUntilDue, DueTomorrow)
	}
}
