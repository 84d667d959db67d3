package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"equipment_lending_client/models"
)

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.Local)
	var requests []models.BorrowRequest
	for i := 0; i < 6; i++ {
		requests = append(requests, models.BorrowRequest{
			ID:          fmt.Sprintf("late-%d", i),
			Status:      models.RequestApproved,
			RequestDate: models.At(now.AddDate(0, 0, -30-i)),
			ReturnDate:  models.DateOf(now.AddDate(0, 0, -1-i)),
		})
	}
	requests = append(requests,
		models.BorrowRequest{ID: "out", Status: models.RequestApproved, RequestDate: models.At(now.Add(-time.Hour)), ReturnDate: models.DateOf(now.AddDate(0, 0, 3))},
		models.BorrowRequest{ID: "wait", Status: models.RequestPending, RequestDate: models.At(now.Add(-2 * time.Hour))},
		models.BorrowRequest{ID: "done", Status: models.RequestReturned, RequestDate: models.At(now.Add(-3 * time.Hour))},
	)
	equipment := []models.Equipment{{ID: "a"}, {ID: "b"}}

	d := BuildDashboard(equipment, requests, now)
	if d.TotalEquipment != 2 || d.Borrowing != 1 || d.Pending != 1 || d.Overdue != 6 {
		t.Fatalf("counts = %+v", d)
	}
	if len(d.OverdueItems) != 4 || d.OverdueItems[0].ID != "late-0" {
		t.Fatalf("overdue items = %d, first %q", len(d.OverdueItems), d.OverdueItems[0].ID)
	}
	if len(d.Recent) != 5 || d.Recent[0].ID != "out" || d.Recent[1].ID != "wait" {
		t.Fatalf("recent = %+v", d.Recent)
	}
	for _, r := range d.OverdueItems {
		if r.DisplayStatus != models.RequestOverdue {
			t.Fatalf("overdue item %s shown as %s", r.ID, r.DisplayStatus)
		}
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	t.Parallel()

	d := BuildDashboard(nil, nil, time.Now())
	if d.OverdueItems == nil || d.Recent == nil {
		t.Fatal("empty dashboard lists should be non-nil")
	}
}

func TestBuildStatistics(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.Local)
	from := now.AddDate(0, -1, 0)
	equipment := []models.Equipment{
		{ID: "cam", Name: "Camera", Category: "Photo"},
		{ID: "mic", Name: "Microphone", Category: "Audio"},
	}
	at := func(days int) models.Time { return models.At(now.AddDate(0, 0, days)) }
	date := func(days int) models.Time { return models.DateOf(now.AddDate(0, 0, days)) }
	actual := date(-3)

	requests := []models.BorrowRequest{
		{ID: "1", UserID: "u1", EquipmentID: "cam", Quantity: 2, Status: models.RequestApproved, RequestDate: at(-5), BorrowDate: date(-4), ReturnDate: date(1)},
		{ID: "2", UserID: "u2", EquipmentID: "cam", Quantity: 1, Status: models.RequestReturned, RequestDate: at(-10), BorrowDate: date(-9), ReturnDate: date(-2), ActualReturnDate: &actual},
		{ID: "3", UserID: "u1", EquipmentID: "mic", Quantity: 1, Status: models.RequestApproved, RequestDate: at(-8), BorrowDate: date(-8), ReturnDate: date(-1)},
		{ID: "4", UserID: "u3", EquipmentID: "mic", Quantity: 5, Status: models.RequestPending, RequestDate: at(-2)},
		{ID: "5", UserID: "u3", EquipmentID: "mic", Quantity: 5, Status: models.RequestRejected, RequestDate: at(-2)},
		{ID: "6", UserID: "u4", EquipmentID: "cam", Quantity: 4, Status: models.RequestApproved, RequestDate: at(-90)},
	}

	s := BuildStatistics(equipment, requests, from, now, now)

	if len(s.ByEquipment) != 2 || s.ByEquipment[0] != (CountRow{Name: "Camera", Count: 3}) || s.ByEquipment[1] != (CountRow{Name: "Microphone", Count: 1}) {
		t.Fatalf("ByEquipment = %+v", s.ByEquipment)
	}
	if len(s.ByCategory) != 2 || s.ByCategory[0].Name != "Photo" {
		t.Fatalf("ByCategory = %+v", s.ByCategory)
	}

	var cam EquipmentStats
	for _, e := range s.Equipment {
		if e.EquipmentID == "cam" {
			cam = e
		}
	}
	// (5 + 6) / 2
	if cam.TotalBorrows != 2 || !cam.AvgBorrowDuration.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("cam stats = %+v", cam)
	}

	if s.Monthly.Month != "June 2026" {
		t.Fatalf("Month = %q", s.Monthly.Month)
	}
}

func TestMonthlySummaryNoBorrows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.Local)
	s := BuildStatistics(nil, nil, now.AddDate(0, -1, 0), now, now)
	if s.Monthly.MostBorrowed.Name != "None" || s.Monthly.TotalBorrowed != 0 {
		t.Fatalf("Monthly = %+v", s.Monthly)
	}
}

func TestBorrowDurationSkipsUndatedRequests(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.Local)
	date := func(days int) models.Time { return models.DateOf(now.AddDate(0, 0, days)) }
	requests := []models.BorrowRequest{
		{ID: "1", UserID: "u1", EquipmentID: "cam", Quantity: 1, Status: models.RequestReturned, RequestDate: models.At(now.AddDate(0, 0, -9)), BorrowDate: date(-8), ReturnDate: date(-4)},
		{ID: "2", UserID: "u2", EquipmentID: "cam", Quantity: 1, Status: models.RequestApproved, RequestDate: models.At(now.AddDate(0, 0, -3))},
	}

	s := BuildStatistics(nil, requests, now.AddDate(0, -1, 0), now, now)
	if len(s.Equipment) != 1 {
		t.Fatalf("Equipment = %+v", s.Equipment)
	}
	cam := s.Equipment[0]
	if cam.TotalBorrows != 2 || !cam.AvgBorrowDuration.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("cam stats = %+v, want 2 borrows averaging 4 days", cam)
	}
}
