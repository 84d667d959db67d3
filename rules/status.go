package rules

import (
	"time"

	"equipment_lending_client/models"
)

// IsOverdue: stored APPROVED and now past the return date.
func IsOverdue(r models.BorrowRequest, now time.Time) bool {
	return r.Status == models.RequestApproved && !r.ReturnDate.IsZero() && now.After(r.ReturnDate.Time)
}

// DisplayStatus is the status every view and aggregate must use. OVERDUE
// only ever comes out of here.
func DisplayStatus(r models.BorrowRequest, now time.Time) models.RequestStatus {
	switch r.Status {
	case models.RequestApproved:
		if IsOverdue(r, now) {
			return models.RequestOverdue
		}
		return models.RequestApproved
	case models.RequestPending, models.RequestRejected, models.RequestReturned, models.RequestCanceled:
		return r.Status
	case models.RequestOverdue:
		return models.RequestOverdue
	default:
		return r.Status
	}
}

// DaysBetween counts calendar days from the start of from's day to the start
// of to's day, both taken in to's location. Dates from the lending API carry
// the configured zone, so the count does not depend on the host's.
// Negative when to is earlier.
func DaysBetween(from, to time.Time) int {
	from = from.In(to.Location())
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// RequestRow pairs a request with its display status for list views.
type RequestRow struct {
	models.BorrowRequest
	DisplayStatus models.RequestStatus `json:"displayStatus"`
}

func Rows(requests []models.BorrowRequest, now time.Time) []RequestRow {
	rows := make([]RequestRow, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, RequestRow{BorrowRequest: r, DisplayStatus: DisplayStatus(r, now)})
	}
	return rows
}

// FilterByDisplayStatus keeps rows whose display status is one of statuses.
func FilterByDisplayStatus(rows []RequestRow, statuses ...models.RequestStatus) []RequestRow {
	out := make([]RequestRow, 0, len(rows))
	for _, r := range rows {
		for _, s := range statuses {
			if r.DisplayStatus == s {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// OwnedBy keeps the requests of one student.
func OwnedBy(requests []models.BorrowRequest, userID string) []models.BorrowRequest {
	out := make([]models.BorrowRequest, 0, len(requests))
	for _, r := range requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}
