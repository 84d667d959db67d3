package models

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
	RequestReturned RequestStatus = "RETURNED"
	RequestCanceled RequestStatus = "CANCELED"

	// RequestOverdue is never stored. It is derived at display time from an
	// APPROVED request whose return date has passed.
	RequestOverdue RequestStatus = "OVERDUE"
)

// Stored reports whether s is a state the backend persists.
func (s RequestStatus) Stored() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestReturned, RequestCanceled:
		return true
	case RequestOverdue:
		return false
	default:
		return false
	}
}

// Outstanding requests count against the borrow limits.
func (s RequestStatus) Outstanding() bool {
	switch s {
	case RequestPending, RequestApproved:
		return true
	case RequestRejected, RequestReturned, RequestCanceled, RequestOverdue:
		return false
	default:
		return false
	}
}

func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestRejected, RequestReturned, RequestCanceled:
		return true
	case RequestPending, RequestApproved, RequestOverdue:
		return false
	default:
		return false
	}
}

// CanTransition encodes PENDING → APPROVED → RETURNED, PENDING → REJECTED and
// PENDING → CANCELED.
func CanTransition(from, to RequestStatus) bool {
	switch from {
	case RequestPending:
		return to == RequestApproved || to == RequestRejected || to == RequestCanceled
	case RequestApproved:
		return to == RequestReturned
	case RequestRejected, RequestReturned, RequestCanceled, RequestOverdue:
		return false
	default:
		return false
	}
}

type BorrowRequest struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	UserName         string        `json:"userName"`
	EquipmentID      string        `json:"equipmentId"`
	EquipmentName    string        `json:"equipmentName"`
	Quantity         int           `json:"quantity"`
	RequestDate      Time          `json:"requestDate"`
	BorrowDate       Time          `json:"borrowDate"`
	ReturnDate       Time          `json:"returnDate"`
	ActualBorrowDate *Time         `json:"actualBorrowDate,omitempty"`
	ActualReturnDate *Time         `json:"actualReturnDate,omitempty"`
	ApprovedDate     *Time         `json:"approvedDate,omitempty"`
	Status           RequestStatus `json:"status"`
	Notes            string        `json:"notes,omitempty"`
}

// NewBorrowRequest is the create payload. id, status and requestDate are
// assigned by the server.
type NewBorrowRequest struct {
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
	EquipmentID   string `json:"equipmentId"`
	EquipmentName string `json:"equipmentName"`
	Quantity      int    `json:"quantity"`
	BorrowDate    Time   `json:"borrowDate"`
	ReturnDate    Time   `json:"returnDate"`
	Notes         string `json:"notes,omitempty"`
}

// BorrowDraft is what a student fills in on the borrow form.
type BorrowDraft struct {
	EquipmentID string `json:"equipmentId"`
	Quantity    int    `json:"quantity"`
	BorrowDate  Time   `json:"borrowDate"`
	ReturnDate  Time   `json:"returnDate"`
	Notes       string `json:"notes,omitempty"`
}

func (d BorrowDraft) Validate(now time.Time, eq Equipment) error {
	v := &ValidationError{}
	if strings.TrimSpace(d.EquipmentID) == "" {
		v.Add("equipmentId", "equipment is required")
	}
	switch {
	case d.Quantity < 1:
		v.Add("quantity", "quantity must be at least 1")
	case d.Quantity > eq.AvailableQuantity:
		v.Add("quantity", "quantity exceeds available stock")
	}
	if d.BorrowDate.IsZero() || d.ReturnDate.IsZero() {
		v.Add("dateRange", "borrow and return dates are required")
		return v.OrNil()
	}
	if d.BorrowDate.Before(DateOf(now).Time) {
		v.Add("borrowDate", "borrow date cannot be in the past")
	}
	if d.ReturnDate.Before(d.BorrowDate.Time) {
		v.Add("returnDate", "return date must not be before borrow date")
	}
	return v.OrNil()
}
