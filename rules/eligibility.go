// Package rules holds the pure functions the gateway derives views from:
// borrow eligibility, notification events, display status and aggregates.
// Nothing here performs I/O; callers pass in the request snapshot and now.
package rules

import (
	"fmt"

	"equipment_lending_client/models"
)

const (
	// SameEquipmentLimit caps outstanding units of one equipment per student.
	SameEquipmentLimit = 2
	// TotalLimit caps outstanding units across all equipment per student.
	TotalLimit = 3
)

type Reason string

const (
	ReasonSameTypeLimit   Reason = "same-type limit exceeded"
	ReasonTotalLimit      Reason = "total limit exceeded"
	ReasonInvalidQuantity Reason = "quantity must be positive"
)

// Outstanding sums the quantities of a student's PENDING and APPROVED
// requests. SameEquipment is always a subset of AllEquipment.
type Outstanding struct {
	SameEquipment int `json:"sameEquipment"`
	AllEquipment  int `json:"allEquipment"`
}

func CountOutstanding(requests []models.BorrowRequest, userID, equipmentID string) Outstanding {
	var o Outstanding
	for _, r := range requests {
		if r.UserID != userID || !r.Status.Outstanding() {
			continue
		}
		o.AllEquipment += r.Quantity
		if r.EquipmentID == equipmentID {
			o.SameEquipment += r.Quantity
		}
	}
	return o
}

// CanRequestMore reports whether the borrow form should be enabled at all.
func (o Outstanding) CanRequestMore() bool {
	return o.SameEquipment < SameEquipmentLimit && o.AllEquipment < TotalLimit
}

type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
	Outstanding
}

// CheckEligibility is advisory: the backend still enforces stock. It only
// saves a round trip for requests that would break the per-student limits.
func CheckEligibility(requests []models.BorrowRequest, userID, equipmentID string, quantity int) Eligibility {
	o := CountOutstanding(requests, userID, equipmentID)
	e := Eligibility{Outstanding: o}
	switch {
	case quantity < 1:
		e.Reason = ReasonInvalidQuantity
	case o.SameEquipment+quantity > SameEquipmentLimit:
		e.Reason = ReasonSameTypeLimit
	case o.AllEquipment+quantity > TotalLimit:
		e.Reason = ReasonTotalLimit
	default:
		e.Allowed = true
	}
	return e
}

// Err returns nil when allowed and an *IneligibleError otherwise.
func (e Eligibility) Err() error {
	if e.Allowed {
		return nil
	}
	return &IneligibleError{Reason: e.Reason, Outstanding: e.Outstanding}
}

type IneligibleError struct {
	Reason Reason
	Outstanding
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("borrow request not allowed: %s", e.Reason)
}

// Message is the user-facing text for the rejection alert.
func (e *IneligibleError) Message() string {
	switch e.Reason {
	case ReasonSameTypeLimit:
		return fmt.Sprintf("You can borrow at most %d units of the same equipment, pending and approved requests included.", SameEquipmentLimit)
	case ReasonTotalLimit:
		return fmt.Sprintf("You can borrow at most %d units in total, pending and approved requests included.", TotalLimit)
	case ReasonInvalidQuantity:
		return "Quantity must be at least 1."
	default:
		return "Request exceeds the allowed quantity."
	}
}
