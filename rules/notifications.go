package rules

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"equipment_lending_client/models"
)

// ApprovalWindow is how long after approval the approval event stays visible.
const ApprovalWindow = 24 * time.Hour

type EventKind string

const (
	KindApproval EventKind = "approval"
	KindReturn   EventKind = "return"
)

type DueState string

const (
	DueTomorrow DueState = "due-tomorrow"
	DueToday    DueState = "due-today"
	DueOverdue  DueState = "overdue"
)

type Icon string

const (
	IconCheck Icon = "check-circle"
	IconAlert Icon = "alert-triangle"
	IconClock Icon = "clock"
)

// IdentityMode selects how notification ids are built. Typed ids keep the
// approval and return events of one request apart; RequestIdentity reproduces
// older clients, where both events share the request id and one read mark
// covers both.
type IdentityMode int

const (
	TypedIdentity IdentityMode = iota
	RequestIdentity
)

func ParseIdentityMode(s string) (IdentityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "typed":
		return TypedIdentity, nil
	case "request":
		return RequestIdentity, nil
	default:
		return TypedIdentity, fmt.Errorf("unknown notification identity %q", s)
	}
}

func NotificationID(requestID string, kind EventKind, mode IdentityMode) string {
	if mode == RequestIdentity {
		return requestID
	}
	return requestID + ":" + string(kind)
}

// Event is a derived notification. It is never stored; only its id ends up in
// the read set.
type Event struct {
	ID           string               `json:"id"`
	RequestID    string               `json:"requestId"`
	Kind         EventKind            `json:"kind"`
	Due          DueState             `json:"due,omitempty"`
	DaysUntilDue int                  `json:"daysUntilDue"`
	DaysOverdue  int                  `json:"daysOverdue,omitempty"`
	Severity     models.Severity      `json:"severity"`
	Icon         Icon                 `json:"icon"`
	Message      string               `json:"message"`
	Read         bool                 `json:"read"`
	Request      models.BorrowRequest `json:"request"`
}

// DeriveNotifications turns a student's requests into ordered events. Only
// APPROVED requests produce events: an approval event while the approval is
// younger than ApprovalWindow, and a return event once the due day is
// tomorrow or earlier. One request can yield both.
func DeriveNotifications(requests []models.BorrowRequest, read IDSet, now time.Time, mode IdentityMode) []Event {
	var events []Event
	for _, r := range requests {
		if r.Status != models.RequestApproved {
			continue
		}
		days := 0
		if !r.ReturnDate.IsZero() {
			days = DaysBetween(now, r.ReturnDate.Time)
		}
		if r.ApprovedDate != nil && !r.ApprovedDate.IsZero() && now.Sub(r.ApprovedDate.Time) < ApprovalWindow {
			ev := Event{
				ID:           NotificationID(r.ID, KindApproval, mode),
				RequestID:    r.ID,
				Kind:         KindApproval,
				DaysUntilDue: days,
				Severity:     models.SeveritySuccess,
				Icon:         IconCheck,
				Message:      fmt.Sprintf("Your request to borrow %q has been approved", r.EquipmentName),
				Request:      r,
			}
			events = append(events, ev)
		}
		if r.ReturnDate.IsZero() || days > 1 {
			continue
		}
		ev := Event{
			ID:           NotificationID(r.ID, KindReturn, mode),
			RequestID:    r.ID,
			Kind:         KindReturn,
			DaysUntilDue: days,
			Request:      r,
		}
		switch {
		case days == 1:
			ev.Due = DueTomorrow
			ev.Severity = models.SeverityWarning
			ev.Icon = IconClock
			ev.Message = fmt.Sprintf("%q is due for return tomorrow", r.EquipmentName)
		case days == 0:
			ev.Due = DueToday
			ev.Severity = models.SeverityWarning
			ev.Icon = IconClock
			ev.Message = fmt.Sprintf("%q is due for return today", r.EquipmentName)
		default:
			ev.Due = DueOverdue
			ev.DaysOverdue = -days
			ev.Severity = models.SeverityError
			ev.Icon = IconAlert
			ev.Message = fmt.Sprintf("%q is overdue for return", r.EquipmentName)
		}
		events = append(events, ev)
	}
	for i := range events {
		events[i].Read = read.Has(events[i].ID) || read.Has(events[i].RequestID)
	}
	sortEvents(events)
	return events
}

// sortKey is approvedDate, falling back to returnDate. Both events of one
// request share it, which keeps them adjacent.
func sortKey(r models.BorrowRequest) time.Time {
	if r.ApprovedDate != nil && !r.ApprovedDate.IsZero() {
		return r.ApprovedDate.Time
	}
	return r.ReturnDate.Time
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.RequestID == b.RequestID {
			return a.Kind == KindApproval && b.Kind != KindApproval
		}
		ka, kb := sortKey(a.Request), sortKey(b.Request)
		if !ka.Equal(kb) {
			return ka.After(kb)
		}
		return a.RequestID < b.RequestID
	})
}

func UnreadCount(events []Event) int {
	n := 0
	for _, e := range events {
		if !e.Read {
			n++
		}
	}
	return n
}

// EventIDs returns the distinct ids of events, in order.
func EventIDs(events []Event) []string {
	seen := make(IDSet, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if seen.Has(e.ID) {
			continue
		}
		seen.Add(e.ID)
		ids = append(ids, e.ID)
	}
	return ids
}

func FindEvent(events []Event, id string) (Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

type DetailLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EventDetail is the expanded view shown when a notification is opened.
type EventDetail struct {
	Title  string       `json:"title"`
	Lines  []DetailLine `json:"lines"`
	Notice string       `json:"notice,omitempty"`
	Advice string       `json:"advice,omitempty"`
}

const displayDate = "02/01/2006"

func Detail(e Event) EventDetail {
	r := e.Request
	d := EventDetail{
		Title: e.Message,
		Lines: []DetailLine{
			{Label: "Equipment", Value: r.EquipmentName},
			{Label: "Quantity", Value: fmt.Sprint(r.Quantity)},
			{Label: "Borrow date", Value: formatDate(r.BorrowDate)},
			{Label: "Due date", Value: formatDate(r.ReturnDate)},
		},
	}
	if r.ActualBorrowDate != nil && !r.ActualBorrowDate.IsZero() {
		d.Lines = append(d.Lines, DetailLine{Label: "Actual borrow date", Value: formatDate(*r.ActualBorrowDate)})
	}
	if r.ActualReturnDate != nil && !r.ActualReturnDate.IsZero() {
		d.Lines = append(d.Lines, DetailLine{Label: "Actual return date", Value: formatDate(*r.ActualReturnDate)})
	}
	if r.Notes != "" {
		d.Lines = append(d.Lines, DetailLine{Label: "Notes", Value: r.Notes})
	}
	if e.Kind != KindReturn {
		return d
	}
	switch e.Due {
	case DueOverdue:
		d.Notice = fmt.Sprintf("Overdue by %d %s", e.DaysOverdue, plural(e.DaysOverdue, "day", "days"))
		d.Advice = "The equipment you borrowed is past its due date. Please return it or contact an administrator as soon as possible so other students are not affected."
	case DueToday, DueTomorrow:
		d.Notice = "Due for return soon"
		d.Advice = "Please return the equipment on time so other students are not affected."
	}
	return d
}

func formatDate(t models.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(models.Location).Format(displayDate)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
