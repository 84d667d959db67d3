package rules

import (
	"sort"
	"time"

	"equipment_lending_client/models"
)

const (
	dashboardOverdueItems = 4
	dashboardRecentItems  = 5
)

type Dashboard struct {
	TotalEquipment int          `json:"totalEquipment"`
	Borrowing      int          `json:"borrowing"`
	Pending        int          `json:"pending"`
	Overdue        int          `json:"overdue"`
	OverdueItems   []RequestRow `json:"overdueItems"`
	Recent         []RequestRow `json:"recent"`
}

// BuildDashboard summarizes requests as of now. Overdue requests are counted
// as overdue only, never as borrowing.
func BuildDashboard(equipment []models.Equipment, requests []models.BorrowRequest, now time.Time) Dashboard {
	rows := Rows(requests, now)
	d := Dashboard{TotalEquipment: len(equipment)}
	var overdue []RequestRow
	for _, r := range rows {
		switch r.DisplayStatus {
		case models.RequestApproved:
			d.Borrowing++
		case models.RequestPending:
			d.Pending++
		case models.RequestOverdue:
			d.Overdue++
			overdue = append(overdue, r)
		case models.RequestRejected, models.RequestReturned, models.RequestCanceled:
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].ReturnDate.After(overdue[j].ReturnDate.Time)
	})
	d.OverdueItems = head(overdue, dashboardOverdueItems)

	recent := append([]RequestRow(nil), rows...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].RequestDate.After(recent[j].RequestDate.Time)
	})
	d.Recent = head(recent, dashboardRecentItems)
	return d
}

func head(rows []RequestRow, n int) []RequestRow {
	if len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		return []RequestRow{}
	}
	return rows
}
