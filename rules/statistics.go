package rules

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"equipment_lending_client/models"
)

const topEquipment = 10

type CountRow struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MostBorrowed struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MonthlySummary struct {
	Month         string       `json:"month"`
	TotalBorrowed int          `json:"totalBorrowed"`
	UniqueUsers   int          `json:"uniqueUsers"`
	MostBorrowed  MostBorrowed `json:"mostBorrowed"`
}

type EquipmentStats struct {
	EquipmentID       string          `json:"equipmentId"`
	EquipmentName     string          `json:"equipmentName"`
	TotalBorrows      int             `json:"totalBorrows"`
	AvgBorrowDuration decimal.Decimal `json:"avgBorrowDuration"`
}

type Statistics struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	ByEquipment []CountRow       `json:"byEquipment"`
	ByCategory  []CountRow       `json:"byCategory"`
	Monthly     MonthlySummary   `json:"monthly"`
	Equipment   []EquipmentStats `json:"equipment"`
}

// borrowed: requests that actually went out, whatever their display status.
func borrowed(r models.BorrowRequest, now time.Time) bool {
	switch DisplayStatus(r, now) {
	case models.RequestApproved, models.RequestOverdue, models.RequestReturned:
		return true
	case models.RequestPending, models.RequestRejected, models.RequestCanceled:
		return false
	default:
		return false
	}
}

// BuildStatistics aggregates borrowed quantities for requests whose request
// date falls strictly inside (from, to), plus a summary of now's month.
func BuildStatistics(equipment []models.Equipment, requests []models.BorrowRequest, from, to, now time.Time) Statistics {
	byID := make(map[string]models.Equipment, len(equipment))
	for _, e := range equipment {
		byID[e.ID] = e
	}

	var inRange []models.BorrowRequest
	for _, r := range requests {
		if borrowed(r, now) && r.RequestDate.After(from) && r.RequestDate.Before(to) {
			inRange = append(inRange, r)
		}
	}

	equipCounts := map[string]int{}
	catCounts := map[string]int{}
	for _, r := range inRange {
		equipCounts[r.EquipmentID] += r.Quantity
		if e, ok := byID[r.EquipmentID]; ok {
			catCounts[e.Category] += r.Quantity
		}
	}
	byEquipment := make([]CountRow, 0, len(equipCounts))
	for id, n := range equipCounts {
		name := "Unknown equipment"
		if e, ok := byID[id]; ok {
			name = e.Name
		}
		byEquipment = append(byEquipment, CountRow{Name: name, Count: n})
	}
	sortCounts(byEquipment)
	if len(byEquipment) > topEquipment {
		byEquipment = byEquipment[:topEquipment]
	}
	byCategory := make([]CountRow, 0, len(catCounts))
	for c, n := range catCounts {
		byCategory = append(byCategory, CountRow{Name: c, Count: n})
	}
	sortCounts(byCategory)

	return Statistics{
		From:        from,
		To:          to,
		ByEquipment: byEquipment,
		ByCategory:  byCategory,
		Monthly:     monthly(byID, requests, now),
		Equipment:   equipmentStats(byID, inRange),
	}
}

func monthly(byID map[string]models.Equipment, requests []models.BorrowRequest, now time.Time) MonthlySummary {
	loc := models.Location
	now = now.In(loc)
	s := MonthlySummary{Month: now.Format("January 2006"), MostBorrowed: MostBorrowed{Name: "None"}}
	users := map[string]struct{}{}
	counts := map[string]int{}
	for _, r := range requests {
		rd := r.RequestDate.In(loc)
		if rd.Year() != now.Year() || rd.Month() != now.Month() || !borrowed(r, now) {
			continue
		}
		s.TotalBorrowed += r.Quantity
		users[r.UserID] = struct{}{}
		counts[r.EquipmentID] += r.Quantity
	}
	s.UniqueUsers = len(users)
	var bestID string
	for id, n := range counts {
		if n > s.MostBorrowed.Count || (n == s.MostBorrowed.Count && id < bestID) {
			bestID = id
			s.MostBorrowed.Count = n
		}
	}
	if bestID != "" {
		s.MostBorrowed.Name = "Unknown"
		if e, ok := byID[bestID]; ok {
			s.MostBorrowed.Name = e.Name
		}
	}
	return s
}

// equipmentStats averages the borrow span in days. Returned requests use
// their actual dates when present, the planned ones otherwise.
func equipmentStats(byID map[string]models.Equipment, requests []models.BorrowRequest) []EquipmentStats {
	type acc struct {
		name  string
		n     int
		timed int
		total decimal.Decimal
	}
	accs := map[string]*acc{}
	for _, r := range requests {
		a, ok := accs[r.EquipmentID]
		if !ok {
			name := r.EquipmentName
			if e, found := byID[r.EquipmentID]; found {
				name = e.Name
			}
			a = &acc{name: name}
			accs[r.EquipmentID] = a
		}
		start, end := r.BorrowDate.Time, r.ReturnDate.Time
		if r.ActualBorrowDate != nil && !r.ActualBorrowDate.IsZero() {
			start = r.ActualBorrowDate.Time
		}
		if r.ActualReturnDate != nil && !r.ActualReturnDate.IsZero() {
			end = r.ActualReturnDate.Time
		}
		a.n++
		if !start.IsZero() && !end.IsZero() {
			a.timed++
			a.total = a.total.Add(decimal.NewFromInt(int64(DaysBetween(start, end))))
		}
	}
	out := make([]EquipmentStats, 0, len(accs))
	for id, a := range accs {
		avg := decimal.Zero
		if a.timed > 0 {
			avg = a.total.Div(decimal.NewFromInt(int64(a.timed))).Round(1)
		}
		out = append(out, EquipmentStats{EquipmentID: id, EquipmentName: a.name, TotalBorrows: a.n, AvgBorrowDuration: avg})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBorrows != out[j].TotalBorrows {
			return out[i].TotalBorrows > out[j].TotalBorrows
		}
		return out[i].EquipmentID < out[j].EquipmentID
	})
	return out
}

func sortCounts(rows []CountRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
}
