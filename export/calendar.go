package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

const calendarProductID = "-//equipment-lending//due dates//EN"

// DueCalendar builds an iCalendar feed with one all-day event per APPROVED
// request on its return date. Overdue requests say so in the summary.
func DueCalendar(requests []models.BorrowRequest, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Equipment return dates")

	for _, r := range requests {
		if r.Status != models.RequestApproved || r.ReturnDate.IsZero() {
			continue
		}
		due := r.ReturnDate.In(models.Location)
		ev := cal.AddEvent(fmt.Sprintf("%s@equipment-lending", r.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(due)
		ev.SetAllDayEndAt(due.AddDate(0, 0, 1))

		summary := fmt.Sprintf("Return %s x%d", r.EquipmentName, r.Quantity)
		if rules.DisplayStatus(r, now) == models.RequestOverdue {
			summary = "OVERDUE: " + summary
		}
		ev.SetSummary(summary)
		desc := fmt.Sprintf("Borrowed %s, due %s.", r.BorrowDate.Format("02/01/2006"), due.Format("02/01/2006"))
		if r.Notes != "" {
			desc += " Notes: " + r.Notes
		}
		ev.SetDescription(desc)
	}
	return cal.Serialize()
}
