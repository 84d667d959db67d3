package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/export"
	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

const (
	defaultStatsWindow = 30 * 24 * time.Hour
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/dashboard
func (rc *ReportController) Dashboard(c *gin.Context) {
	acts := app.ActionsOf(c)
	equipment, requests, err := acts.LoadLendingData(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	user := app.UserOf(c)
	if !user.IsAdmin {
		requests = rules.OwnedBy(requests, user.ID)
	}
	c.JSON(http.StatusOK, rules.BuildDashboard(equipment, requests, rc.Now()))
}

// statistics parses ?from=&to= (dates) and builds the aggregate. The window
// defaults to the last 30 days.
func (rc *ReportController) statistics(c *gin.Context) (rules.Statistics, bool) {
	now := rc.Now()
	to := now
	from := now.Add(-defaultStatsWindow)
	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := models.ParseTime(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": fmt.Sprintf("invalid %s date", name)})
			return rules.Statistics{}, false
		}
		*dst = t.Time
	}
	if !from.Before(to) {
		c.JSON(http.StatusBadRequest, app.H{"error": "from must be before to"})
		return rules.Statistics{}, false
	}

	equipment, requests, err := app.ActionsOf(c).LoadLendingData(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return rules.Statistics{}, false
	}
	return rules.BuildStatistics(equipment, requests, from, to, now), true
}

// GET /api/statistics
func (rc *ReportController) Statistics(c *gin.Context) {
	if stats, ok := rc.statistics(c); ok {
		c.JSON(http.StatusOK, stats)
	}
}

// GET /api/statistics/export
func (rc *ReportController) ExportStatistics(c *gin.Context) {
	stats, ok := rc.statistics(c)
	if !ok {
		return
	}
	buf, name, err := export.StatisticsWorkbook(stats)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GET /api/calendar.ics lists the signed-in user's return dates.
func (rc *ReportController) Calendar(c *gin.Context) {
	requests, err := rc.requests(c.Request.Context(), app.ActionsOf(c))
	if err != nil {
		rc.fail(c, err)
		return
	}
	mine := rules.OwnedBy(requests, app.UserOf(c).ID)
	c.Header("Content-Disposition", `attachment; filename="return-dates.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(export.DueCalendar(mine, rc.Now())))
}
