package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/rules"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

// GET /api/notifications
func (nc *NotificationController) List(c *gin.Context) {
	acts := app.ActionsOf(c)
	if _, err := nc.requests(c.Request.Context(), acts); err != nil {
		nc.fail(c, err)
		return
	}
	events, err := acts.Notifications(nc.Now())
	if err != nil {
		nc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": events, "unread": rules.UnreadCount(events)})
}

// GET /api/notifications/:id opens one event and marks it read.
func (nc *NotificationController) View(c *gin.Context) {
	ev, detail, err := app.ActionsOf(c).ViewNotification(c.Request.Context(), nc.Reads, c.Param("id"), nc.Now())
	if err != nil {
		nc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"notification": ev, "detail": detail})
}

// POST /api/notifications/read-all
func (nc *NotificationController) ReadAll(c *gin.Context) {
	n, err := app.ActionsOf(c).MarkAllNotificationsRead(c.Request.Context(), nc.Reads, nc.Now())
	if err != nil {
		nc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "marked": n})
}

// GET /api/alerts
func (nc *NotificationController) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"items": app.ActionsOf(c).Store.Alerts.List()})
}

// DELETE /api/alerts/:id
func (nc *NotificationController) DismissAlert(c *gin.Context) {
	if !app.ActionsOf(c).Store.Alerts.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
