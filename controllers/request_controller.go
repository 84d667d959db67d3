package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/db"
	"equipment_lending_client/models"
	"equipment_lending_client/rules"
	"equipment_lending_client/store"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// GET /api/requests?status=PENDING,OVERDUE
// Students only see their own requests. status filters on the display
// status, so OVERDUE works here.
func (rc *RequestController) List(c *gin.Context) {
	items, err := rc.requests(c.Request.Context(), app.ActionsOf(c))
	if err != nil {
		rc.fail(c, err)
		return
	}
	user := app.UserOf(c)
	if !user.IsAdmin {
		items = rules.OwnedBy(items, user.ID)
	}

	rows := rules.Rows(items, rc.Now())
	if raw := c.Query("status"); raw != "" {
		var statuses []models.RequestStatus
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.RequestStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
		rows = rules.FilterByDisplayStatus(rows, statuses...)
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/requests/:id
func (rc *RequestController) Get(c *gin.Context) {
	r, err := app.ActionsOf(c).GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	if user := app.UserOf(c); !user.IsAdmin && r.UserID != user.ID {
		rc.fail(c, store.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, rules.RequestRow{BorrowRequest: r, DisplayStatus: rules.DisplayStatus(r, rc.Now())})
}

// POST /api/requests
func (rc *RequestController) Create(c *gin.Context) {
	var draft models.BorrowDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	r, err := app.ActionsOf(c).SubmitRequest(c.Request.Context(), draft)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// POST /api/requests/:id/cancel
func (rc *RequestController) Cancel(c *gin.Context) {
	r, err := app.ActionsOf(c).CancelRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type statusUpdate struct {
	Status models.RequestStatus `json:"status" binding:"required"`
	Notes  string               `json:"notes,omitempty"`
}

// PUT /api/requests/:id/status
func (rc *RequestController) UpdateStatus(c *gin.Context) {
	var in statusUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	id := c.Param("id")
	r, err := app.ActionsOf(c).UpdateRequestStatus(c.Request.Context(), id, in.Status, in.Notes)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.audit(c, db.ActionRequestStatus, db.TargetRequest, id, string(in.Status))
	c.JSON(http.StatusOK, r)
}

// DELETE /api/requests/:id
func (rc *RequestController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := app.ActionsOf(c).DeleteRequest(c.Request.Context(), id); err != nil {
		rc.fail(c, err)
		return
	}
	rc.audit(c, db.ActionRequestDelete, db.TargetRequest, id, "")
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/eligibility/:equipmentId?quantity=1
func (rc *RequestController) Eligibility(c *gin.Context) {
	qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "quantity must be a number"})
		return
	}
	acts := app.ActionsOf(c)
	if _, err := rc.requests(c.Request.Context(), acts); err != nil {
		rc.fail(c, err)
		return
	}
	e, err := acts.Eligibility(c.Param("equipmentId"), qty)
	if err != nil {
		rc.fail(c, err)
		return
	}
	body := app.H{"eligibility": e}
	var inel *rules.IneligibleError
	if errors.As(e.Err(), &inel) {
		body["message"] = inel.Message()
	}
	c.JSON(http.StatusOK, body)
}
