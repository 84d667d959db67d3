package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/db"
)

type AuditController struct{ *Srv }

func NewAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// GET /api/audit?actorId=&targetType=&targetId=&page=&size=
func (ac *AuditController) List(c *gin.Context) {
	q := db.ActionQuery{
		ActorID:    c.Query("actorId"),
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	page, err := ac.Audit.ListActions(c.Request.Context(), q)
	if errors.Is(err, db.ErrAuditDisabled) {
		c.JSON(http.StatusNotImplemented, app.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total":   page.Total,
		"actions": page.Actions,
	})
}
