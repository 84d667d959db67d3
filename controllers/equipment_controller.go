package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/db"
	"equipment_lending_client/models"
	"equipment_lending_client/store"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// GET /api/equipment?category=&status=
func (ec *EquipmentController) List(c *gin.Context) {
	acts := app.ActionsOf(c)
	items, err := acts.FetchEquipment(c.Request.Context())
	if errors.Is(err, store.ErrSuperseded) {
		items, err = acts.Store.Snapshot().Equipment.Items, nil
	}
	if err != nil {
		ec.fail(c, err)
		return
	}

	category := c.Query("category")
	status := models.EquipmentStatus(c.Query("status"))
	out := make([]models.Equipment, 0, len(items))
	for _, e := range items {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, app.H{"items": out})
}

// GET /api/equipment/:id
func (ec *EquipmentController) Get(c *gin.Context) {
	e, err := app.ActionsOf(c).GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// POST /api/equipment
func (ec *EquipmentController) Create(c *gin.Context) {
	var in models.EquipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	e, err := app.ActionsOf(c).CreateEquipment(c.Request.Context(), in)
	if err != nil {
		ec.fail(c, err)
		return
	}
	ec.audit(c, db.ActionEquipmentCreate, db.TargetEquipment, e.ID, e.Name)
	c.JSON(http.StatusCreated, e)
}

// PUT /api/equipment/:id
func (ec *EquipmentController) Update(c *gin.Context) {
	var in models.EquipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	id := c.Param("id")
	e, err := app.ActionsOf(c).UpdateEquipment(c.Request.Context(), id, in)
	if err != nil {
		ec.fail(c, err)
		return
	}
	ec.audit(c, db.ActionEquipmentUpdate, db.TargetEquipment, id, e.Name)
	c.JSON(http.StatusOK, e)
}

// DELETE /api/equipment/:id
func (ec *EquipmentController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := app.ActionsOf(c).DeleteEquipment(c.Request.Context(), id); err != nil {
		ec.fail(c, err)
		return
	}
	ec.audit(c, db.ActionEquipmentDelete, db.TargetEquipment, id, "")
	c.JSON(http.StatusOK, app.H{"ok": true})
}
