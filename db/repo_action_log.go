package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"equipment_lending_client/models"
)

var ErrAuditDisabled = errors.New("audit log is not configured")

// Audit actions.
const (
	ActionEquipmentCreate = "equipment.create"
	ActionEquipmentUpdate = "equipment.update"
	ActionEquipmentDelete = "equipment.delete"
	ActionRequestStatus   = "request.status"
	ActionRequestDelete   = "request.delete"
)

const (
	TargetEquipment = "equipment"
	TargetRequest   = "request"
)

func newID() string { return uuid.NewString() }

func (r *Repo) LogAction(ctx context.Context, entry models.ActionLog) (*models.ActionLog, error) {
	if entry.ID == "" {
		entry.ID = r.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("insert action log: %w", err)
	}
	return &entry, nil
}

type ActionQuery struct {
	ActorID    string
	TargetType string
	TargetID   string
	Page       int
	Size       int
}

type ActionPage struct {
	Actions []models.ActionLog `json:"actions"`
	Total   int64              `json:"total"`
}

func (r *Repo) ListActions(ctx context.Context, q ActionQuery) (ActionPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.ActionLog{})
	if s := strings.TrimSpace(q.ActorID); s != "" {
		tx = tx.Where("actor_id = ?", s)
	}
	if s := strings.TrimSpace(q.TargetType); s != "" {
		tx = tx.Where("target_type = ?", s)
	}
	if s := strings.TrimSpace(q.TargetID); s != "" {
		tx = tx.Where("target_id = ?", s)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ActionPage{}, err
	}
	actions := []models.ActionLog{}
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&actions).Error; err != nil {
		return ActionPage{}, err
	}
	return ActionPage{Actions: actions, Total: total}, nil
}
