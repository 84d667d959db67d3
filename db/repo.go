package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"equipment_lending_client/models"
)

// Recorder is what the gateway needs from the audit log.
type Recorder interface {
	LogAction(ctx context.Context, entry models.ActionLog) (*models.ActionLog, error)
	ListActions(ctx context.Context, q ActionQuery) (ActionPage, error)
}

type Repo struct {
	DB    *gorm.DB
	now   func() time.Time
	newID func() string
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db, now: time.Now, newID: newID} }

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) LogAction(_ context.Context, entry models.ActionLog) (*models.ActionLog, error) {
	return &entry, nil
}

func (NopRecorder) ListActions(context.Context, ActionQuery) (ActionPage, error) {
	return ActionPage{Actions: []models.ActionLog{}}, ErrAuditDisabled
}
var _ Recorder = (*Repo)(nil)
