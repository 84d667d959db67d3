package models

import "time"

const ActionLogTable = "lend_action_log"

// ActionLog records an admin mutation performed through the gateway.
type ActionLog struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string    `gorm:"size:255;index;not null" json:"actorId"`
	Action     string    `gorm:"size:64;not null" json:"action"`
	TargetType string    `gorm:"size:32;not null" json:"targetType"`
	TargetID   string    `gorm:"size:255;index" json:"targetId"`
	Detail     string    `gorm:"size:255" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (ActionLog) TableName() string { return ActionLogTable }
