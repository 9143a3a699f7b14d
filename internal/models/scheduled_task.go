package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskTypeDisputeAutoResolve = "dispute.auto_resolve"

	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// ScheduledTask is an advisory marker that a dispute should be swept at
// RunsAt. The sweep never depends on it.
type ScheduledTask struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	TaskType  string    `gorm:"type:varchar(48);not null" json:"task_type"`
	DisputeID uuid.UUID `gorm:"type:uuid;not null;index" json:"dispute_id"`
	RunsAt    time.Time `gorm:"not null;index" json:"runs_at"`
	Status    string    `gorm:"type:varchar(16);not null;index" json:"status"`
	Payload   JSON      `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
