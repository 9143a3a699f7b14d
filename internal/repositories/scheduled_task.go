package repositories

import (
	"context"

	"stagepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduledTaskRepository interface {
	Create(ctx context.Context, t *models.ScheduledTask) error
	// MarkDone closes every pending task of a dispute. Having none is not an error.
	MarkDone(ctx context.Context, disputeID uuid.UUID) error
	ListPending(ctx context.Context) ([]models.ScheduledTask, error)
}

type scheduledTaskRepository struct {
	db *gorm.DB
}

func (r *scheduledTaskRepository) Create(ctx context.Context, t *models.ScheduledTask) error {
	return translate("create scheduled task", r.db.WithContext(ctx).Create(t).Error, nil)
}

func (r *scheduledTaskRepository) MarkDone(ctx context.Context, disputeID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.ScheduledTask{}).
		Where("dispute_id = ? AND status = ?", disputeID, models.TaskStatusPending).
		Update("status", models.TaskStatusDone).Error
	return translate("mark scheduled task done", err, nil)
}

func (r *scheduledTaskRepository) ListPending(ctx context.Context) ([]models.ScheduledTask, error) {
	var out []models.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("status = ?", models.TaskStatusPending).
		Order("runs_at ASC").
		Find(&out).Error
	return out, translate("list pending tasks", err, nil)
}
