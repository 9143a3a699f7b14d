package repositories

import (
	"context"

	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CancellationRepository interface {
	Create(ctx context.Context, c *models.CancellationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.CancellationRequest, error)
}

type cancellationRepository struct {
	db *gorm.DB
}

func (r *cancellationRepository) Create(ctx context.Context, c *models.CancellationRequest) error {
	return translate("create cancellation request", r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error, nil)
}

func (r *cancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error) {
	var c models.CancellationRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate("find cancellation request", err, apperrors.ErrCancellationNotFound)
	}
	return &c, nil
}

func (r *cancellationRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.CancellationRequest, error) {
	var out []models.CancellationRequest
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&out).Error
	return out, translate("list cancellation requests", err, nil)
}
