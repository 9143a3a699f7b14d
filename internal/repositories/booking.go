package repositories

import (
	"context"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// UpdateState moves the booking from one state to another. It fails with
	// ErrInvalidStateTransition when the stored state is no longer from.
	UpdateState(ctx context.Context, id uuid.UUID, from, to escrow.BookingState) error
}

type bookingRepository struct {
	db *gorm.DB
}

func (r *bookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return translate("create booking", r.db.WithContext(ctx).Create(b).Error, nil)
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, translate("find booking", err, apperrors.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, translate("lock booking", err, apperrors.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *bookingRepository) UpdateState(ctx context.Context, id uuid.UUID, from, to escrow.BookingState) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, from.Status, from.Payment).
		Updates(map[string]interface{}{
			"status":         to.Status,
			"payment_status": to.Payment,
		})
	if res.Error != nil {
		return translate("update booking state", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInvalidStateTransition.Withf("booking %s is no longer %s", id, from)
	}
	return nil
}
