package repositories

import (
	"context"
	"errors"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DisputeRepository interface {
	// Create fails with ErrDuplicateDispute when the booking already has an
	// active dispute.
	Create(ctx context.Context, d *models.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	HasActive(ctx context.Context, bookingID uuid.UUID) (bool, error)
	// Update persists the mutable fields of d, provided the stored status is
	// still from. Otherwise it fails with ErrDisputeStateChanged.
	Update(ctx context.Context, d *models.Dispute, from escrow.DisputeStatus) error
	ListDueForAutoResolve(ctx context.Context, now time.Time, limit int) ([]models.Dispute, error)
	ListSummaries(ctx context.Context, status escrow.DisputeStatus) ([]models.DisputeSummary, error)
}

type disputeRepository struct {
	db *gorm.DB
}

var activeDisputeStatuses = []escrow.DisputeStatus{escrow.DisputeOpen, escrow.DisputeAdminInvestigating}

func (r *disputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateDispute
	}
	return translate("create dispute", err, nil)
}

func (r *disputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate("find dispute", err, apperrors.ErrDisputeNotFound)
	}
	return &d, nil
}

func (r *disputeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, translate("lock dispute", err, apperrors.ErrDisputeNotFound)
	}
	return &d, nil
}

func (r *disputeRepository) HasActive(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("booking_id = ? AND status IN ?", bookingID, activeDisputeStatuses).
		Count(&count).Error
	if err != nil {
		return false, translate("count active disputes", err, nil)
	}
	return count > 0, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *models.Dispute, from escrow.DisputeStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("id = ? AND status = ?", d.ID, from).
		Updates(map[string]interface{}{
			"status":          d.Status,
			"artist_response": d.ArtistResponse,
			"artist_evidence": d.ArtistEvidence,
			"admin_decision":  d.AdminDecision,
			"admin_notes":     d.AdminNotes,
			"refund_amount":   d.RefundAmount,
			"auto_resolved":   d.AutoResolved,
			"resolved_by":     d.ResolvedBy,
			"resolved_at":     d.ResolvedAt,
		})
	if res.Error != nil {
		return translate("update dispute", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDisputeStateChanged.Withf("dispute %s is no longer %s", d.ID, from)
	}
	return nil
}

func (r *disputeRepository) ListDueForAutoResolve(ctx context.Context, now time.Time, limit int) ([]models.Dispute, error) {
	var out []models.Dispute
	err := r.db.WithContext(ctx).
		Where("status = ? AND auto_resolve_at <= ?", escrow.DisputeOpen, now).
		Order("auto_resolve_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, translate("list due disputes", err, nil)
}

func (r *disputeRepository) ListSummaries(ctx context.Context, status escrow.DisputeStatus) ([]models.DisputeSummary, error) {
	q := r.db.WithContext(ctx).Table("disputes AS d").
		Select(`d.id AS dispute_id, d.booking_id, d.type, d.status, d.reason, d.admin_decision,
			d.refund_amount, d.auto_resolve_at, d.created_at,
			b.event_date, b.total_amount, b.currency, b.status AS booking_status, b.payment_status,
			b.organizer_id, COALESCE(o.name, '') AS organizer_name, COALESCE(o.email, '') AS organizer_email,
			b.artist_id, COALESCE(a.name, '') AS artist_name, COALESCE(a.email, '') AS artist_email`).
		Joins("JOIN bookings b ON b.id = d.booking_id").
		Joins("LEFT JOIN users o ON o.id = b.organizer_id").
		Joins("LEFT JOIN users a ON a.id = b.artist_id")
	if status != "" {
		q = q.Where("d.status = ?", status)
	}
	var out []models.DisputeSummary
	err := q.Order("d.created_at DESC").Scan(&out).Error
	return out, translate("list dispute summaries", err, nil)
}
