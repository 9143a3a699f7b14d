// Package cancellation applies the cancellation policy to bookings that have
// not yet taken place.
package cancellation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stagepay/internal/domain/escrow"
	"stagepay/internal/domain/policy"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/services/notification"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type Service struct {
	store    repositories.Store
	notifier *notification.Service
	clock    clockwork.Clock
	calc     *policy.Calculator
}

func NewService(store repositories.Store, notifier *notification.Service, clock clockwork.Clock, calc *policy.Calculator) *Service {
	return &Service{store: store, notifier: notifier, clock: clock, calc: calc}
}

// Preview is what a cancellation would yield if requested now.
type Preview struct {
	BookingID        uuid.UUID   `json:"booking_id"`
	RequesterRole    escrow.Role `json:"requester_role"`
	EventDate        time.Time   `json:"event_date"`
	DaysBeforeEvent  int         `json:"days_before_event"`
	RefundPercentage int         `json:"refund_percentage"`
	RefundAmount     float64     `json:"refund_amount"`
	Currency         string      `json:"currency"`
	Eligible         bool        `json:"eligible"`
	Reason           string      `json:"reason,omitempty"`
}

// PreviewCancellation runs the policy without writing anything. A request the
// policy would refuse comes back with Eligible false rather than an error.
func (s *Service) PreviewCancellation(ctx context.Context, bookingID, requesterID uuid.UUID) (*Preview, error) {
	b, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	role, ok := b.RoleOf(requesterID)
	if !ok {
		return nil, apperrors.ErrNotBookingParty
	}
	if !b.State().Cancellable() {
		return nil, apperrors.ErrInvalidStateTransition.Withf("booking in state %s can no longer be cancelled", b.State())
	}

	res, err := s.calc.Calculate(b.EventDate, s.clock.Now(), role)
	p := &Preview{
		BookingID:        b.ID,
		RequesterRole:    role,
		EventDate:        b.EventDate,
		DaysBeforeEvent:  res.DaysBeforeEvent,
		RefundPercentage: res.RefundPercentage,
		RefundAmount:     policy.RefundAmount(b.TotalAmount, res.RefundPercentage),
		Currency:         b.Currency,
		Eligible:         res.Eligible,
	}
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindCancellationNotAllowed {
			return nil, err
		}
		p.Reason = err.Error()
	}
	return p, nil
}

type RequestInput struct {
	BookingID   uuid.UUID
	RequesterID uuid.UUID
	Reason      string
}

// RequestCancellation cancels the booking and records the refund the policy
// grants at this instant. Requests carrying a refund are approved at once;
// the others stay pending for manual handling.
func (s *Service) RequestCancellation(ctx context.Context, in RequestInput) (*models.CancellationRequest, error) {
	reason := strings.TrimSpace(in.Reason)
	var (
		out   *models.CancellationRequest
		batch notification.Batch
	)
	err := s.store.Transaction(ctx, func(tx repositories.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return err
		}
		role, ok := b.RoleOf(in.RequesterID)
		if !ok {
			return apperrors.ErrNotBookingParty
		}
		if reason == "" {
			return apperrors.ErrReasonRequired
		}
		if !b.State().Cancellable() {
			return apperrors.ErrInvalidStateTransition.Withf("booking in state %s can no longer be cancelled", b.State())
		}

		now := s.clock.Now()
		res, err := s.calc.Calculate(b.EventDate, now, role)
		if err != nil {
			return err
		}
		next, err := escrow.Transition(b.State(), escrow.CancelEvent(res.RefundPercentage))
		if err != nil {
			return err
		}

		req := &models.CancellationRequest{
			ID:               uuid.New(),
			BookingID:        b.ID,
			RequesterID:      in.RequesterID,
			RequesterRole:    role,
			Reason:           reason,
			EventDate:        b.EventDate,
			DaysBeforeEvent:  res.DaysBeforeEvent,
			RefundPercentage: res.RefundPercentage,
			RefundAmount:     policy.RefundAmount(b.TotalAmount, res.RefundPercentage),
			Status:           escrow.CancellationOutcome(res.RefundPercentage),
		}
		if req.Status == escrow.CancellationApproved {
			req.ApprovedAt = &now
		}
		if err := tx.Cancellations().Create(ctx, req); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
			return err
		}

		s.notifier.Record(ctx, tx, &batch, models.Notification{
			UserID:         b.Counterparty(role),
			BookingID:      b.ID,
			CancellationID: &req.ID,
			Type:           models.NotificationBookingCancelled,
			Title:          "Booking cancelled",
			Message: fmt.Sprintf("The %s cancelled the booking for %s. Refund: %d%% (%.2f %s).",
				role, b.EventDate.Format("2006-01-02"), req.RefundPercentage, req.RefundAmount, b.Currency),
			Payload: models.JSON{
				"refund_percentage": req.RefundPercentage,
				"refund_amount":     req.RefundAmount,
				"status":            string(req.Status),
			},
		})
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, &batch)
	log.Printf("[cancellation] booking %s cancelled by %s: %d%% refund, request %s", out.BookingID, out.RequesterRole, out.RefundPercentage, out.Status)
	return out, nil
}

// Get returns a cancellation request to a party of its booking or an admin.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller escrow.Actor) (*models.CancellationRequest, error) {
	c, err := s.store.Cancellations().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, c.BookingID, caller); err != nil {
		return nil, apperrors.ErrCancellationNotFound
	}
	return c, nil
}

func (s *Service) ListForBooking(ctx context.Context, bookingID uuid.UUID, caller escrow.Actor) ([]models.CancellationRequest, error) {
	if err := s.canView(ctx, bookingID, caller); err != nil {
		return nil, err
	}
	return s.store.Cancellations().ListByBooking(ctx, bookingID)
}

func (s *Service) canView(ctx context.Context, bookingID uuid.UUID, caller escrow.Actor) error {
	b, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if caller.IsAdmin() {
		return nil
	}
	if _, ok := b.RoleOf(caller.ID); !ok {
		return apperrors.ErrBookingNotFound
	}
	return nil
}
