// Package booking moves bookings along their main path: payment entering
// escrow and delivery being confirmed.
package booking

import (
	"context"
	"fmt"
	"log"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/services/notification"

	"github.com/google/uuid"
)

type Service struct {
	store    repositories.Store
	notifier *notification.Service
}

func NewService(store repositories.Store, notifier *notification.Service) *Service {
	return &Service{store: store, notifier: notifier}
}

// RecordPayment marks the payment of a confirmed booking as held in escrow.
func (s *Service) RecordPayment(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.apply(ctx, bookingID, escrow.EventPaymentReceived, func(b *models.Booking) error { return nil },
		func(b *models.Booking) []models.Notification {
			msg := fmt.Sprintf("Payment of %.2f %s for %s is held in escrow.", b.TotalAmount, b.Currency, b.EventDate.Format("2006-01-02"))
			return []models.Notification{
				{UserID: b.OrganizerID, Type: models.NotificationPaymentReceived, Title: "Payment received", Message: msg},
				{UserID: b.ArtistID, Type: models.NotificationPaymentReceived, Title: "Payment received", Message: msg},
			}
		})
}

// ConfirmDelivery lets the organizer confirm the performance, releasing the
// escrowed payment to the artist.
func (s *Service) ConfirmDelivery(ctx context.Context, bookingID, organizerID uuid.UUID) (*models.Booking, error) {
	return s.apply(ctx, bookingID, escrow.EventConfirmDelivery,
		func(b *models.Booking) error {
			if b.OrganizerID != organizerID {
				return apperrors.ErrNotBookingOrganizer
			}
			return nil
		},
		func(b *models.Booking) []models.Notification {
			return []models.Notification{{
				UserID:  b.ArtistID,
				Type:    models.NotificationPaymentReleased,
				Title:   "Payment released",
				Message: fmt.Sprintf("The organizer confirmed your performance; %.2f %s was released.", b.TotalAmount, b.Currency),
			}}
		})
}

func (s *Service) apply(ctx context.Context, bookingID uuid.UUID, ev escrow.BookingEvent,
	authorize func(*models.Booking) error, notices func(*models.Booking) []models.Notification) (*models.Booking, error) {
	var (
		out   *models.Booking
		batch notification.Batch
	)
	err := s.store.Transaction(ctx, func(tx repositories.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := authorize(b); err != nil {
			return err
		}
		next, err := escrow.Transition(b.State(), ev)
		if err != nil {
			return err
		}
		if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
			return err
		}
		b.SetState(next)
		for _, n := range notices(b) {
			n.BookingID = b.ID
			n.Payload = models.JSON{"status": string(next.Status), "payment_status": string(next.Payment)}
			s.notifier.Record(ctx, tx, &batch, n)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, &batch)
	log.Printf("[booking] %s: %s -> %s", out.ID, ev, out.State())
	return out, nil
}

// Get returns a booking to one of its parties or an admin.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller escrow.Actor) (*models.Booking, error) {
	b, err := s.store.Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return b, nil
	}
	if _, ok := b.RoleOf(caller.ID); !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	return b, nil
}
