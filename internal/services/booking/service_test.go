package booking

import (
	"context"
	"testing"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/services/notification"
	"stagepay/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, state escrow.BookingState) (*Service, *testutil.MemStore, testutil.Parties, *models.Booking) {
	t.Helper()
	store := testutil.NewMemStore()
	parties := testutil.SeedParties(t, store)
	b := testutil.SeedBooking(t, store, parties, state, time.Now().AddDate(0, 1, 0), 800)
	return NewService(store, notification.NewService(nil)), store, parties, b
}

func TestRecordPayment(t *testing.T) {
	svc, store, _, b := setup(t, escrow.BookingState{Status: escrow.StatusConfirmed, Payment: escrow.PaymentPending})

	got, err := svc.RecordPayment(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Escrowed, got.State())
	assert.Len(t, store.AllNotifications(), 2)

	_, err = svc.RecordPayment(context.Background(), b.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	assert.Len(t, store.AllNotifications(), 2)
}

func TestConfirmDelivery(t *testing.T) {
	svc, store, parties, b := setup(t, testutil.Escrowed)
	ctx := context.Background()

	_, err := svc.ConfirmDelivery(ctx, b.ID, parties.Artist.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotBookingOrganizer)

	got, err := svc.ConfirmDelivery(ctx, b.ID, parties.Organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, escrow.BookingState{Status: escrow.StatusCompleted, Payment: escrow.PaymentReleased}, got.State())

	notes := store.AllNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, parties.Artist.ID, notes[0].UserID)
	assert.Equal(t, models.NotificationPaymentReleased, notes[0].Type)
	testutil.AssertInvariants(t, store)

	_, err = svc.ConfirmDelivery(ctx, b.ID, parties.Organizer.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestConfirmDelivery_UnpaidBooking(t *testing.T) {
	svc, _, parties, b := setup(t, escrow.BookingState{Status: escrow.StatusConfirmed, Payment: escrow.PaymentPending})

	_, err := svc.ConfirmDelivery(context.Background(), b.ID, parties.Organizer.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestGet(t *testing.T) {
	svc, _, parties, b := setup(t, testutil.Escrowed)
	ctx := context.Background()

	got, err := svc.Get(ctx, b.ID, parties.ArtistActor())
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.Get(ctx, b.ID, parties.AdminActor())
	assert.NoError(t, err)

	_, err = svc.Get(ctx, b.ID, escrow.Actor{ID: uuid.New(), Role: escrow.RoleArtist})
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)

	_, err = svc.Get(ctx, uuid.New(), parties.AdminActor())
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
}
