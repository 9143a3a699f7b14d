package notification

import (
	"context"
	"testing"

	"stagepay/internal/domain/escrow"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

func TestService_RecordThenDispatch(t *testing.T) {
	store := testutil.NewMemStore()
	pub := new(MockPublisher)
	svc := NewService(pub)
	ctx := context.Background()
	userID, bookingID := uuid.New(), uuid.New()

	pub.On("PublishJSON", ctx, "notification.dispute.reported", mock.AnythingOfType("models.Notification")).Return(nil).Once()

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		res := svc.Record(ctx, tx, &batch, models.Notification{
			UserID: userID, BookingID: bookingID, Type: models.NotificationDisputeReported, Title: "Non-delivery reported",
		})
		assert.True(t, res.OK())
		return nil
	}))
	assert.Equal(t, 1, batch.Len())

	svc.Dispatch(ctx, &batch)
	pub.AssertExpectations(t)
	assert.Equal(t, 0, batch.Len())

	list, err := svc.ListForUser(ctx, store, userID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, uuid.Nil, list[0].ID)
}

func TestService_FailedWriteIsNotQueued(t *testing.T) {
	store := testutil.NewMemStore()
	store.FailNotifications = true
	pub := new(MockPublisher)
	svc := NewService(pub)
	ctx := context.Background()

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		res := svc.Record(ctx, tx, &batch, models.Notification{UserID: uuid.New(), BookingID: uuid.New(), Type: models.NotificationDisputeResolved})
		assert.ErrorIs(t, res.Err, testutil.ErrInjected)
		return nil
	}))

	svc.Dispatch(ctx, &batch)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PublishFailureIsSwallowed(t *testing.T) {
	store := testutil.NewMemStore()
	pub := new(MockPublisher)
	svc := NewService(pub)
	ctx := context.Background()

	pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		svc.Record(ctx, tx, &batch, models.Notification{UserID: uuid.New(), BookingID: uuid.New(), Type: models.NotificationBookingCancelled})
		return nil
	}))
	assert.NotPanics(t, func() { svc.Dispatch(ctx, &batch) })
	assert.Len(t, store.AllNotifications(), 1)
}

func TestService_RecordForAdmins(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(nil)
	ctx := context.Background()
	admins := []uuid.UUID{uuid.New(), uuid.New()}
	for _, id := range admins {
		require.NoError(t, store.Users().Create(ctx, &models.User{
			ID: id, Name: "Admin", Email: uuid.NewString() + "@example.com", Role: escrow.RoleAdmin,
		}))
	}
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: uuid.New(), Name: "Org", Email: "org@example.com", Role: escrow.RoleOrganizer}))

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		results := svc.RecordForAdmins(ctx, tx, &batch, models.Notification{
			BookingID: uuid.New(), Type: models.NotificationDisputeEscalated, Payload: models.JSON{"k": "v"},
		})
		assert.Len(t, results, 2)
		return nil
	}))

	got := store.AllNotifications()
	require.Len(t, got, 2)
	recipients := []uuid.UUID{got[0].UserID, got[1].UserID}
	assert.ElementsMatch(t, admins, recipients)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

type MockAdminCache struct {
	mock.Mock
}

func (m *MockAdminCache) AdminIDs(ctx context.Context) ([]uuid.UUID, bool, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Bool(1), args.Error(2)
}

func (m *MockAdminCache) CacheAdminIDs(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func TestService_RecordForAdmins_UsesCache(t *testing.T) {
	store := testutil.NewMemStore()
	ctx := context.Background()
	cached := []uuid.UUID{uuid.New()}
	admins := new(MockAdminCache)
	admins.On("AdminIDs", ctx).Return(cached, true, nil).Once()
	svc := NewService(nil).WithAdminCache(admins)

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		svc.RecordForAdmins(ctx, tx, &batch, models.Notification{BookingID: uuid.New(), Type: models.NotificationDisputeEscalated})
		return nil
	}))

	admins.AssertExpectations(t)
	got := store.AllNotifications()
	require.Len(t, got, 1)
	assert.Equal(t, cached[0], got[0].UserID)
}

func TestService_RecordForAdmins_FillsCacheOnMiss(t *testing.T) {
	store := testutil.NewMemStore()
	ctx := context.Background()
	adminID := uuid.New()
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: adminID, Name: "Admin", Email: "ops@example.com", Role: escrow.RoleAdmin}))

	admins := new(MockAdminCache)
	admins.On("AdminIDs", ctx).Return(nil, false, assert.AnError).Once()
	admins.On("CacheAdminIDs", ctx, []uuid.UUID{adminID}).Return(nil).Once()
	svc := NewService(nil).WithAdminCache(admins)

	var batch Batch
	require.NoError(t, store.Transaction(ctx, func(tx repositories.Tx) error {
		svc.RecordForAdmins(ctx, tx, &batch, models.Notification{BookingID: uuid.New(), Type: models.NotificationDisputeEscalated})
		return nil
	}))

	admins.AssertExpectations(t)
	require.Len(t, store.AllNotifications(), 1)
}
