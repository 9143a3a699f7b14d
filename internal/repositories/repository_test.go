package repositories

import (
	"context"
	"testing"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewStore(db), mock
}

var (
	confirmedPaid = escrow.BookingState{Status: escrow.StatusConfirmed, Payment: escrow.PaymentPaid}
	notDelivered  = escrow.BookingState{Status: escrow.StatusNotDelivered, Payment: escrow.PaymentPaid}
)

func TestBookingUpdateState_StaleStateIsInvalidTransition(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "bookings" SET .* WHERE id = \$\d+ AND status = \$\d+ AND payment_status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Bookings().UpdateState(context.Background(), id, confirmedPaid, notDelivered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateState_Applies(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Bookings().UpdateState(context.Background(), uuid.New(), confirmedPaid, notDelivered)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingFindByID_MissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	b, err := store.Bookings().FindByID(context.Background(), uuid.New())
	assert.Nil(t, b)
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestBookingFindByIDForUpdate_LocksRow(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "organizer_id", "artist_id", "total_amount", "currency", "status", "payment_status"}).
		AddRow(id.String(), uuid.NewString(), uuid.NewString(), 1500.0, "USD", "confirmed", "paid")
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE id = \$1 .*FOR UPDATE`).WillReturnRows(rows)

	b, err := store.Bookings().FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, confirmedPaid, b.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeCreate_UniqueViolationIsDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "disputes"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_disputes_one_active_per_booking"})

	err := store.Disputes().Create(context.Background(), &models.Dispute{
		ID:            uuid.New(),
		BookingID:     uuid.New(),
		Type:          escrow.DisputeNonDelivery,
		Status:        escrow.DisputeOpen,
		AdminDecision: escrow.DecisionPending,
		AutoResolveAt: time.Now().Add(48 * time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateDispute)
	assert.Equal(t, apperrors.KindDuplicateDispute, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeHasActive(t *testing.T) {
	store, mock := newMockStore(t)
	bookingID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "disputes" WHERE booking_id = \$1 AND status IN \(\$2,\$3\)`).
		WithArgs(bookingID, escrow.DisputeOpen, escrow.DisputeAdminInvestigating).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, err := store.Disputes().HasActive(context.Background(), bookingID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeUpdate_LostRaceIsStateChanged(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "disputes" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	d := &models.Dispute{ID: uuid.New(), Status: escrow.DisputeResolved, AdminDecision: escrow.DecisionFavorOrganizer}
	err := store.Disputes().Update(context.Background(), d, escrow.DisputeOpen)
	assert.ErrorIs(t, err, apperrors.ErrDisputeStateChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeListDueForAutoResolve(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "disputes" WHERE status = \$1 AND auto_resolve_at <= \$2 ORDER BY auto_resolve_at ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "auto_resolve_at"}).
			AddRow(id.String(), "open", now.Add(-time.Hour)))

	due, err := store.Disputes().ListDueForAutoResolve(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, id, due[0].ID)
	assert.Equal(t, escrow.DisputeOpen, due[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledTaskMarkDone(t *testing.T) {
	store, mock := newMockStore(t)
	disputeID := uuid.New()

	mock.ExpectExec(`UPDATE "scheduled_tasks" SET "status"=\$1,"updated_at"=\$2 WHERE dispute_id = \$3 AND status = \$4`).
		WithArgs(models.TaskStatusDone, sqlmock.AnyArg(), disputeID, models.TaskStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.Tasks().MarkDone(context.Background(), disputeID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListAdminIDs(t *testing.T) {
	store, mock := newMockStore(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT "id" FROM "users" WHERE role = \$1`).
		WithArgs(escrow.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	ids, err := store.Users().ListAdminIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = store.Transaction(context.Background(), func(tx Tx) error {
		return tx.Bookings().UpdateState(context.Background(), uuid.New(), confirmedPaid, notDelivered)
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNested_FailureRollsBackToSavepoint(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "notifications"`).WillReturnError(assert.AnError)
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var nestedErr error
	err = store.Transaction(context.Background(), func(tx Tx) error {
		nestedErr = tx.Nested(func(inner Tx) error {
			return inner.Notifications().Create(context.Background(), &models.Notification{
				ID: uuid.New(), UserID: uuid.New(), BookingID: uuid.New(), Type: models.NotificationDisputeReported,
			})
		})
		return nil
	})
	assert.NoError(t, err)
	assert.ErrorIs(t, nestedErr, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
