package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Bookings() BookingRepository
	Disputes() DisputeRepository
	Cancellations() CancellationRepository
	Notifications() NotificationRepository
	Tasks() ScheduledTaskRepository
	Users() UserRepository
}

// Tx is a unit of work in progress.
type Tx interface {
	Repos

	// Nested runs fn inside a savepoint. When fn fails only its own writes
	// are rolled back and the surrounding transaction stays usable.
	Nested(fn func(Tx) error) error
}

// Store is the entry point to persistence. Every multi-step state change
// runs inside Transaction so that it either commits as a whole or not at all.
type Store interface {
	Repos
	Transaction(ctx context.Context, fn func(Tx) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Bookings() BookingRepository           { return &bookingRepository{db: s.db} }
func (s *gormStore) Disputes() DisputeRepository           { return &disputeRepository{db: s.db} }
func (s *gormStore) Cancellations() CancellationRepository { return &cancellationRepository{db: s.db} }
func (s *gormStore) Notifications() NotificationRepository { return &notificationRepository{db: s.db} }
func (s *gormStore) Tasks() ScheduledTaskRepository        { return &scheduledTaskRepository{db: s.db} }
func (s *gormStore) Users() UserRepository                 { return &userRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// Nested relies on gorm issuing SAVEPOINT/ROLLBACK TO when Transaction is
// called on a *gorm.DB that is already inside a transaction.
func (s *gormStore) Nested(fn func(Tx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
