package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"stagepay/internal/domain/escrow"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/repositories/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Parties is one organizer, one artist and one administrator.
type Parties struct {
	Organizer models.User
	Artist    models.User
	Admin     models.User
}

func (p Parties) OrganizerActor() escrow.Actor {
	return escrow.Actor{ID: p.Organizer.ID, Role: escrow.RoleOrganizer}
}

func (p Parties) ArtistActor() escrow.Actor {
	return escrow.Actor{ID: p.Artist.ID, Role: escrow.RoleArtist}
}

func (p Parties) AdminActor() escrow.Actor {
	return escrow.Actor{ID: p.Admin.ID, Role: escrow.RoleAdmin}
}

func SeedParties(t testing.TB, store repositories.Store) Parties {
	t.Helper()
	ctx := context.Background()
	p := Parties{
		Organizer: models.User{ID: uuid.New(), Name: "Dana Organizer", Role: escrow.RoleOrganizer},
		Artist:    models.User{ID: uuid.New(), Name: "Kai Artist", Role: escrow.RoleArtist},
		Admin:     models.User{ID: uuid.New(), Name: "Ops Admin", Role: escrow.RoleAdmin},
	}
	for _, u := range []*models.User{&p.Organizer, &p.Artist, &p.Admin} {
		u.Email = u.ID.String() + "@stagepay.test"
		require.NoError(t, store.Users().Create(ctx, u))
	}
	return p
}

// SeedBooking stores a booking between the parties in the given state.
func SeedBooking(t testing.TB, store repositories.Store, p Parties, state escrow.BookingState, eventDate time.Time, total float64) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID:            uuid.New(),
		OrganizerID:   p.Organizer.ID,
		ArtistID:      p.Artist.ID,
		EventDate:     eventDate,
		TotalAmount:   total,
		Currency:      "USD",
		Status:        state.Status,
		PaymentStatus: state.Payment,
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))
	return b
}

// Escrowed is a confirmed booking whose payment is held.
var Escrowed = escrow.BookingState{Status: escrow.StatusConfirmed, Payment: escrow.PaymentPaid}

// RecordingPublisher keeps every published message.
type RecordingPublisher struct {
	mu   sync.Mutex
	Keys []string
	Fail error
}

func (p *RecordingPublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return p.Fail
	}
	p.Keys = append(p.Keys, key)
	return nil
}

func (p *RecordingPublisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Keys...)
}

// MemLocker is a process-local stand-in for the Redis locker.
type MemLocker struct {
	mu   sync.Mutex
	held map[string]bool
	Err  error
}

func NewMemLocker() *MemLocker {
	return &MemLocker{held: map[string]bool{}}
}

func (l *MemLocker) TryAcquire(_ context.Context, key string, _ time.Duration) (cache.Releaser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	if l.held[key] {
		return nil, cache.ErrLockHeld
	}
	l.held[key] = true
	return memLock{l: l, key: key}, nil
}

func (l *MemLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type memLock struct {
	l   *MemLocker
	key string
}

func (m memLock) Release(context.Context) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	delete(m.l.held, m.key)
	return nil
}

// AssertInvariants checks the payment invariants of every booking and that no
// booking has more than one active dispute.
func AssertInvariants(t testing.TB, s *MemStore) {
	t.Helper()
	for _, b := range s.AllBookings() {
		require.Truef(t, b.State().Consistent(), "booking %s in inconsistent state %s", b.ID, b.State())
	}
	active := map[uuid.UUID]int{}
	for _, d := range s.AllDisputes() {
		if d.Status.Active() {
			active[d.BookingID]++
		}
	}
	for bookingID, n := range active {
		require.LessOrEqualf(t, n, 1, "booking %s has %d active disputes", bookingID, n)
	}
}
