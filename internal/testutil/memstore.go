// Package testutil provides an in-memory repositories.Store and fixtures for
// service, scheduler and handler tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/repositories"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrInjected is returned by writes the test asked to fail.
var ErrInjected = errors.New("injected failure")

// MemStore serializes transactions behind one mutex and rolls back by
// discarding a working copy, which is enough to reproduce the commit/rollback
// and savepoint behaviour the services rely on.
type MemStore struct {
	mu   sync.Mutex
	data *memData

	// FailNotifications and FailTasks make the matching Create calls fail.
	FailNotifications bool
	FailTasks         bool
}

type memData struct {
	bookings      map[uuid.UUID]models.Booking
	disputes      map[uuid.UUID]models.Dispute
	cancellations map[uuid.UUID]models.CancellationRequest
	notifications []models.Notification
	tasks         map[uuid.UUID]models.ScheduledTask
	users         map[uuid.UUID]models.User
}

func NewMemStore() *MemStore {
	return &MemStore{data: &memData{
		bookings:      map[uuid.UUID]models.Booking{},
		disputes:      map[uuid.UUID]models.Dispute{},
		cancellations: map[uuid.UUID]models.CancellationRequest{},
		tasks:         map[uuid.UUID]models.ScheduledTask{},
		users:         map[uuid.UUID]models.User{},
	}}
}

func (d *memData) clone() *memData {
	out := &memData{
		bookings:      make(map[uuid.UUID]models.Booking, len(d.bookings)),
		disputes:      make(map[uuid.UUID]models.Dispute, len(d.disputes)),
		cancellations: make(map[uuid.UUID]models.CancellationRequest, len(d.cancellations)),
		notifications: append([]models.Notification(nil), d.notifications...),
		tasks:         make(map[uuid.UUID]models.ScheduledTask, len(d.tasks)),
		users:         make(map[uuid.UUID]models.User, len(d.users)),
	}
	for k, v := range d.bookings {
		out.bookings[k] = v
	}
	for k, v := range d.disputes {
		out.disputes[k] = copyDispute(v)
	}
	for k, v := range d.cancellations {
		out.cancellations[k] = v
	}
	for k, v := range d.tasks {
		out.tasks[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	return out
}

func copyDispute(d models.Dispute) models.Dispute {
	d.Evidence = append(pq.StringArray(nil), d.Evidence...)
	d.ArtistEvidence = append(pq.StringArray(nil), d.ArtistEvidence...)
	d.Booking = nil
	return d
}

// Transaction runs fn against a private copy that replaces the committed data
// only when fn succeeds.
func (s *MemStore) Transaction(ctx context.Context, fn func(repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&memTx{s: s, d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *MemStore) view() memRepos { return memRepos{s: s} }

func (s *MemStore) Bookings() repositories.BookingRepository { return bookingRepo{s.view()} }
func (s *MemStore) Disputes() repositories.DisputeRepository { return disputeRepo{s.view()} }
func (s *MemStore) Cancellations() repositories.CancellationRepository {
	return cancellationRepo{s.view()}
}
func (s *MemStore) Notifications() repositories.NotificationRepository {
	return notificationRepo{s.view()}
}
func (s *MemStore) Tasks() repositories.ScheduledTaskRepository { return taskRepo{s.view()} }
func (s *MemStore) Users() repositories.UserRepository          { return userRepo{s.view()} }

type memTx struct {
	s *MemStore
	d *memData
}

func (t *memTx) view() memRepos { return memRepos{s: t.s, d: t.d} }

func (t *memTx) Bookings() repositories.BookingRepository { return bookingRepo{t.view()} }
func (t *memTx) Disputes() repositories.DisputeRepository { return disputeRepo{t.view()} }
func (t *memTx) Cancellations() repositories.CancellationRepository {
	return cancellationRepo{t.view()}
}
func (t *memTx) Notifications() repositories.NotificationRepository {
	return notificationRepo{t.view()}
}
func (t *memTx) Tasks() repositories.ScheduledTaskRepository { return taskRepo{t.view()} }
func (t *memTx) Users() repositories.UserRepository          { return userRepo{t.view()} }

func (t *memTx) Nested(fn func(repositories.Tx) error) error {
	sp := t.d.clone()
	if err := fn(&memTx{s: t.s, d: sp}); err != nil {
		return err
	}
	*t.d = *sp
	return nil
}

// memRepos reads and writes d when bound to a transaction, otherwise the
// committed data under the store mutex.
type memRepos struct {
	s *MemStore
	d *memData
}

func (r memRepos) with(fn func(d *memData) error) error {
	if r.d != nil {
		return fn(r.d)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.data)
}

type bookingRepo struct{ memRepos }

func (r bookingRepo) Create(_ context.Context, b *models.Booking) error {
	return r.with(func(d *memData) error {
		if _, ok := d.bookings[b.ID]; ok {
			return errors.New("booking already exists")
		}
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now
		d.bookings[b.ID] = *b
		return nil
	})
}

func (r bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	var out *models.Booking
	err := r.with(func(d *memData) error {
		b, ok := d.bookings[id]
		if !ok {
			return apperrors.ErrBookingNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r bookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r bookingRepo) UpdateState(_ context.Context, id uuid.UUID, from, to escrow.BookingState) error {
	return r.with(func(d *memData) error {
		b, ok := d.bookings[id]
		if !ok || b.State() != from {
			return apperrors.ErrInvalidStateTransition.Withf("booking %s is no longer %s", id, from)
		}
		b.SetState(to)
		b.UpdatedAt = time.Now()
		d.bookings[id] = b
		return nil
	})
}

type disputeRepo struct{ memRepos }

func (r disputeRepo) Create(_ context.Context, in *models.Dispute) error {
	return r.with(func(d *memData) error {
		if in.Status.Active() {
			for _, x := range d.disputes {
				if x.BookingID == in.BookingID && x.Status.Active() {
					return apperrors.ErrDuplicateDispute
				}
			}
		}
		now := time.Now()
		in.CreatedAt, in.UpdatedAt = now, now
		d.disputes[in.ID] = copyDispute(*in)
		return nil
	})
}

func (r disputeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Dispute, error) {
	var out *models.Dispute
	err := r.with(func(d *memData) error {
		x, ok := d.disputes[id]
		if !ok {
			return apperrors.ErrDisputeNotFound
		}
		x = copyDispute(x)
		out = &x
		return nil
	})
	return out, err
}

func (r disputeRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return r.FindByID(ctx, id)
}

func (r disputeRepo) HasActive(_ context.Context, bookingID uuid.UUID) (bool, error) {
	var active bool
	err := r.with(func(d *memData) error {
		for _, x := range d.disputes {
			if x.BookingID == bookingID && x.Status.Active() {
				active = true
			}
		}
		return nil
	})
	return active, err
}

func (r disputeRepo) Update(_ context.Context, in *models.Dispute, from escrow.DisputeStatus) error {
	return r.with(func(d *memData) error {
		x, ok := d.disputes[in.ID]
		if !ok || x.Status != from {
			return apperrors.ErrDisputeStateChanged.Withf("dispute %s is no longer %s", in.ID, from)
		}
		x.Status = in.Status
		x.ArtistResponse = in.ArtistResponse
		x.ArtistEvidence = append(pq.StringArray(nil), in.ArtistEvidence...)
		x.AdminDecision = in.AdminDecision
		x.AdminNotes = in.AdminNotes
		x.RefundAmount = in.RefundAmount
		x.AutoResolved = in.AutoResolved
		x.ResolvedBy = in.ResolvedBy
		x.ResolvedAt = in.ResolvedAt
		x.UpdatedAt = time.Now()
		d.disputes[in.ID] = x
		return nil
	})
}

func (r disputeRepo) ListDueForAutoResolve(_ context.Context, now time.Time, limit int) ([]models.Dispute, error) {
	var out []models.Dispute
	err := r.with(func(d *memData) error {
		for _, x := range d.disputes {
			if x.Status == escrow.DisputeOpen && !x.AutoResolveAt.After(now) {
				out = append(out, copyDispute(x))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AutoResolveAt.Before(out[j].AutoResolveAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r disputeRepo) ListSummaries(_ context.Context, status escrow.DisputeStatus) ([]models.DisputeSummary, error) {
	var out []models.DisputeSummary
	err := r.with(func(d *memData) error {
		for _, x := range d.disputes {
			if status != "" && x.Status != status {
				continue
			}
			b := d.bookings[x.BookingID]
			o, a := d.users[b.OrganizerID], d.users[b.ArtistID]
			out = append(out, models.DisputeSummary{
				DisputeID:      x.ID,
				BookingID:      x.BookingID,
				Type:           x.Type,
				Status:         x.Status,
				Reason:         x.Reason,
				AdminDecision:  x.AdminDecision,
				RefundAmount:   x.RefundAmount,
				AutoResolveAt:  x.AutoResolveAt,
				CreatedAt:      x.CreatedAt,
				EventDate:      b.EventDate,
				TotalAmount:    b.TotalAmount,
				Currency:       b.Currency,
				BookingStatus:  b.Status,
				PaymentStatus:  b.PaymentStatus,
				OrganizerID:    b.OrganizerID,
				OrganizerName:  o.Name,
				OrganizerEmail: o.Email,
				ArtistID:       b.ArtistID,
				ArtistName:     a.Name,
				ArtistEmail:    a.Email,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

type cancellationRepo struct{ memRepos }

func (r cancellationRepo) Create(_ context.Context, c *models.CancellationRequest) error {
	return r.with(func(d *memData) error {
		now := time.Now()
		c.CreatedAt, c.UpdatedAt = now, now
		d.cancellations[c.ID] = *c
		return nil
	})
}

func (r cancellationRepo) FindByID(_ context.Context, id uuid.UUID) (*models.CancellationRequest, error) {
	var out *models.CancellationRequest
	err := r.with(func(d *memData) error {
		c, ok := d.cancellations[id]
		if !ok {
			return apperrors.ErrCancellationNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r cancellationRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]models.CancellationRequest, error) {
	var out []models.CancellationRequest
	err := r.with(func(d *memData) error {
		for _, c := range d.cancellations {
			if c.BookingID == bookingID {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

type notificationRepo struct{ memRepos }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	return r.with(func(d *memData) error {
		if r.s.FailNotifications {
			return ErrInjected
		}
		n.CreatedAt = time.Now()
		cp := *n
		cp.Payload = n.Payload.Clone()
		d.notifications = append(d.notifications, cp)
		return nil
	})
}

func (r notificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := r.with(func(d *memData) error {
		for i := len(d.notifications) - 1; i >= 0; i-- {
			if d.notifications[i].UserID == userID {
				out = append(out, d.notifications[i])
			}
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

type taskRepo struct{ memRepos }

func (r taskRepo) Create(_ context.Context, t *models.ScheduledTask) error {
	return r.with(func(d *memData) error {
		if r.s.FailTasks {
			return ErrInjected
		}
		now := time.Now()
		t.CreatedAt, t.UpdatedAt = now, now
		d.tasks[t.ID] = *t
		return nil
	})
}

func (r taskRepo) MarkDone(_ context.Context, disputeID uuid.UUID) error {
	return r.with(func(d *memData) error {
		for id, t := range d.tasks {
			if t.DisputeID == disputeID && t.Status == models.TaskStatusPending {
				t.Status = models.TaskStatusDone
				t.UpdatedAt = time.Now()
				d.tasks[id] = t
			}
		}
		return nil
	})
}

func (r taskRepo) ListPending(_ context.Context) ([]models.ScheduledTask, error) {
	var out []models.ScheduledTask
	err := r.with(func(d *memData) error {
		for _, t := range d.tasks {
			if t.Status == models.TaskStatusPending {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RunsAt.Before(out[j].RunsAt) })
	return out, err
}

type userRepo struct{ memRepos }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	return r.with(func(d *memData) error {
		for _, x := range d.users {
			if x.Email == u.Email {
				return errors.New("email already taken")
			}
		}
		now := time.Now()
		u.CreatedAt, u.UpdatedAt = now, now
		d.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	err := r.with(func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.with(func(d *memData) error {
		for _, u := range d.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return out, err
}

func (r userRepo) ListAdminIDs(_ context.Context) ([]uuid.UUID, error) {
	var admins []models.User
	err := r.with(func(d *memData) error {
		for _, u := range d.users {
			if u.Role == escrow.RoleAdmin {
				admins = append(admins, u)
			}
		}
		return nil
	})
	sort.Slice(admins, func(i, j int) bool { return admins[i].CreatedAt.Before(admins[j].CreatedAt) })
	ids := make([]uuid.UUID, 0, len(admins))
	for _, u := range admins {
		ids = append(ids, u.ID)
	}
	return ids, err
}

// Snapshot accessors for assertions.

func (s *MemStore) AllDisputes() []models.Dispute {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Dispute, 0, len(s.data.disputes))
	for _, d := range s.data.disputes {
		out = append(out, copyDispute(d))
	}
	return out
}

func (s *MemStore) AllBookings() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0, len(s.data.bookings))
	for _, b := range s.data.bookings {
		out = append(out, b)
	}
	return out
}

func (s *MemStore) AllNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.data.notifications...)
}

func (s *MemStore) AllTasks() []models.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScheduledTask, 0, len(s.data.tasks))
	for _, t := range s.data.tasks {
		out = append(out, t)
	}
	return out
}

var (
	_ repositories.Store = (*MemStore)(nil)
	_ repositories.Tx    = (*memTx)(nil)
)
