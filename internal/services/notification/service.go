// Package notification records the facts users must be told about and hands
// them to the message broker once the surrounding transaction has committed.
package notification

import (
	"context"
	"log"

	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/services/effects"

	"github.com/google/uuid"
)

// Publisher delivers a message to the broker.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Batch collects the notifications written during one transaction.
type Batch struct {
	items []models.Notification
}

func (b *Batch) Len() int { return len(b.items) }

// AdminCache remembers the administrator fan-out list between requests.
type AdminCache interface {
	AdminIDs(ctx context.Context) ([]uuid.UUID, bool, error)
	CacheAdminIDs(ctx context.Context, ids []uuid.UUID) error
}

type Service struct {
	publisher Publisher
	admins    AdminCache
}

// NewService creates a notification service. publisher may be nil, in which
// case notifications are only stored.
func NewService(publisher Publisher) *Service {
	return &Service{publisher: publisher}
}

// WithAdminCache makes RecordForAdmins consult c before the users table.
func (s *Service) WithAdminCache(c AdminCache) *Service {
	s.admins = c
	return s
}

// Record stores n in a savepoint of tx and queues it on b for publishing.
// A failed write is logged and reported, never returned.
func (s *Service) Record(ctx context.Context, tx repositories.Tx, b *Batch, n models.Notification) effects.Result {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	res := effects.Run(tx, "notify "+string(n.Type), func(inner repositories.Tx) (uuid.UUID, error) {
		return n.ID, inner.Notifications().Create(ctx, &n)
	})
	if res.OK() {
		b.items = append(b.items, n)
	}
	return res
}

// RecordForAdmins fans tmpl out to every administrator.
func (s *Service) RecordForAdmins(ctx context.Context, tx repositories.Tx, b *Batch, tmpl models.Notification) []effects.Result {
	ids, err := s.adminIDs(ctx, tx)
	if err != nil {
		log.Printf("[notification] list admins for %s: %v", tmpl.Type, err)
		return []effects.Result{{Effect: "notify " + string(tmpl.Type), Err: err}}
	}
	if len(ids) == 0 {
		log.Printf("[notification] no administrators to notify of %s on booking %s", tmpl.Type, tmpl.BookingID)
	}
	out := make([]effects.Result, 0, len(ids))
	for _, id := range ids {
		n := tmpl
		n.ID = uuid.Nil
		n.UserID = id
		n.Payload = tmpl.Payload.Clone()
		out = append(out, s.Record(ctx, tx, b, n))
	}
	return out
}

func (s *Service) adminIDs(ctx context.Context, tx repositories.Tx) ([]uuid.UUID, error) {
	if s.admins != nil {
		ids, found, err := s.admins.AdminIDs(ctx)
		if err != nil {
			log.Printf("[notification] admin cache read: %v", err)
		} else if found {
			return ids, nil
		}
	}
	ids, err := tx.Users().ListAdminIDs(ctx)
	if err != nil {
		return nil, err
	}
	if s.admins != nil && len(ids) > 0 {
		if err := s.admins.CacheAdminIDs(ctx, ids); err != nil {
			log.Printf("[notification] admin cache write: %v", err)
		}
	}
	return ids, nil
}

// Dispatch publishes every notification in b. Call it only after the
// transaction that recorded them has committed.
func (s *Service) Dispatch(ctx context.Context, b *Batch) {
	if s.publisher == nil || b == nil {
		return
	}
	for _, n := range b.items {
		if err := s.publisher.PublishJSON(ctx, RoutingKey(n.Type), n); err != nil {
			log.Printf("[notification] publish %s to user %s: %v", n.Type, n.UserID, err)
		}
	}
	b.items = nil
}

// ListForUser returns the most recent notifications of a user.
func (s *Service) ListForUser(ctx context.Context, store repositories.Repos, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return store.Notifications().ListByUser(ctx, userID, limit)
}

func RoutingKey(t models.NotificationType) string {
	return "notification." + string(t)
}
