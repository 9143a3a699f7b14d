// Package dispute runs the non-delivery protocol: an organizer reports, the
// artist approves or contests, an administrator adjudicates contested cases
// and the auto-resolution sweep closes reports nobody answered.
package dispute

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/services/effects"
	"stagepay/internal/services/notification"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
)

type Service struct {
	store    repositories.Store
	notifier *notification.Service
	clock    clockwork.Clock
	window   time.Duration
}

// NewService creates a dispute service. window is how long an artist has to
// answer a report before it is auto-resolved.
func NewService(store repositories.Store, notifier *notification.Service, clock clockwork.Clock, window time.Duration) *Service {
	return &Service{store: store, notifier: notifier, clock: clock, window: window}
}

type ReportInput struct {
	BookingID  uuid.UUID
	ReporterID uuid.UUID
	Reason     string
	Evidence   []string
}

// ReportResult carries the new dispute and the outcome of scheduling its
// auto-resolution, which is allowed to fail.
type ReportResult struct {
	Dispute   *models.Dispute
	Scheduled effects.Result
}

// ReportNonDelivery opens a dispute on an escrowed booking and moves the
// booking to not_delivered.
func (s *Service) ReportNonDelivery(ctx context.Context, in ReportInput) (*ReportResult, error) {
	reason := strings.TrimSpace(in.Reason)
	var (
		res   ReportResult
		batch notification.Batch
	)
	err := s.store.Transaction(ctx, func(tx repositories.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return err
		}
		if b.OrganizerID != in.ReporterID {
			return apperrors.ErrNotBookingOrganizer
		}
		if reason == "" {
			return apperrors.ErrReasonRequired
		}
		active, err := tx.Disputes().HasActive(ctx, b.ID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.ErrDuplicateDispute
		}
		next, err := escrow.Transition(b.State(), escrow.EventReportNonDelivery)
		if err != nil {
			return err
		}

		d := &models.Dispute{
			ID:            uuid.New(),
			BookingID:     b.ID,
			Type:          escrow.DisputeNonDelivery,
			ReporterID:    in.ReporterID,
			ReporterRole:  escrow.RoleOrganizer,
			Reason:        reason,
			Evidence:      cleanEvidence(in.Evidence),
			Status:        escrow.DisputeOpen,
			AdminDecision: escrow.DecisionPending,
			AutoResolveAt: s.clock.Now().Add(s.window),
		}
		if err := tx.Disputes().Create(ctx, d); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
			return err
		}

		s.notifier.Record(ctx, tx, &batch, models.Notification{
			UserID:    b.ArtistID,
			BookingID: b.ID,
			DisputeID: &d.ID,
			Type:      models.NotificationDisputeReported,
			Title:     "Non-delivery reported",
			Message: fmt.Sprintf("The organizer reported that the performance on %s was not delivered. Respond before %s or the booking is refunded.",
				b.EventDate.Format("2006-01-02"), d.AutoResolveAt.UTC().Format(time.RFC1123)),
			Payload: models.JSON{"reason": reason, "auto_resolve_date": d.AutoResolveAt.UTC().Format(time.RFC3339)},
		})
		res.Scheduled = effects.Run(tx, "schedule auto-resolve", func(inner repositories.Tx) (uuid.UUID, error) {
			task := &models.ScheduledTask{
				ID:        uuid.New(),
				Name:      "auto-resolve dispute " + d.ID.String(),
				TaskType:  models.TaskTypeDisputeAutoResolve,
				DisputeID: d.ID,
				RunsAt:    d.AutoResolveAt,
				Status:    models.TaskStatusPending,
				Payload:   models.JSON{"booking_id": b.ID.String()},
			}
			return task.ID, inner.Tasks().Create(ctx, task)
		})
		res.Dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, &batch)
	log.Printf("[dispute] %s opened on booking %s, auto-resolve at %s", res.Dispute.ID, res.Dispute.BookingID, res.Dispute.AutoResolveAt.Format(time.RFC3339))
	return &res, nil
}

type RespondInput struct {
	DisputeID uuid.UUID
	ArtistID  uuid.UUID
	Action    string
	Response  string
	Evidence  []string
}

// RespondToDispute applies the artist's single answer to an open dispute.
// Approving refunds the organizer; contesting hands the case to the
// administrators.
func (s *Service) RespondToDispute(ctx context.Context, in RespondInput) (*models.Dispute, error) {
	action, err := escrow.ParseResponseAction(in.Action)
	if err != nil {
		return nil, err
	}
	evidence := cleanEvidence(in.Evidence)
	if action == escrow.ActionDispute && len(evidence) == 0 {
		return nil, apperrors.ErrEvidenceRequired
	}

	var (
		out   *models.Dispute
		batch notification.Batch
	)
	err = s.store.Transaction(ctx, func(tx repositories.Tx) error {
		d, b, err := lockDispute(ctx, tx, in.DisputeID)
		if err != nil {
			return err
		}
		if b.ArtistID != in.ArtistID || d.Status != escrow.DisputeOpen {
			return apperrors.ErrDisputeNotFound.Withf("no open dispute %s for this artist", in.DisputeID)
		}
		d.ArtistResponse = strings.TrimSpace(in.Response)
		d.ArtistEvidence = evidence

		if action == escrow.ActionApprove {
			by := in.ArtistID
			if err := s.resolveForOrganizer(ctx, tx, &batch, d, b, escrow.DisputeArtistApproved, &by); err != nil {
				return err
			}
			out = d
			return nil
		}

		if err := s.escalate(ctx, tx, &batch, d, b); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, &batch)
	log.Printf("[dispute] %s answered by artist (%s), now %s", out.ID, action, out.Status)
	return out, nil
}

func (s *Service) escalate(ctx context.Context, tx repositories.Tx, batch *notification.Batch, d *models.Dispute, b *models.Booking) error {
	next, err := escrow.Transition(b.State(), escrow.EventEscalateDispute)
	if err != nil {
		return err
	}
	from := d.Status
	if d.Status, err = escrow.NextDisputeStatus(from, escrow.DisputeArtistContests); err != nil {
		return err
	}
	if err := tx.Disputes().Update(ctx, d, from); err != nil {
		return err
	}
	if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
		return err
	}
	b.SetState(next)

	s.notifier.RecordForAdmins(ctx, tx, batch, models.Notification{
		BookingID: b.ID,
		DisputeID: &d.ID,
		Type:      models.NotificationDisputeEscalated,
		Title:     "Dispute needs a decision",
		Message:   fmt.Sprintf("The artist contested the non-delivery report on booking %s.", b.ID),
		Payload:   models.JSON{"evidence_count": len(d.ArtistEvidence)},
	})
	closeTask(ctx, tx, d.ID)
	return nil
}

// resolveForOrganizer closes an open dispute in the organizer's favour with a
// full refund. It backs both the artist's approval and the auto-resolution.
func (s *Service) resolveForOrganizer(ctx context.Context, tx repositories.Tx, batch *notification.Batch, d *models.Dispute, b *models.Booking, ev escrow.DisputeEvent, by *uuid.UUID) error {
	next, err := escrow.Transition(b.State(), escrow.EventResolvedFavorOrganizer)
	if err != nil {
		return err
	}
	from := d.Status
	if d.Status, err = escrow.NextDisputeStatus(from, ev); err != nil {
		return err
	}
	now := s.clock.Now()
	d.AdminDecision = escrow.DecisionFavorOrganizer
	d.RefundAmount = b.TotalAmount
	d.AutoResolved = ev == escrow.DisputeAutoResolved
	d.ResolvedBy = by
	d.ResolvedAt = &now
	if err := tx.Disputes().Update(ctx, d, from); err != nil {
		return err
	}
	if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
		return err
	}
	b.SetState(next)

	typ, title := models.NotificationDisputeAcknowledged, "Artist acknowledged non-delivery"
	if d.AutoResolved {
		typ, title = models.NotificationDisputeAutoResolved, "Dispute resolved automatically"
	}
	payload := models.JSON{"refund_amount": d.RefundAmount, "currency": b.Currency}
	s.notifier.Record(ctx, tx, batch, models.Notification{
		UserID: b.OrganizerID, BookingID: b.ID, DisputeID: &d.ID, Type: typ, Title: title,
		Message: fmt.Sprintf("Your booking was refunded: %.2f %s.", d.RefundAmount, b.Currency),
		Payload: payload,
	})
	if d.AutoResolved {
		s.notifier.Record(ctx, tx, batch, models.Notification{
			UserID: b.ArtistID, BookingID: b.ID, DisputeID: &d.ID, Type: typ, Title: title,
			Message: "No response was received before the deadline; the booking was refunded to the organizer.",
			Payload: payload.Clone(),
		})
	}
	closeTask(ctx, tx, d.ID)
	return nil
}

type AdminResolveInput struct {
	DisputeID    uuid.UUID
	AdminID      uuid.UUID
	Decision     string
	Notes        string
	RefundAmount float64
}

// AdminResolveDispute applies an administrator's final decision to a
// contested dispute.
func (s *Service) AdminResolveDispute(ctx context.Context, in AdminResolveInput) (*models.Dispute, error) {
	decision, err := escrow.ParseDecision(in.Decision)
	if err != nil {
		return nil, err
	}
	ev, err := decision.BookingEvent()
	if err != nil {
		return nil, err
	}

	var (
		out   *models.Dispute
		batch notification.Batch
	)
	err = s.store.Transaction(ctx, func(tx repositories.Tx) error {
		d, b, err := lockDispute(ctx, tx, in.DisputeID)
		if err != nil {
			return err
		}
		if d.Status != escrow.DisputeAdminInvestigating {
			return apperrors.ErrDisputeNotFound.Withf("dispute %s is not awaiting an administrator decision", d.ID)
		}
		refund, err := RefundFor(decision, in.RefundAmount, b.TotalAmount)
		if err != nil {
			return err
		}
		next, err := escrow.Transition(b.State(), ev)
		if err != nil {
			return err
		}
		from := d.Status
		if d.Status, err = escrow.NextDisputeStatus(from, escrow.DisputeAdminResolved); err != nil {
			return err
		}
		now := s.clock.Now()
		admin := in.AdminID
		d.AdminDecision = decision
		d.AdminNotes = strings.TrimSpace(in.Notes)
		d.RefundAmount = refund
		d.ResolvedBy = &admin
		d.ResolvedAt = &now
		if err := tx.Disputes().Update(ctx, d, from); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateState(ctx, b.ID, b.State(), next); err != nil {
			return err
		}
		b.SetState(next)

		for _, party := range []uuid.UUID{b.OrganizerID, b.ArtistID} {
			s.notifier.Record(ctx, tx, &batch, models.Notification{
				UserID: party, BookingID: b.ID, DisputeID: &d.ID,
				Type:    models.NotificationDisputeResolved,
				Title:   "Dispute resolved",
				Message: fmt.Sprintf("An administrator decided %s; refund %.2f %s.", decision, refund, b.Currency),
				Payload: models.JSON{"decision": string(decision), "refund_amount": refund, "payment_status": string(next.Payment)},
			})
		}
		closeTask(ctx, tx, d.ID)
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, &batch)
	log.Printf("[dispute] %s resolved by admin %s: %s", out.ID, in.AdminID, decision)
	return out, nil
}

// RefundFor validates the administrator's refund amount against the decision.
// favor_artist never refunds, favor_organizer refunds the full total (0 means
// "use the total") and partial_refund needs an amount strictly between 0 and
// the total.
func RefundFor(decision escrow.Decision, amount, total float64) (float64, error) {
	if amount < 0 {
		return 0, apperrors.ErrInvalidRefundAmount.Withf("refund amount %.2f is negative", amount)
	}
	switch decision {
	case escrow.DecisionFavorArtist:
		return 0, nil
	case escrow.DecisionFavorOrganizer:
		if amount != 0 && amount != total {
			return 0, apperrors.ErrInvalidRefundAmount.Withf("favor_organizer refunds the full %.2f", total)
		}
		return total, nil
	case escrow.DecisionPartialRefund:
		if amount <= 0 || amount >= total {
			return 0, apperrors.ErrInvalidRefundAmount.Withf("partial refund must be between 0 and %.2f", total)
		}
		return amount, nil
	}
	return 0, apperrors.ErrInvalidDecision
}

// AutoResolve applies the default outcome to one dispute if it is still open
// and past its deadline. It reports whether it resolved anything; a dispute
// that moved on in the meantime is skipped, not an error.
func (s *Service) AutoResolve(ctx context.Context, disputeID uuid.UUID) (bool, error) {
	var (
		resolved bool
		batch    notification.Batch
	)
	err := s.store.Transaction(ctx, func(tx repositories.Tx) error {
		d, b, err := lockDispute(ctx, tx, disputeID)
		if err != nil {
			return err
		}
		if d.Status != escrow.DisputeOpen || d.AutoResolveAt.After(s.clock.Now()) {
			return nil
		}
		if err := s.resolveForOrganizer(ctx, tx, &batch, d, b, escrow.DisputeAutoResolved, nil); err != nil {
			return err
		}
		resolved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	s.notifier.Dispatch(ctx, &batch)
	if resolved {
		log.Printf("[dispute] %s auto-resolved in favour of the organizer", disputeID)
	}
	return resolved, nil
}

// ListDisputes returns every dispute with its booking and parties, newest
// first, optionally narrowed to one status.
func (s *Service) ListDisputes(ctx context.Context, status string) ([]models.DisputeSummary, error) {
	st := escrow.DisputeStatus(strings.ToLower(strings.TrimSpace(status)))
	switch st {
	case "", escrow.DisputeOpen, escrow.DisputeAdminInvestigating, escrow.DisputeResolved:
	default:
		return nil, apperrors.ErrInvalidStatusFilter
	}
	return s.store.Disputes().ListSummaries(ctx, st)
}

// GetDispute returns a dispute to one of its booking's parties or an admin.
func (s *Service) GetDispute(ctx context.Context, id uuid.UUID, caller escrow.Actor) (*models.Dispute, error) {
	d, err := s.store.Disputes().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return d, nil
	}
	b, err := s.store.Bookings().FindByID(ctx, d.BookingID)
	if err != nil {
		return nil, err
	}
	if _, ok := b.RoleOf(caller.ID); !ok {
		return nil, apperrors.ErrDisputeNotFound
	}
	return d, nil
}

// lockDispute locks the booking before the dispute, the same order the report
// path uses, so concurrent calls on one booking never deadlock.
func lockDispute(ctx context.Context, tx repositories.Tx, id uuid.UUID) (*models.Dispute, *models.Booking, error) {
	peek, err := tx.Disputes().FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.Bookings().FindByIDForUpdate(ctx, peek.BookingID)
	if err != nil {
		return nil, nil, err
	}
	d, err := tx.Disputes().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return d, b, nil
}

func closeTask(ctx context.Context, tx repositories.Tx, disputeID uuid.UUID) {
	effects.Run(tx, "close auto-resolve task", func(inner repositories.Tx) (uuid.UUID, error) {
		return uuid.Nil, inner.Tasks().MarkDone(ctx, disputeID)
	})
}

func cleanEvidence(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
