// Package policy computes refund eligibility for cancellation requests.
// Calculate is a pure function of its inputs; the current time is always
// passed in by the caller.
package policy

import (
	"math"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
)

// Config holds the tier boundaries and percentages of the cancellation policy.
type Config struct {
	// Organizer cancellations strictly more than this many days out get FullRefundPercent.
	FullRefundAboveDays int
	// Organizer cancellations at least this many days out get PartialRefundPercent.
	PartialRefundFromDays int
	FullRefundPercent     int
	PartialRefundPercent  int
	LateRefundPercent     int
	// Artists may not cancel with less notice than this.
	ArtistMinNoticeDays int
	// Refund paid to the organizer when the artist cancels.
	ArtistRefundPercent int
}

func DefaultConfig() Config {
	return Config{
		FullRefundAboveDays:   14,
		PartialRefundFromDays: 7,
		FullRefundPercent:     100,
		PartialRefundPercent:  50,
		LateRefundPercent:     0,
		ArtistMinNoticeDays:   7,
		ArtistRefundPercent:   100,
	}
}

func (c Config) Validate() error {
	if c.PartialRefundFromDays < 0 || c.PartialRefundFromDays > c.FullRefundAboveDays {
		return apperrors.ErrInvalidPolicy.Withf("partial refund boundary (%d) must be between 0 and the full refund boundary (%d)",
			c.PartialRefundFromDays, c.FullRefundAboveDays)
	}
	if c.ArtistMinNoticeDays < 0 {
		return apperrors.ErrInvalidPolicy.Withf("artist minimum notice must not be negative")
	}
	for _, p := range []int{c.FullRefundPercent, c.PartialRefundPercent, c.LateRefundPercent, c.ArtistRefundPercent} {
		if p < 0 || p > 100 {
			return apperrors.ErrInvalidPolicy.Withf("refund percentage %d is outside 0-100", p)
		}
	}
	return nil
}

type Result struct {
	DaysBeforeEvent  int  `json:"days_before_event"`
	RefundPercentage int  `json:"refund_percentage"`
	Eligible         bool `json:"eligible"`
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// Calculate applies the policy for a request made at now by a party in role.
// Artist requests inside the notice window return an ineligible Result
// together with ErrCancellationNotAllowed.
func (c *Calculator) Calculate(eventDate, now time.Time, role escrow.Role) (Result, error) {
	days := DaysBefore(eventDate, now)
	res := Result{DaysBeforeEvent: days}

	switch role {
	case escrow.RoleOrganizer:
		res.Eligible = true
		switch {
		case days > c.cfg.FullRefundAboveDays:
			res.RefundPercentage = c.cfg.FullRefundPercent
		case days >= c.cfg.PartialRefundFromDays:
			res.RefundPercentage = c.cfg.PartialRefundPercent
		default:
			res.RefundPercentage = c.cfg.LateRefundPercent
		}
		return res, nil
	case escrow.RoleArtist:
		if days < c.cfg.ArtistMinNoticeDays {
			return res, apperrors.ErrCancellationNotAllowed.Withf(
				"artists must cancel at least %d days before the event (%d days left)", c.cfg.ArtistMinNoticeDays, days)
		}
		res.Eligible = true
		res.RefundPercentage = c.cfg.ArtistRefundPercent
		return res, nil
	}
	return res, apperrors.ErrNotBookingParty.Withf("role %q cannot request a cancellation", role)
}

// DaysBefore is the number of days from now until eventDate, rounded up.
func DaysBefore(eventDate, now time.Time) int {
	return int(math.Ceil(eventDate.Sub(now).Hours() / 24))
}

// RefundAmount applies percentage to total, rounded to cents.
func RefundAmount(total float64, percentage int) float64 {
	return math.Round(total*float64(percentage)) / 100
}
