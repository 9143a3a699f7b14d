package policy

import (
	"testing"
	"time"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func daysOut(d int) time.Time {
	return now.AddDate(0, 0, d)
}

func TestCalculate_Organizer(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	tests := []struct {
		name    string
		event   time.Time
		days    int
		percent int
	}{
		{"twenty days out", daysOut(20), 20, 100},
		{"fifteen days out", daysOut(15), 15, 100},
		{"exactly fourteen days", daysOut(14), 14, 50},
		{"ten days out", daysOut(10), 10, 50},
		{"exactly seven days", daysOut(7), 7, 50},
		{"six days and one hour rounds up to seven", now.Add(6*24*time.Hour + time.Hour), 7, 50},
		{"three days out", daysOut(3), 3, 0},
		{"event already passed", daysOut(-2), -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Calculate(tt.event, now, escrow.RoleOrganizer)
			require.NoError(t, err)
			assert.True(t, res.Eligible)
			assert.Equal(t, tt.days, res.DaysBeforeEvent)
			assert.Equal(t, tt.percent, res.RefundPercentage)
		})
	}
}

func TestCalculate_Artist(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	res, err := calc.Calculate(daysOut(3), now, escrow.RoleArtist)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCancellationNotAllowed)
	assert.Equal(t, apperrors.KindCancellationNotAllowed, apperrors.KindOf(err))
	assert.False(t, res.Eligible)
	assert.Equal(t, 3, res.DaysBeforeEvent)

	res, err = calc.Calculate(daysOut(7), now, escrow.RoleArtist)
	require.NoError(t, err)
	assert.True(t, res.Eligible)
	assert.Equal(t, 100, res.RefundPercentage)
}

func TestCalculate_AdminIsNotAParty(t *testing.T) {
	_, err := NewCalculator(DefaultConfig()).Calculate(daysOut(30), now, escrow.RoleAdmin)
	assert.Equal(t, apperrors.KindNotAuthorized, apperrors.KindOf(err))
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	event := now.Add(200 * time.Hour)

	first, err1 := calc.Calculate(event, now, escrow.RoleOrganizer)
	second, err2 := calc.Calculate(event, now, escrow.RoleOrganizer)
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)
}

func TestCalculate_CustomTiers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FullRefundAboveDays = 30
	cfg.PartialRefundFromDays = 10
	cfg.PartialRefundPercent = 25
	calc := NewCalculator(cfg)

	res, err := calc.Calculate(daysOut(20), now, escrow.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, 25, res.RefundPercentage)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.PartialRefundFromDays = 20
	assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidPolicy)

	bad = DefaultConfig()
	bad.PartialRefundPercent = 120
	assert.Error(t, bad.Validate())
}

func TestRefundAmount(t *testing.T) {
	assert.Equal(t, 1500.0, RefundAmount(1500, 100))
	assert.Equal(t, 750.0, RefundAmount(1500, 50))
	assert.Equal(t, 0.0, RefundAmount(1500, 0))
	assert.Equal(t, 60.25, RefundAmount(120.5, 50))
}
