package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.DisputeResponseWindow)
	assert.Equal(t, time.Minute, cfg.AutoResolve.Interval)
	assert.Equal(t, 14, cfg.Cancellation.FullRefundAboveDays)
	assert.Equal(t, 7, cfg.Cancellation.PartialRefundFromDays)
	assert.Equal(t, 100, cfg.Cancellation.FullRefundPercent)
	assert.Equal(t, 50, cfg.Cancellation.PartialRefundPercent)
	assert.Equal(t, 0, cfg.Cancellation.LateRefundPercent)
}

func TestLoad_PolicyFromEnv(t *testing.T) {
	t.Setenv("DISPUTE_RESPONSE_WINDOW", "72h")
	t.Setenv("CANCEL_FULL_REFUND_ABOVE_DAYS", "30")
	t.Setenv("CANCEL_PARTIAL_REFUND_PERCENT", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, cfg.DisputeResponseWindow)
	assert.Equal(t, 30, cfg.Cancellation.FullRefundAboveDays)
	assert.Equal(t, 25, cfg.Cancellation.PartialRefundPercent)
}

func TestLoad_RejectsInvalidPolicy(t *testing.T) {
	t.Setenv("CANCEL_PARTIAL_REFUND_FROM_DAYS", "21")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveWindow(t *testing.T) {
	t.Setenv("DISPUTE_RESPONSE_WINDOW", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetIntEnv_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 5, GetIntEnv("SOME_INT", 5))
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
