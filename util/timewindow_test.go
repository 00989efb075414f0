package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowElapsed(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, WindowElapsed(nil, now, QuotaWindow), "no prior reset counts as elapsed")

	last := now.Add(-25 * time.Hour)
	assert.True(t, WindowElapsed(&last, now, QuotaWindow))

	last = now.Add(-23 * time.Hour)
	assert.False(t, WindowElapsed(&last, now, QuotaWindow))

	last = now.Add(-24 * time.Hour)
	assert.True(t, WindowElapsed(&last, now, QuotaWindow), "exactly one window is elapsed")
}

func TestTimeUntilReset(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), TimeUntilReset(nil, now, QuotaWindow))

	last := now.Add(-20 * time.Hour)
	assert.Equal(t, 4*time.Hour, TimeUntilReset(&last, now, QuotaWindow))

	last = now.Add(-30 * time.Hour)
	assert.Equal(t, time.Duration(0), TimeUntilReset(&last, now, QuotaWindow))
}

func TestDayComparisons(t *testing.T) {
	morning := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 16, 0, 5, 0, 0, time.UTC)
	twoDaysOn := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(evening, nextDay))

	assert.True(t, IsYesterday(evening, nextDay))
	assert.False(t, IsYesterday(morning, twoDaysOn))
	assert.False(t, IsYesterday(nextDay, evening))
}

func TestStartOfMonth(t *testing.T) {
	mid := time.Date(2025, 6, 15, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(mid))
}
