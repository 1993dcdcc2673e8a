package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestKeyedLimiter_PerKeyBudget(t *testing.T) {
	l := newKeyedLimiter(rate.Every(time.Minute), 2, time.Minute)

	assert.True(t, l.Allow("a@example.com"))
	assert.True(t, l.Allow("a@example.com"))
	assert.False(t, l.Allow("a@example.com"))
	assert.True(t, l.Allow("b@example.com"))
}

func TestKeyedLimiter_EvictsIdleKeys(t *testing.T) {
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(rate.Every(time.Minute), 3, 10*time.Minute)
	l.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		l.Allow(fmt.Sprintf("user-%d@example.com", i))
	}
	assert.Equal(t, 1000, l.Len())

	clock = clock.Add(11 * time.Minute)
	l.Allow("late@example.com")
	assert.Equal(t, 1, l.Len(), "idle entries are swept")
}

func TestKeyedLimiter_ActiveKeysKeepTheirBudget(t *testing.T) {
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(rate.Every(time.Hour), 1, time.Minute)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("busy@example.com"))

	// ttl is raised to the refill time, so the key is not swept before its bucket refills.
	clock = clock.Add(30 * time.Minute)
	assert.False(t, l.Allow("busy@example.com"))
}
