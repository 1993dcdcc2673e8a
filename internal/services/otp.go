package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OTPSender delivers a sign-in code to its owner.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string, expiresAt time.Time) error
}

// EventOTPSender hands codes to the mail worker over the message bus.
type EventOTPSender struct {
	Events EventPublisher
}

func (s EventOTPSender) SendOTP(_ context.Context, email, code string, expiresAt time.Time) error {
	return s.Events.PublishEvent(EventOTPRequested, OTPRequestedEvent{Email: email, Code: code, ExpiresAt: expiresAt})
}

// LogOTPSender writes codes to the log. Only for development.
type LogOTPSender struct {
	Log *zap.Logger
}

func (s LogOTPSender) SendOTP(_ context.Context, email, code string, expiresAt time.Time) error {
	s.Log.Info("one-time code issued", zap.String("email", email), zap.String("code", code), zap.Time("expires_at", expiresAt))
	return nil
}

// generateOTP returns a uniformly random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per key. Entries idle for longer than ttl are swept
// on a later Allow; ttl is never shorter than a full refill, so a swept key restarts with
// the same budget it would have had.
type keyedLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiter(r rate.Limit, burst int, ttl time.Duration) *keyedLimiter {
	if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); ttl < refill {
		ttl = refill
	}
	return &keyedLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *keyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.ttl {
		l.sweep(now)
	}
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()
	return entry.limiter.AllowN(now, 1)
}

// sweep drops idle entries. Callers hold mu.
func (l *keyedLimiter) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.entries, key)
		}
	}
	l.lastSweep = now
}

func (l *keyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
