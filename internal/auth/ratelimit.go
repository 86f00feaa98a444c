package auth

import (
	"sync"

	"golang.org/x/time/rate"

	"quantumshield/internal/domain"
)

// KeyedLimiter holds one token-bucket limiter per user, lazily created on
// first use. It backs the relay's per-user event/HTTP rate limits (§4.4's
// "crypto-assisted HTTP endpoints 10-20/min" floor) and any other per-user
// limiting the auth boundary needs.
type KeyedLimiter struct {
	r rate.Limit
	b int

	mu       sync.Mutex
	limiters map[domain.UserID]*rate.Limiter
}

// NewKeyedLimiter returns a limiter allowing burst b and a steady-state rate
// of r events per second, per user.
func NewKeyedLimiter(r rate.Limit, b int) *KeyedLimiter {
	return &KeyedLimiter{r: r, b: b, limiters: make(map[domain.UserID]*rate.Limiter)}
}

// Allow reports whether user may perform one more rate-limited action now.
func (k *KeyedLimiter) Allow(user domain.UserID) bool {
	k.mu.Lock()
	l, ok := k.limiters[user]
	if !ok {
		l = rate.NewLimiter(k.r, k.b)
		k.limiters[user] = l
	}
	k.mu.Unlock()
	return l.Allow()
}
