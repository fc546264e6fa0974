package vault

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// unlockThrottle limits decrypt attempts per vault name. Entries idle longer
// than the ttl are evicted on the next lookup.
type unlockThrottle struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*throttleBucket
}

type throttleBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newUnlockThrottle(limit rate.Limit, burst int, ttl time.Duration) *unlockThrottle {
	return &unlockThrottle{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*throttleBucket),
	}
}

func (u *unlockThrottle) allow(name string) bool {
	now := time.Now()
	u.mu.Lock()
	defer u.mu.Unlock()
	b := u.entries[name]
	if b == nil {
		b = &throttleBucket{lim: rate.NewLimiter(u.limit, u.burst), lastSeen: now}
		u.entries[name] = b
	}
	b.lastSeen = now

	for k, v := range u.entries {
		if now.Sub(v.lastSeen) > u.ttl {
			delete(u.entries, k)
		}
	}
	return b.lim.Allow()
}
