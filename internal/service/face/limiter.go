package face

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-employee limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// checkinLimiter holds one token bucket per employee.
type checkinLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
}

// newCheckinLimiter allows perMinute sustained attempts with the given burst.
// A non-positive perMinute disables limiting.
func newCheckinLimiter(perMinute float64, burst int) *checkinLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &checkinLimiter{limit: limit, burst: burst, limiters: make(map[string]*limiterEntry)}
}

func (l *checkinLimiter) allow(employeeID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.limiters {
		if now.Sub(e.lastSeen) > idleLimiterTTL {
			delete(l.limiters, id)
		}
	}

	e, ok := l.limiters[employeeID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[employeeID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
