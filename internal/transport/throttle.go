package transport

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle applies a per-user request rate limit. This is transport
// back-pressure only; the daily contact quota is enforced separately by
// the quota engine.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewThrottle creates a throttle allowing perMinute requests per user.
func NewThrottle(perMinute int) *Throttle {
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (t *Throttle) limiter(userID string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[userID] = lim
	}
	return lim
}

// Middleware rejects requests above the per-user rate with 429. It must
// run after AuthMiddleware so the user ID is on the context.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !t.limiter(userID).Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests", "Request rate limit exceeded. Slow down and retry.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
