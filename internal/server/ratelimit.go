package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	bucketIdleThreshold = time.Hour
	cleanupInterval     = 30 * time.Minute
)

type clientBucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a per-client fixed-window token bucket.
type RateLimiter struct {
	mu          sync.Mutex
	capacity    int
	refillDur   time.Duration
	clients     map[string]*clientBucket
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter allows capacity requests per client every refillDur.
func NewRateLimiter(capacity int, refillDur time.Duration) *RateLimiter {
	return &RateLimiter{
		capacity:    capacity,
		refillDur:   refillDur,
		clients:     make(map[string]*clientBucket),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow spends one token for client, reporting false when none are left.
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastCleanup) > cleanupInterval {
		r.cleanup(now)
	}

	bucket, exists := r.clients[client]
	if !exists {
		r.clients[client] = &clientBucket{
			tokens:     r.capacity - 1,
			lastRefill: now,
		}
		return true
	}

	if now.Sub(bucket.lastRefill) >= r.refillDur {
		bucket.tokens = r.capacity
		bucket.lastRefill = now
	}
	if bucket.tokens <= 0 {
		return false
	}
	bucket.tokens--
	return true
}

func (r *RateLimiter) cleanup(now time.Time) {
	for ip, bucket := range r.clients {
		if now.Sub(bucket.lastRefill) > bucketIdleThreshold {
			delete(r.clients, ip)
		}
	}
	r.lastCleanup = now
}

// limit wraps next with the limiter; a nil limiter passes everything through.
func limit(limiter *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !limiter.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(int(limiter.refillDur.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
