package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	sweepEvery = 5 * time.Minute
	idleAfter  = 10 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	byIP      map[string]*ipLimiter
	r         rate.Limit
	burst     int
	nextSweep time.Time
}

func newLimiterSet(r rate.Limit, burst int, now time.Time) *limiterSet {
	return &limiterSet{
		byIP:      make(map[string]*ipLimiter),
		r:         r,
		burst:     burst,
		nextSweep: now.Add(sweepEvery),
	}
}

// allow also drops idle addresses once per sweepEvery, so the set needs no
// background goroutine.
func (s *limiterSet) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now.Add(-idleAfter))
		s.nextSweep = now.Add(sweepEvery)
	}
	l, ok := s.byIP[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(s.r, s.burst)}
		s.byIP[ip] = l
	}
	l.lastSeen = now
	s.mu.Unlock()
	return l.limiter.AllowN(now, 1)
}

func (s *limiterSet) sweepLocked(cutoff time.Time) {
	for ip, l := range s.byIP {
		if l.lastSeen.Before(cutoff) {
			delete(s.byIP, ip)
		}
	}
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	set := newLimiterSet(r, b, time.Now())
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
