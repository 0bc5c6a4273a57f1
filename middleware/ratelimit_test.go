package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedEngine(r rate.Limit, burst int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, burst))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

// hit sends one request from ip.
func hit(eng *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	eng.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name  string
		burst int
		ips   []string
		want  []int
	}{
		{"within burst", 3, []string{"10.0.1.1", "10.0.1.1", "10.0.1.1"}, []int{200, 200, 200}},
		{"burst exhausted", 2, []string{"10.0.2.1", "10.0.2.1", "10.0.2.1"}, []int{200, 200, 429}},
		{"buckets per address", 1, []string{"10.0.3.1", "10.0.3.2", "10.0.3.1"}, []int{200, 200, 429}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A near-zero refill keeps the bucket from recovering mid-test.
			eng := limitedEngine(0.001, tt.burst)
			for i, ip := range tt.ips {
				assert.Equal(t, tt.want[i], hit(eng, "/", ip).Code, "request %d from %s", i+1, ip)
			}
		})
	}
}

func TestRateLimit_RejectionShape(t *testing.T) {
	eng := limitedEngine(0.001, 1)
	hit(eng, "/", "10.2.2.2")
	w := hit(eng, "/", "10.2.2.2")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"code":"RATE_LIMITED","message":"rate limit exceeded"}`, w.Body.String())
}

func TestLimiterSet_SweepsIdleOnSchedule(t *testing.T) {
	start := time.Now()
	set := newLimiterSet(1, 1, start)
	set.allow("stale", start)
	set.allow("fresh", start.Add(sweepEvery-time.Second))
	assert.Contains(t, set.byIP, "stale", "no sweep before the interval")

	set.allow("fresh", start.Add(idleAfter+time.Second))
	assert.NotContains(t, set.byIP, "stale")
	assert.Contains(t, set.byIP, "fresh")
	assert.Equal(t, start.Add(idleAfter+time.Second+sweepEvery), set.nextSweep)
}
