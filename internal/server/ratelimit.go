package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter caps how many frames and upload bytes each client may submit.
// A zero limit disables that check.
type RateLimiter struct {
	mu sync.Mutex

	framesPerMinute int
	maxBytesPerDay  int64

	clients map[string]*clientUsage
	now     func() time.Time
}

// clientUsage tracks one client's frames in the current minute and bytes in
// the current day.
type clientUsage struct {
	windowStart  time.Time
	framesWindow int
	dayStart     time.Time
	bytesToday   int64
}

// NewRateLimiter creates a limiter. It returns nil when both limits are
// zero; a nil limiter allows everything.
func NewRateLimiter(framesPerMinute int, maxBytesPerDay int64) *RateLimiter {
	if framesPerMinute <= 0 && maxBytesPerDay <= 0 {
		return nil
	}
	return &RateLimiter{
		framesPerMinute: framesPerMinute,
		maxBytesPerDay:  maxBytesPerDay,
		clients:         make(map[string]*clientUsage),
		now:             time.Now,
	}
}

// Allow records one frame of size bytes for client, or returns a
// *RateLimitError when a limit would be exceeded. Rejected frames are not
// counted.
func (rl *RateLimiter) Allow(client string, size int64) error {
	if rl == nil {
		return nil
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u, ok := rl.clients[client]
	if !ok {
		u = &clientUsage{windowStart: now, dayStart: startOfDay(now)}
		rl.clients[client] = u
	}
	if now.Sub(u.windowStart) >= time.Minute {
		u.windowStart = now
		u.framesWindow = 0
	}
	if day := startOfDay(now); day.After(u.dayStart) {
		u.dayStart = day
		u.bytesToday = 0
	}

	if rl.framesPerMinute > 0 && u.framesWindow >= rl.framesPerMinute {
		return &RateLimitError{
			Limit:      "frames per minute",
			Value:      int64(rl.framesPerMinute),
			RetryAfter: time.Minute - now.Sub(u.windowStart),
		}
	}
	if rl.maxBytesPerDay > 0 && u.bytesToday+size > rl.maxBytesPerDay {
		return &RateLimitError{
			Limit:      "bytes per day",
			Value:      rl.maxBytesPerDay,
			RetryAfter: u.dayStart.AddDate(0, 0, 1).Sub(now),
		}
	}

	u.framesWindow++
	u.bytesToday += size
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RateLimitError reports which limit a client hit.
type RateLimitError struct {
	Limit      string
	Value      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d %s (retry after %v)", e.Value, e.Limit, e.RetryAfter.Round(time.Second))
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware rejects uploads over the client's limits with 429.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := s.limiter.Allow(clientKey(r), max(r.ContentLength, 0)); err != nil {
				var rle *RateLimitError
				if errors.As(err, &rle) {
					w.Header().Set("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())+1))
				}
				rateLimitedTotal.WithLabelValues("http").Inc()
				s.writeErrorResponse(w, err.Error(), http.StatusTooManyRequests)
				return
			}
		}
		next(w, r)
	}
}
