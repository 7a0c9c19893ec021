package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"

	"golang.org/x/time/rate"
)

// CallerExtractor returns the identity a request is rate limited under. An
// empty identity is never limited.
type CallerExtractor func(r *http.Request) string

type callerLimit struct {
	limiter *rate.Limiter
	seen    time.Time
}

// CallerRateLimiter gives every caller a token bucket holding limit tokens
// that refills at limit per window.
type CallerRateLimiter struct {
	mu        sync.Mutex
	callers   map[string]*callerLimit
	limit     int
	every     rate.Limit
	window    time.Duration
	extractor CallerExtractor
	log       *logger.Logger
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewCallerRateLimiter(limit int, window time.Duration, extractor CallerExtractor, log *logger.Logger) *CallerRateLimiter {
	if extractor == nil {
		extractor = DefaultCallerExtractor
	}
	rl := &CallerRateLimiter{
		callers:   make(map[string]*callerLimit),
		limit:     limit,
		every:     rate.Every(window / time.Duration(limit)),
		window:    window,
		extractor: extractor,
		log:       log,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

// evictIdle drops callers idle for a full window, whose buckets are full again.
func (rl *CallerRateLimiter) evictIdle() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-rl.window)
			for caller, cl := range rl.callers {
				if cl.seen.Before(cutoff) {
					delete(rl.callers, caller)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *CallerRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow takes one token from caller's bucket. When the bucket is empty it
// returns false and how long until the next token.
func (rl *CallerRateLimiter) Allow(caller string) (bool, time.Duration) {
	if caller == "" {
		return true, 0
	}

	rl.mu.Lock()
	now := rl.now()
	cl, ok := rl.callers[caller]
	if !ok {
		cl = &callerLimit{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.callers[caller] = cl
	}
	cl.seen = now
	rl.mu.Unlock()

	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.window
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func RateLimit(limiter *CallerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := limiter.extractor(r)
			ok, wait := limiter.Allow(caller)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				reject(w, r, limiter.log, apperrors.Rejected(apperrors.CodeRateLimited, "Rate limit exceeded"),
					"caller", caller)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultCallerExtractor keys authenticated callers by X-User-ID and
// everyone else by remote IP.
func DefaultCallerExtractor(r *http.Request) string {
	if userID := r.Header.Get(httputil.HeaderUserID); userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return ""
	}
	return "ip:" + host
}
