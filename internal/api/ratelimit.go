package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stockmarket/pkg/logger"
	"github.com/wonny/stockmarket/pkg/redis"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, client string) bool
}

// maxTrackedClients triggers a sweep of idle buckets
const maxTrackedClients = 4096

// LocalLimiter is a token bucket per client address, kept in memory
type LocalLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows perSecond requests per client with bursts up to burst
func NewLocalLimiter(perSecond float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		clients: make(map[string]*clientBucket),
	}
}

// Allow takes one token from the client's bucket
func (l *LocalLimiter) Allow(_ context.Context, client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	b, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.forget(now, time.Minute)
		}
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// forget drops buckets idle for longer than idle. Caller holds mu.
func (l *LocalLimiter) forget(now time.Time, idle time.Duration) {
	cutoff := now.Add(-idle)
	for client, b := range l.clients {
		if b.lastSeen.Before(cutoff) {
			delete(l.clients, client)
		}
	}
}

// RedisLimiter shares a one-second sliding window across instances
type RedisLimiter struct {
	limiter *redis.RateLimiter
	limit   int
	logger  *logger.Logger
}

// NewRedisLimiter allows limit requests per client per second
func NewRedisLimiter(client *redis.Client, limit int, log *logger.Logger) *RedisLimiter {
	return &RedisLimiter{
		limiter: redis.NewRateLimiter(client, redis.KeyPrefix),
		limit:   limit,
		logger:  log,
	}
}

// Allow checks the client's window. Redis errors let the request through.
func (l *RedisLimiter) Allow(ctx context.Context, client string) bool {
	allowed, _, err := l.limiter.Allow(ctx, redis.RateLimitConfig{
		Key:    client,
		Limit:  l.limit,
		Window: time.Second,
	})
	if err != nil {
		l.logger.WithError(err).Warn("Rate limiter unavailable")
		return true
	}
	return allowed
}

// rateLimitMiddleware answers 429 once a client runs out of requests
func rateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), clientAddr(r)) {
				w.Header().Set("Retry-After", "1")
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
