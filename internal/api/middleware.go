package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/betafolio/backend/pkg/logger"
	"github.com/wonny/betafolio/backend/pkg/redis"
)

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			entry := log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("HTTP request")
				return
			}
			entry.Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Limiter decides whether a client may issue another request
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// clientBucket is one client's token bucket and when it was last used
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per client.
// Buckets idle longer than idleTTL are dropped by Purge.
type LocalLimiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	buckets map[string]*clientBucket
}

// NewLocalLimiter creates a per-client token bucket limiter
func NewLocalLimiter(rps float64, burst int, idleTTL time.Duration) *LocalLimiter {
	return &LocalLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		buckets: make(map[string]*clientBucket),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[clientID]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[clientID] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1), nil
}

// Purge drops idle buckets; scheduled by the limiter purge job
func (l *LocalLimiter) Purge(_ context.Context) (int, error) {
	if l.idleTTL <= 0 {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for id, bucket := range l.buckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked clients
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RedisLimiter shares a sliding window across API replicas
type RedisLimiter struct {
	limiter *redis.RateLimiter
	config  redis.RateLimitConfig
}

// NewRedisLimiter creates a limiter allowing rps*60 requests per minute per client
func NewRedisLimiter(limiter *redis.RateLimiter, rps float64) *RedisLimiter {
	cfg := redis.OptimizeRateLimit
	if rps > 0 {
		cfg.Limit = int(rps * 60)
	}
	return &RedisLimiter{
		limiter: limiter,
		config:  cfg,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, l.config.ForClient(clientID))
	return allowed, err
}

// ClientIdentifier derives the rate limit key of a request.
// X-Forwarded-For is honoured only when the direct peer is a trusted proxy.
type ClientIdentifier struct {
	trusted []netip.Prefix
}

// NewClientIdentifier parses trusted proxy IPs or CIDRs
func NewClientIdentifier(proxies []string) (*ClientIdentifier, error) {
	c := &ClientIdentifier{}
	for _, p := range proxies {
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
			}
			c.trusted = append(c.trusted, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		addr = addr.Unmap()
		c.trusted = append(c.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return c, nil
}

// ID returns the peer address, or the nearest untrusted X-Forwarded-For hop
// when the request came through trusted proxies. A nil identifier uses the peer only.
func (c *ClientIdentifier) ID(r *http.Request) string {
	peer := remoteHost(r)
	if c == nil || !c.isTrusted(peer) {
		return peer
	}

	// 오른쪽(가장 가까운 proxy)부터 신뢰 hop 건너뜀
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !c.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (c *ClientIdentifier) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// RateLimit configures the optimize endpoint limiter; a nil Limiter disables it
type RateLimit struct {
	Limiter Limiter
	Clients *ClientIdentifier // nil = peer address only
}

// rateLimitMiddleware rejects clients over their budget with 429.
// Limiter failures let the request through.
func rateLimitMiddleware(rl RateLimit, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := rl.Limiter.Allow(r.Context(), rl.Clients.ID(r))
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable")
				allowed = true
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// remoteHost strips the port from RemoteAddr
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
