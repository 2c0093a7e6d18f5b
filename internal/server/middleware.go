package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/receiptlens/receiptlens/internal/common"
)

// statusRecorder captures the status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests tags each request with an ID and writes one access log line.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		ctx := common.WithRequestID(r.Context(), requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", clientIP(r),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// requireAuth checks the Bearer token against the session store and puts the
// session's identity on the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess, ok := s.auth.Verify(token)
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := common.WithUserID(r.Context(), sess.UserID.String())
		ctx = common.WithUsername(ctx, sess.Username)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// ipLimiter hands out one token bucket per remote IP. Buckets idle past
// visitorTTL are evicted once the map outgrows visitorCap.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const (
	visitorCap = 1024
	visitorTTL = 10 * time.Minute
)

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		if len(l.visitors) >= visitorCap {
			l.evictIdle(now)
		}
		v = &visitor{lim: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()
	return v.lim.Allow()
}

// evictIdle drops visitors idle past the TTL. Caller holds the lock.
func (l *ipLimiter) evictIdle(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, ip)
		}
	}
}

func (s *Server) rateLimit(l *ipLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
