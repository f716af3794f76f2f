package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

// RateLimit is a fixed-window per-IP limiter counted in the key-value
// store, so limits hold across instances when the store is networked.
// The window index is part of the counter key, so windows reopen even on
// the in-process backend, which does not expire keys.
type RateLimit struct {
	store  model.KeyValue
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *logger.Logger
}

func NewRateLimit(store model.KeyValue, prefix string, limit int, window time.Duration, logger *logger.Logger) *RateLimit {
	return &RateLimit{
		store:  store,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

func (m *RateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		bucket := m.now().UnixNano() / int64(m.window)
		key := fmt.Sprintf("rl:%s:%s:%d", m.prefix, ip, bucket)

		count, err := m.store.Increment(r.Context(), key, m.window)
		if err != nil {
			// Fail open: a broken counter store should not take the API down.
			m.logger.Error("rate limit counter unavailable", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > m.limit {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.window.Seconds())))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"code":"ERR_RATE_LIMITED","message":"Too many requests"}}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
