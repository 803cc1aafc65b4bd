package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dingauth/internal/platform/privacy"
	"dingauth/pkg/platform/httputil"
	"dingauth/pkg/requestcontext"
)

var rejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dingauth_login_rate_limited_total",
	Help: "Login attempts rejected by the per-IP rate limiter",
})

// Config bounds attempts per client IP.
type Config struct {
	Limit  int
	Window time.Duration
}

// Middleware returns 429 once a client IP exceeds cfg.Limit requests within
// cfg.Window. Store errors let the request through.
func Middleware(store Store, cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = "unknown"
			}

			result, err := store.Allow(ctx, "login:"+ip, cfg.Limit, cfg.Window)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check login rate limit",
					"error", err,
					"ip_prefix", privacy.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if !result.Allowed {
				rejectedTotal.Inc()
				logger.WarnContext(ctx, "login rate limited",
					"ip_prefix", privacy.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
					Error:       "rate_limit_exceeded",
					Description: "too many login attempts, retry later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
