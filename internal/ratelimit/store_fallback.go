package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"dingauth/pkg/platform/circuit"
)

// FallbackStore answers from a local store while the shared primary keeps
// failing. Before the breaker opens, primary errors are returned as is.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackStore(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	res, err := s.primary.Allow(ctx, key, limit, window)
	if err != nil {
		useFallback, t := s.breaker.RecordFailure()
		if t.Opened {
			s.logger.WarnContext(ctx, "rate limit store circuit opened, using local fallback",
				"breaker", s.breaker.Name(), "error", err)
		}
		if !useFallback {
			return nil, err
		}
		return s.degraded(ctx, key, limit, window)
	}

	usePrimary, t := s.breaker.RecordSuccess()
	if t.Closed {
		s.logger.InfoContext(ctx, "rate limit store circuit closed", "breaker", s.breaker.Name())
	}
	if !usePrimary {
		return s.degraded(ctx, key, limit, window)
	}
	return res, nil
}

func (s *FallbackStore) degraded(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	res, err := s.fallback.Allow(ctx, key, limit, window)
	if err != nil {
		return nil, err
	}
	res.Degraded = true
	return res, nil
}
