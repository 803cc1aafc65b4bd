// Package token caches DingTalk app access tokens.
//
// A Cache is shared by all requests. Lookups are concurrent; a refresh for a
// given app key runs at most once at a time and every waiting caller receives
// its result.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"dingauth/internal/dingtalk/client"
	"dingauth/internal/platform/tracer"
)

// Fetcher obtains a fresh token from the provider.
type Fetcher interface {
	GetAccessToken(ctx context.Context, appKey, appSecret string) (*client.AccessToken, error)
}

// Cache is a cache-or-refresh front for Fetcher.
type Cache struct {
	fetcher Fetcher
	store   Store
	skew    time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	tracer  tracer.Tracer
}

type Option func(*Cache)

func WithStore(s Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// WithSkew shortens every cached lifetime so tokens are replaced before the
// provider expires them.
func WithSkew(d time.Duration) Option {
	return func(c *Cache) {
		c.skew = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Cache) {
		c.tracer = t
	}
}

// New builds a cache backed by an in-memory store unless WithStore is given.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		store:   NewMemoryStore(),
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a valid token for appKey, refreshing it if none is cached.
func (c *Cache) Get(ctx context.Context, appKey, appSecret string) (string, error) {
	if tok, ok := c.lookup(ctx, appKey); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return tok, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	// Waiters share the refresh, so it must outlive the first caller's
	// cancellation. The client's per-call timeout still bounds it.
	refreshCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(appKey, func() (any, error) {
		if tok, ok := c.lookup(refreshCtx, appKey); ok {
			return tok, nil
		}
		return c.refresh(refreshCtx, appKey, appSecret)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token for appKey so the next Get refreshes.
func (c *Cache) Invalidate(ctx context.Context, appKey string) error {
	invalidations.Inc()
	if err := c.store.Delete(ctx, appKey); err != nil {
		return fmt.Errorf("invalidate token for %s: %w", appKey, err)
	}
	c.logger.InfoContext(ctx, "access token invalidated", "app_key", appKey)
	return nil
}

func (c *Cache) lookup(ctx context.Context, appKey string) (string, bool) {
	tok, ok, err := c.store.Get(ctx, appKey)
	if err != nil {
		c.logger.WarnContext(ctx, "token store read failed, refreshing",
			"app_key", appKey,
			"error", err,
		)
		return "", false
	}
	return tok, ok
}

func (c *Cache) refresh(ctx context.Context, appKey, appSecret string) (string, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanTokenRefresh, tracer.String(tracer.AttrAppKey, appKey))
	tok, err := c.fetcher.GetAccessToken(ctx, appKey, appSecret)
	span.End(err)
	if err != nil {
		refreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("refresh access token for %s: %w", appKey, err)
	}
	refreshes.WithLabelValues("success").Inc()

	ttl := c.ttl(tok.ExpiresIn)
	if ttl <= 0 {
		c.logger.WarnContext(ctx, "access token returned without usable lifetime",
			"app_key", appKey,
			"expires_in", tok.ExpiresIn,
		)
		return tok.Value, nil
	}
	if err := c.store.Set(ctx, appKey, tok.Value, ttl); err != nil {
		c.logger.WarnContext(ctx, "token store write failed",
			"app_key", appKey,
			"error", err,
		)
	}
	c.logger.DebugContext(ctx, "access token refreshed", "app_key", appKey, "ttl", ttl)
	return tok.Value, nil
}

// ttl applies the skew. Lifetimes shorter than the skew are halved instead.
func (c *Cache) ttl(expiresIn time.Duration) time.Duration {
	if expiresIn <= 0 {
		return 0
	}
	if expiresIn > c.skew {
		return expiresIn - c.skew
	}
	return expiresIn / 2
}
