package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dingauth/pkg/platform/circuit"
	"dingauth/pkg/requestcontext"
)

func TestInMemoryStoreSlidingWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := range 3 {
		res, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60, res.RetryAfter)

	other, err := store.Allow(ctx, "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(time.Minute + time.Second)
	res, err = store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, "dingauth:rl:")
	ctx := context.Background()

	for range 2 {
		res, err := store.Allow(ctx, "login:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := store.Allow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	members, err := rdb.ZCard(ctx, "dingauth:rl:login:10.0.0.1").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, members, "denied attempts are not recorded")
	assert.Positive(t, mr.TTL("dingauth:rl:login:10.0.0.1"))
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis down")
}

func loginRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login/dingtalk", nil)
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "curl/8"))
}

func TestMiddleware(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(NewInMemoryStore(), Config{Limit: 1, Window: time.Minute}, nil)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("203.0.113.9"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("203.0.113.9"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("203.0.113.10"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	Middleware(failingStore{}, Config{Limit: 1, Window: time.Minute}, nil)(next).ServeHTTP(rec, loginRequest("198.51.100.1"))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestFallbackStore(t *testing.T) {
	ctx := context.Background()
	fallback := NewInMemoryStore()
	store := NewFallbackStore(failingStore{}, fallback, circuit.New("test", circuit.WithFailureThreshold(2)), nil)

	_, err := store.Allow(ctx, "k", 5, time.Minute)
	require.Error(t, err, "primary errors surface until the breaker opens")

	res, err := store.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Degraded)
	assert.Equal(t, 4, res.Remaining)
}

func TestFallbackStoreRecovers(t *testing.T) {
	ctx := context.Background()
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))
	breaker.RecordFailure()
	store := NewFallbackStore(NewInMemoryStore(), NewInMemoryStore(), breaker, nil)

	res, err := store.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, circuit.StateClosed, breaker.State())
}

func TestMiddlewareMarksDegraded(t *testing.T) {
	store := NewFallbackStore(failingStore{}, NewInMemoryStore(), circuit.New("test", circuit.WithFailureThreshold(1)), nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	Middleware(store, Config{Limit: 3, Window: time.Minute}, nil)(next).ServeHTTP(rec, loginRequest("192.0.2.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", rec.Header().Get("X-RateLimit-Status"))
}
