// Package requestcontext carries per-request transport metadata through context.
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIPKey
	userAgentKey
	deviceKey
	requestTimeKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id, or "" when none was set.
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithClientMetadata stores the client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey)
}

func UserAgent(ctx context.Context) string {
	return stringValue(ctx, userAgentKey)
}

// WithDevice stores a display name such as "Chrome on Windows".
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey, device)
}

func Device(ctx context.Context) string {
	return stringValue(ctx, deviceKey)
}

// WithTime pins the request-scoped "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}

// Now returns the request-scoped time, falling back to the wall clock outside
// an HTTP request.
func Now(ctx context.Context) time.Time {
	if ctx != nil {
		if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
