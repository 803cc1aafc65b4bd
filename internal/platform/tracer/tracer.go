// Package tracer is a small tracing facade over OpenTelemetry.
//
// Callers depend on the Tracer and Span interfaces only. Production wiring
// uses OTelTracer; tests use NoopTracer.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a typed span attribute.
type Attribute = attribute.KeyValue

func String(key, value string) Attribute { return attribute.String(key, value) }

func Bool(key string, value bool) Attribute { return attribute.Bool(key, value) }

func Int64(key string, value int64) Attribute { return attribute.Int64(key, value) }

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

// Span names.
const (
	SpanAuthenticate     = "federation.authenticate"
	SpanExchange         = "federation.exchange"
	SpanMap              = "federation.map"
	SpanTokenRefresh     = "dingtalk.token.refresh"
	SpanProviderByCode   = "dingtalk.getuserinfo_bycode"
	SpanProviderByUnion  = "dingtalk.getuserid_byunionid"
	SpanProviderUserGet  = "dingtalk.user.get"
	SpanProviderGetToken = "dingtalk.gettoken"
)

// Attribute keys.
const (
	AttrAppKey       = "dingtalk.app_key"
	AttrUserIDHash   = "dingtalk.userid_hash"
	AttrFlow         = "federation.flow"
	AttrCacheHit     = "cache.hit"
	AttrErrorKind    = "error.kind"
	AttrUpstreamCode = "dingtalk.errcode"
)
