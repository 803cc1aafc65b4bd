package service

import (
	"context"
	"log/slog"

	"dingauth/internal/audit"
	"dingauth/internal/federation/models"
	"dingauth/internal/platform/privacy"
	"dingauth/pkg/requestcontext"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// loginFailure logs a failed login. Unresolved identities and lookup errors
// point at configuration or infrastructure problems and are logged at error.
func (s *Service) loginFailure(ctx context.Context, cred models.Credential, details models.RequestDetails, err error) {
	kind := KindOf(err)
	var reason Reason
	var upstream int
	if se, ok := AsError(err); ok {
		reason = se.Reason
		upstream = se.UpstreamCode
	}

	attrs := []any{
		"event", "dingtalk_login_failed",
		"log_type", "audit",
		"kind", string(kind),
		"app_key", cred.AppKey,
		"flow", string(cred.Flow()),
		"ip_prefix", privacy.AnonymizeIP(details.ClientIP),
		"error", err,
	}
	if reason != "" {
		attrs = append(attrs, "reason", string(reason))
	}
	if upstream != 0 {
		attrs = append(attrs, "errcode", upstream)
	}
	if details.RequestID != "" {
		attrs = append(attrs, "request_id", details.RequestID)
	}

	level := slog.LevelWarn
	if kind == KindIdentityUnresolved || kind == KindLookupFailed || kind == "" {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "dingtalk login failed", attrs...)
	s.metrics.IncrementLoginFailure(string(kind), string(reason))

	s.emitAudit(ctx, audit.Event{
		Action:       audit.ActionLoginFailed,
		AppKey:       cred.AppKey,
		Flow:         string(cred.Flow()),
		UserIDHash:   privacy.HashIdentifier(cred.UserID),
		Kind:         string(kind),
		Reason:       string(reason),
		UpstreamCode: upstream,
	}, details)
}

// emitAudit fills request fields and hands event to the auditor. A sink
// failure is logged and never fails the login.
func (s *Service) emitAudit(ctx context.Context, event audit.Event, details models.RequestDetails) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = s.now()
	event.RequestID = details.RequestID
	event.ClientIP = privacy.AnonymizeIP(details.ClientIP)
	event.Device = details.Device
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
}
