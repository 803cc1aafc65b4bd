// Package service exchanges DingTalk credentials for a verified identity and
// maps it onto a local principal.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dingauth/internal/audit"
	"dingauth/internal/federation/metrics"
	"dingauth/internal/federation/models"
	"dingauth/internal/platform/privacy"
	"dingauth/internal/platform/tracer"
)

type Service struct {
	provider IdentityProvider
	apps     AppRegistry
	users    UserDetailsService
	checker  StatusChecker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	auditor  AuditEmitter
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithAuditor publishes an audit event for every login attempt.
func WithAuditor(a AuditEmitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithStatusChecker replaces AccountStatusChecker.
func WithStatusChecker(c StatusChecker) Option {
	return func(s *Service) {
		s.checker = c
	}
}

func New(provider IdentityProvider, apps AppRegistry, users UserDetailsService, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if apps == nil {
		return nil, errors.New("app registry is required")
	}
	if users == nil {
		return nil, errors.New("user details service is required")
	}
	svc := &Service{
		provider: provider,
		apps:     apps,
		users:    users,
		checker:  AccountStatusChecker{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc, nil
}

// Authenticate runs the exchange and then the mapping. It never writes a
// response; failures are returned as *Error.
func (s *Service) Authenticate(ctx context.Context, cred models.Credential, details models.RequestDetails) (*models.Outcome, error) {
	start := s.now()
	flow := string(cred.Flow())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuthenticate,
		tracer.String(tracer.AttrAppKey, cred.AppKey),
		tracer.String(tracer.AttrFlow, flow),
	)

	outcome, err := s.authenticate(ctx, cred, details)
	if err != nil {
		span.SetAttributes(tracer.String(tracer.AttrErrorKind, string(KindOf(err))))
		span.End(err)
		s.loginFailure(ctx, cred, details, err)
		s.metrics.ObserveLogin(flow, "failure", s.now().Sub(start))
		return nil, err
	}
	span.End(nil)

	s.logAudit(ctx, "dingtalk_login_succeeded",
		"app_key", cred.AppKey,
		"flow", flow,
		"username", outcome.Principal.Username,
		"dingtalk_userid_hash", privacy.HashIdentifier(outcome.Identity.UserID),
		"ip_prefix", privacy.AnonymizeIP(details.ClientIP),
		"device", details.Device,
	)
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionLoginSucceeded,
		AppKey:     cred.AppKey,
		Flow:       flow,
		Username:   outcome.Principal.Username,
		UserIDHash: privacy.HashIdentifier(outcome.Identity.UserID),
	}, details)
	s.metrics.ObserveLogin(flow, "success", s.now().Sub(start))
	return outcome, nil
}

func (s *Service) authenticate(ctx context.Context, cred models.Credential, details models.RequestDetails) (*models.Outcome, error) {
	identity, err := s.Exchange(ctx, cred)
	if err != nil {
		return nil, err
	}
	return s.Map(ctx, identity, details)
}
