// Package adapters connects the federation service to DingTalk.
package adapters

//go:generate mockgen -source=dingtalk.go -destination=mocks/mocks.go -package=mocks DingTalkAPI,TokenCache

import (
	"context"
	"log/slog"
	"time"

	"dingauth/internal/dingtalk/client"
	"dingauth/internal/federation/metrics"
	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
)

// DingTalkAPI is the subset of *client.HTTPClient the provider uses.
type DingTalkAPI interface {
	GetUserInfoByTmpCode(ctx context.Context, code, appKey, appSecret string) (*client.UserInfo, error)
	GetUserIDByUnionID(ctx context.Context, accessToken, unionID string) (string, error)
	GetUser(ctx context.Context, accessToken, userID string) (*client.User, error)
}

// TokenCache is satisfied by *token.Cache.
type TokenCache interface {
	Get(ctx context.Context, appKey, appSecret string) (string, error)
	Invalidate(ctx context.Context, appKey string) error
}

// DingTalkProvider implements service.IdentityProvider. When DingTalk
// rejects an access token the cached token is dropped so the next login
// refreshes it; the failing call is not retried.
type DingTalkProvider struct {
	api     DingTalkAPI
	tokens  TokenCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*DingTalkProvider)

func WithLogger(l *slog.Logger) Option {
	return func(p *DingTalkProvider) {
		p.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *DingTalkProvider) {
		p.metrics = m
	}
}

func NewDingTalkProvider(api DingTalkAPI, tokens TokenCache, opts ...Option) *DingTalkProvider {
	p := &DingTalkProvider{api: api, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *DingTalkProvider) GetOrRefreshToken(ctx context.Context, appKey, appSecret string) (string, error) {
	start := time.Now()
	tok, err := p.tokens.Get(ctx, appKey, appSecret)
	p.metrics.ObserveProviderCall("token", err, time.Since(start))
	return tok, err
}

func (p *DingTalkProvider) ResolveByCode(ctx context.Context, code, appKey, appSecret string) (*models.ExternalUserInfo, error) {
	start := time.Now()
	info, err := p.api.GetUserInfoByTmpCode(ctx, code, appKey, appSecret)
	p.metrics.ObserveProviderCall("getuserinfo_bycode", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &models.ExternalUserInfo{Nick: info.Nick, OpenID: info.OpenID, UnionID: info.UnionID}, nil
}

func (p *DingTalkProvider) ResolveUserIDByUnionID(ctx context.Context, appKey, accessToken, unionID string) (string, error) {
	start := time.Now()
	userID, err := p.api.GetUserIDByUnionID(ctx, accessToken, unionID)
	p.metrics.ObserveProviderCall("getUseridByUnionid", err, time.Since(start))
	if err != nil {
		p.dropRejectedToken(ctx, appKey, err)
		return "", err
	}
	return userID, nil
}

func (p *DingTalkProvider) ResolveProfileByUserID(ctx context.Context, appKey, accessToken, userID string) (*models.ExternalProfile, error) {
	start := time.Now()
	user, err := p.api.GetUser(ctx, accessToken, userID)
	p.metrics.ObserveProviderCall("user.get", err, time.Since(start))
	if err != nil {
		p.dropRejectedToken(ctx, appKey, err)
		return nil, err
	}
	return &models.ExternalProfile{
		UserID:  user.UserID,
		UnionID: user.UnionID,
		Name:    user.Name,
		Avatar:  user.Avatar,
		Mobile:  user.Mobile,
		Email:   user.Email,
		Active:  user.Active,
		Raw:     user.Raw,
	}, nil
}

func (p *DingTalkProvider) dropRejectedToken(ctx context.Context, appKey string, err error) {
	if !client.IsTokenError(err) {
		return
	}
	p.metrics.IncrementTokenRejection()
	if invErr := p.tokens.Invalidate(ctx, appKey); invErr != nil {
		p.logger.WarnContext(ctx, "failed to invalidate rejected access token",
			"app_key", appKey,
			"error", invErr,
		)
	}
}

var _ service.IdentityProvider = (*DingTalkProvider)(nil)
