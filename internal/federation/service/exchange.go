package service

import (
	"context"
	"fmt"
	"strings"

	"dingauth/internal/federation/models"
	"dingauth/internal/platform/tracer"
)

// Exchange turns a credential into a resolved identity.
//
// The code flow calls getuserinfo_bycode and then resolves the union id to a
// user id. A supplied user id skips both and goes straight to the profile.
// Any failure aborts the exchange and no partial identity is returned.
func (s *Service) Exchange(ctx context.Context, cred models.Credential) (*models.ResolvedIdentity, error) {
	code := strings.TrimSpace(cred.TmpAuthCode)
	userID := strings.TrimSpace(cred.UserID)
	if code == "" && userID == "" {
		return nil, newError(KindCredentialMissing, "temporary auth code or user id is required", nil)
	}

	app, err := s.apps.Lookup(cred.AppKey)
	if err != nil {
		return nil, newError(KindUnknownApp, fmt.Sprintf("app key %q is not registered", cred.AppKey), err)
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanExchange, tracer.String(tracer.AttrAppKey, app.AppKey))
	identity, err := s.exchange(ctx, app.AppKey, app.AppSecret, code, userID)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (s *Service) exchange(ctx context.Context, appKey, appSecret, code, userID string) (*models.ResolvedIdentity, error) {
	token, err := s.provider.GetOrRefreshToken(ctx, appKey, appSecret)
	if err != nil {
		return nil, providerRejected(err)
	}

	identity := &models.ResolvedIdentity{AppKey: appKey, UserID: userID}

	if userID == "" && code != "" {
		info, err := s.provider.ResolveByCode(ctx, code, appKey, appSecret)
		if err != nil {
			return nil, providerRejected(err)
		}
		if info != nil {
			identity.UserInfo = info
			identity.UnionID = info.UnionID
			identity.OpenID = info.OpenID
		}
	}

	switch {
	case identity.Profile == nil && identity.UserID != "":
		profile, err := s.provider.ResolveProfileByUserID(ctx, appKey, token, identity.UserID)
		if err != nil {
			return nil, providerRejected(err)
		}
		identity.Profile = profile
	case identity.Profile == nil && identity.UnionID != "":
		resolved, err := s.provider.ResolveUserIDByUnionID(ctx, appKey, token, identity.UnionID)
		if err != nil {
			return nil, providerRejected(err)
		}
		identity.UserID = resolved
		profile, err := s.provider.ResolveProfileByUserID(ctx, appKey, token, resolved)
		if err != nil {
			return nil, providerRejected(err)
		}
		identity.Profile = profile
	}

	if identity.Profile == nil {
		return nil, newError(KindIdentityUnresolved, "dingtalk identity could not be resolved to a profile", nil)
	}
	if identity.UnionID == "" {
		identity.UnionID = identity.Profile.UnionID
	}
	return identity, nil
}
