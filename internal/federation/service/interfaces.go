package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks IdentityProvider,AppRegistry,UserDetailsService,StatusChecker,AuditEmitter

import (
	"context"

	"dingauth/internal/audit"
	"dingauth/internal/dingtalk/apps"
	"dingauth/internal/federation/models"
)

// IdentityProvider performs the DingTalk calls an exchange needs. Every
// method blocks until the provider answers or the context ends.
type IdentityProvider interface {
	GetOrRefreshToken(ctx context.Context, appKey, appSecret string) (string, error)
	ResolveByCode(ctx context.Context, code, appKey, appSecret string) (*models.ExternalUserInfo, error)
	ResolveUserIDByUnionID(ctx context.Context, appKey, accessToken, unionID string) (string, error)
	ResolveProfileByUserID(ctx context.Context, appKey, accessToken, userID string) (*models.ExternalProfile, error)
}

// AppRegistry resolves an app key to its credentials.
type AppRegistry interface {
	Lookup(appKey string) (apps.Credentials, error)
}

// UserDetailsService loads the local account linked to a resolved identity.
// It returns ErrUserNotFound when no account is linked.
type UserDetailsService interface {
	LoadUser(ctx context.Context, identity *models.ResolvedIdentity) (models.UserDetails, error)
}

// StatusChecker rejects accounts that may not log in. Failures are *Error
// values of KindAccountStatus.
type StatusChecker interface {
	Check(user models.UserDetails) error
}

// AuditEmitter receives one event per login attempt.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}
