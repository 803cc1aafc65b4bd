package testutil

import (
	"time"

	"dingauth/internal/federation/models"
)

// Deterministic DingTalk identifiers for tests.
const (
	AppKey    = "dingoa-test-app"
	AppSecret = "test-app-secret"
	UserID    = "manager4521"
	UnionID   = "unionid-abc123"
	OpenID    = "openid-xyz789"
	Nick      = "Zhang San"
)

// NewIdentity returns a resolved code flow identity. Pass an empty nick for
// the user id flow.
func NewIdentity(nick string) *models.ResolvedIdentity {
	identity := &models.ResolvedIdentity{
		AppKey:  AppKey,
		UnionID: UnionID,
		OpenID:  OpenID,
		UserID:  UserID,
		Profile: &models.ExternalProfile{
			UserID:  UserID,
			UnionID: UnionID,
			Name:    "Zhang San",
			Active:  true,
		},
	}
	if nick != "" {
		identity.UserInfo = &models.ExternalUserInfo{Nick: nick, OpenID: OpenID, UnionID: UnionID}
	}
	return identity
}

// NewLocalUser returns an active linked account.
func NewLocalUser(username string) *models.LocalUser {
	return &models.LocalUser{
		ID:             "11111111-1111-1111-1111-111111111111",
		DingTalkUserID: UserID,
		UnionID:        UnionID,
		Name:           username,
		RoleNames:      []string{"member"},
		Grants:         []string{"ROLE_USER"},
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewOutcome builds a successful outcome for the given principal.
func NewOutcome(principal *models.Principal) *models.Outcome {
	return &models.Outcome{
		Identity:  NewIdentity(Nick),
		Principal: principal,
		Details: models.RequestDetails{
			RequestID: "req-test",
			ClientIP:  "203.0.113.7",
			UserAgent: "Mozilla/5.0",
			Device:    "Chrome on macOS",
		},
	}
}
