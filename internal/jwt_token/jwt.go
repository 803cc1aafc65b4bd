package jwttoken

import (
	"context"
	"errors"
	"time"

	"dingauth/internal/federation/models"
	dErrors "dingauth/pkg/domain-errors"
	"dingauth/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are carried by the session token issued after a DingTalk login.
type SessionClaims struct {
	Alias       string   `json:"alias,omitempty"`
	Authorities []string `json:"authorities"`
	Roles       []string `json:"roles,omitempty"`
	UserID      string   `json:"dingtalk_userid"`
	UnionID     string   `json:"dingtalk_unionid,omitempty"`
	AppKey      string   `json:"app_key"`
	jwt.RegisteredClaims
}

// JWTService handles session token creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey string, issuer string, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// GenerateSessionToken signs a token for the principal of a successful login.
// The subject is the local username.
func (s *JWTService) GenerateSessionToken(ctx context.Context, outcome *models.Outcome) (string, error) {
	if outcome == nil || outcome.Principal == nil {
		return "", dErrors.New(dErrors.CodeInternal, "login outcome has no principal")
	}
	if outcome.Principal.Username == "" {
		return "", dErrors.New(dErrors.CodeInternal, "principal has no username")
	}

	claims := SessionClaims{
		Alias:       outcome.Principal.Alias,
		Authorities: outcome.Principal.Authorities,
		Roles:       outcome.Principal.Roles,
	}
	if identity := outcome.Identity; identity != nil {
		claims.UserID = identity.UserID
		claims.UnionID = identity.UnionID
		claims.AppKey = identity.AppKey
	}

	now := requestcontext.Now(ctx)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   outcome.Principal.Username,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Audience:  []string{s.audience},
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
