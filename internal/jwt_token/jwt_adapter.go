package jwttoken

import (
	"dingauth/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *SessionClaims) *auth.Claims {
	return &auth.Claims{
		Subject:     claims.Subject,
		Alias:       claims.Alias,
		Authorities: claims.Authorities,
		Roles:       claims.Roles,
		UserID:      claims.UserID,
		UnionID:     claims.UnionID,
		AppKey:      claims.AppKey,
		TokenID:     claims.ID,
	}
}

// JWTServiceAdapter lets the session middleware validate tokens with JWTService.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
