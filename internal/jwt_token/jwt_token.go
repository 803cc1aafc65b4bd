package jwttoken

import (
	"strings"

	dErrors "dingauth/pkg/domain-errors"
)

const bearerPrefix = "Bearer "

// ExtractBearerToken returns the token from an Authorization header value.
func ExtractBearerToken(authHeader string) (string, error) {
	token, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}
	return token, nil
}
