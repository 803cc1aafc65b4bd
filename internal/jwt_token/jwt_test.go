package jwttoken

import (
	"context"
	"testing"
	"time"

	"dingauth/internal/federation/models"
	dErrors "dingauth/pkg/domain-errors"
	"dingauth/pkg/requestcontext"
	"dingauth/pkg/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
	time.Hour,
)

func testOutcome() *models.Outcome {
	user := testutil.NewLocalUser("zhangsan")
	return testutil.NewOutcome(models.NewExtendedPrincipal(user, testutil.Nick))
}

func Test_GenerateSessionToken(t *testing.T) {
	token, err := jwtService.GenerateSessionToken(context.Background(), testOutcome())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", claims.Subject)
	assert.Equal(t, testutil.Nick, claims.Alias)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Authorities)
	assert.Equal(t, []string{"member"}, claims.Roles)
	assert.Equal(t, testutil.UserID, claims.UserID)
	assert.Equal(t, testutil.UnionID, claims.UnionID)
	assert.Equal(t, testutil.AppKey, claims.AppKey)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateSessionToken_UsesRequestTime(t *testing.T) {
	issued := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
	ctx := requestcontext.WithTime(context.Background(), issued)

	token, err := jwtService.GenerateSessionToken(ctx, testOutcome())
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(issued))
}

func Test_GenerateSessionToken_RequiresPrincipal(t *testing.T) {
	_, err := jwtService.GenerateSessionToken(context.Background(), &models.Outcome{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = jwtService.GenerateSessionToken(context.Background(), nil)
	require.Error(t, err)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = jwtService.ValidateToken("")
	require.ErrorContains(t, err, "empty token")
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-2*time.Hour))
	token, err := jwtService.GenerateSessionToken(ctx, testOutcome())
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "token expired")
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	token, err := jwtService.GenerateSessionToken(context.Background(), testOutcome())
	require.NoError(t, err)

	otherKey := NewJWTService("other-key", "test-issuer", "test-audience", time.Hour)
	_, err = otherKey.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")

	otherIssuer := NewJWTService("test-signing-key", "someone-else", "test-audience", time.Hour)
	_, err = otherIssuer.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")

	otherAudience := NewJWTService("test-signing-key", "test-issuer", "other-audience", time.Hour)
	_, err = otherAudience.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := SessionClaims{
		Authorities: []string{"ROLE_USER"},
		UserID:      testutil.UserID,
		AppKey:      testutil.AppKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "zhangsan",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "test-issuer",
			Audience:  []string{"test-audience"},
			ID:        uuid.NewString(),
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{
			name:       "hs512 header rejected",
			signMethod: jwt.SigningMethodHS512,
			signKey:    []byte("test-signing-key"),
		},
		{
			name:       "alg none rejected",
			signMethod: jwt.SigningMethodNone,
			signKey:    jwt.UnsafeAllowNoneSignatureType,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := jwt.NewWithClaims(tt.signMethod, claims).SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = jwtService.ValidateToken(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_ExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing header", header: "", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "empty token", header: "Bearer   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_JWTServiceAdapter(t *testing.T) {
	token, err := jwtService.GenerateSessionToken(context.Background(), testOutcome())
	require.NoError(t, err)

	adapter := NewJWTServiceAdapter(jwtService)
	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", claims.Subject)
	assert.Equal(t, testutil.AppKey, claims.AppKey)
	assert.NotEmpty(t, claims.TokenID)

	_, err = adapter.ValidateToken("garbage")
	require.Error(t, err)
}
