package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/config"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
		Issuer:          config.DefaultJWTIssuer,
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken("hr-portal")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hr-portal", claims.Client)
	assert.Equal(t, "hr-portal", claims.Subject)
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_GenerateToken_RequiresClient(t *testing.T) {
	service := setupTestJWTService(t, 24)
	_, err := service.GenerateToken("   ")
	assert.Error(t, err)
}

func signed(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestJWTService(t, 24)
	now := time.Now()
	registered := func(issuer string, expires time.Time) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		}
	}

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{
			name:    "empty",
			token:   "",
			wantErr: "token string is empty",
		},
		{
			name:    "malformed",
			token:   "not.a.jwt",
			wantErr: "malformed token",
		},
		{
			name:    "expired",
			token:   signed(t, &Claims{Client: "cli", RegisteredClaims: registered(config.DefaultJWTIssuer, now.Add(-time.Hour))}, jwt.SigningMethodHS256, []byte(testSecret)),
			wantErr: "token expired",
		},
		{
			name:    "wrong secret",
			token:   signed(t, &Claims{Client: "cli", RegisteredClaims: registered(config.DefaultJWTIssuer, now.Add(time.Hour))}, jwt.SigningMethodHS256, []byte("another-secret-that-is-long-enough")),
			wantErr: "invalid token signature",
		},
		{
			name:    "wrong issuer",
			token:   signed(t, &Claims{Client: "cli", RegisteredClaims: registered("someone-else", now.Add(time.Hour))}, jwt.SigningMethodHS256, []byte(testSecret)),
			wantErr: "failed to parse token",
		},
		{
			name:    "other algorithm",
			token:   signed(t, &Claims{Client: "cli", RegisteredClaims: registered(config.DefaultJWTIssuer, now.Add(time.Hour))}, jwt.SigningMethodHS512, []byte(testSecret)),
			wantErr: "invalid token signature",
		},
		{
			name:    "no client",
			token:   signed(t, &Claims{RegisteredClaims: registered(config.DefaultJWTIssuer, now.Add(time.Hour))}, jwt.SigningMethodHS256, []byte(testSecret)),
			wantErr: "token has no client",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken("cli")
	require.NoError(t, err)

	claims, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.GetClient())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}
