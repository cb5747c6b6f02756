package auth

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

const (
	secret      = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestService(t *testing.T, key string, at time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(key), func() time.Time { return at })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig("short"))
	assert.Error(t, err)

	cfg := testAuthConfig(secret)
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)

	svc, err := NewJWTService(testAuthConfig(secret))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, secret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	other, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	otherClaims, err := svc.ValidateToken(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "token ids must be unique")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issuer := newTestService(t, secret, fixedTime)
	access, err := issuer.GenerateToken(context.Background(), 7)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), 7)
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *hmacJWTService
		token     string
		wantErr   error
	}{
		{"valid token", issuer, access, nil},
		{"within clock skew", newTestService(t, secret, fixedTime.Add(time.Hour+time.Minute)), access, nil},
		{"expired token", newTestService(t, secret, fixedTime.Add(2*time.Hour)), access, ErrExpiredToken},
		{"invalid signature", newTestService(t, wrongSecret, fixedTime), access, ErrInvalidToken},
		{"malformed token", issuer, "this.is.not.a.valid.jwt.token", ErrInvalidToken},
		{"refresh token used as access", issuer, refresh, ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tt.validator.ValidateToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	issuer := newTestService(t, secret, fixedTime)
	access, err := issuer.GenerateToken(context.Background(), 9)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), 9)
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *hmacJWTService
		token     string
		wantErr   error
	}{
		{"valid refresh token", issuer, refresh, nil},
		{"outlives access lifetime", newTestService(t, secret, fixedTime.Add(2*time.Hour)), refresh, nil},
		{"expired refresh token", newTestService(t, secret, fixedTime.Add(25*time.Hour)), refresh, ErrExpiredRefreshToken},
		{"invalid signature", newTestService(t, wrongSecret, fixedTime), refresh, ErrInvalidRefreshToken},
		{"garbage", issuer, "abc", ErrInvalidRefreshToken},
		{"access token used as refresh", issuer, access, ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tt.validator.ValidateRefreshToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), claims.UserID)
			assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		})
	}
}
