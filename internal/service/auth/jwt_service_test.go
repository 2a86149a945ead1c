package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/walletstats/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := newHMACJWTService(testSecret, time.Hour, fixedClock(fixedTime))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		token, err := svc.GenerateToken(context.Background(), "refreshctl")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "refreshctl", claims.Subject)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("blank subject", func(t *testing.T) {
		t.Parallel()

		_, err := svc.GenerateToken(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrEmptySubject)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := newHMACJWTService(testSecret, time.Hour, fixedClock(fixedTime))
	require.NoError(t, err)
	token, err := issuer.GenerateToken(context.Background(), "operator")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		now     time.Time
		token   string
		wantErr error
	}{
		{
			name:   "valid token",
			secret: testSecret,
			now:    fixedTime.Add(30 * time.Minute),
			token:  token,
		},
		{
			name:    "expired token",
			secret:  testSecret,
			now:     fixedTime.Add(2 * time.Hour),
			token:   token,
			wantErr: ErrExpiredToken,
		},
		{
			name:   "within clock skew",
			secret: testSecret,
			now:    fixedTime.Add(time.Hour + time.Minute),
			token:  token,
		},
		{
			name:    "not yet valid",
			secret:  testSecret,
			now:     fixedTime.Add(-10 * time.Minute),
			token:   token,
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:    "wrong secret",
			secret:  "wrong-secret-that-is-long-enough-for-testing",
			now:     fixedTime,
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			secret:  testSecret,
			now:     fixedTime,
			token:   "not-a-jwt",
			wantErr: ErrInvalidToken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, err := newHMACJWTService(tc.secret, time.Hour, fixedClock(tc.now))
			require.NoError(t, err)

			claims, err := svc.ValidateToken(context.Background(), tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "operator", claims.Subject)
		})
	}
}

func TestValidateToken_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := newHMACJWTService(testSecret, time.Hour, fixedClock(now))
	require.NoError(t, err)

	sign := func(claims jwtCustomClaims, method jwt.SigningMethod) string {
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return signed
	}
	registered := jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	t.Run("refresh token type", func(t *testing.T) {
		token := sign(jwtCustomClaims{TokenType: "refresh", RegisteredClaims: registered}, jwt.SigningMethodHS256)
		_, err := svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		token := sign(jwtCustomClaims{TokenType: tokenTypeAccess, RegisteredClaims: registered}, jwt.SigningMethodHS512)
		_, err := svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
