package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	password = "mySecurePassword123"
	secret   = "test-session-secret"
)

func TestHashPassword(t *testing.T) {
	// sha256("password")
	assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", HashPassword("password"))
	assert.Len(t, HashPassword(""), 64)
}

func TestGate_LoginAndValidate(t *testing.T) {
	gate := NewGate(strings.ToUpper(HashPassword(password)), secret, time.Hour)
	require.True(t, gate.Configured())

	session, err := gate.Login(password)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 2*time.Second)

	claims, err := gate.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, Subject, claims.Subject)
}

func TestGate_WrongPassword(t *testing.T) {
	gate := NewGate(HashPassword(password), secret, time.Hour)

	_, err := gate.Login("guess")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestGate_NotConfigured(t *testing.T) {
	gate := NewGate("", secret, time.Hour)
	assert.False(t, gate.Configured())

	_, err := gate.Login(password)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = gate.Validate("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGate_RejectsBadTokens(t *testing.T) {
	gate := NewGate(HashPassword(password), secret, time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := gate.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewGate(HashPassword(password), "other-secret", time.Hour)
		session, err := other.Login(password)
		require.NoError(t, err)

		_, err = gate.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		session, err := gate.Login(password)
		require.NoError(t, err)

		gate.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { gate.now = time.Now }()

		_, err = gate.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong subject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "member",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = gate.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: Subject, Issuer: issuer}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = gate.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
