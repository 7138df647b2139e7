package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Subject is the token subject of an admin session
const Subject = "admin"

const issuer = "kbo-pickem"

var (
	ErrNotConfigured   = errors.New("admin authentication not configured")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid or expired session")
)

// HashPassword returns the lowercase hex SHA-256 digest stored as ADMIN_PASSWORD_HASH
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Session is an issued admin session token
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate checks the operator password and issues signed admin sessions
type Gate struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewGate creates a gate. An empty hash leaves the gate unconfigured: every login fails with
// ErrNotConfigured.
func NewGate(passwordHash, secret string, ttl time.Duration) *Gate {
	return &Gate{
		passwordHash: []byte(strings.ToLower(strings.TrimSpace(passwordHash))),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Configured reports whether admin login is possible
func (g *Gate) Configured() bool {
	return len(g.passwordHash) > 0 && len(g.secret) > 0
}

// Login compares the password hash in constant time and issues a session on success
func (g *Gate) Login(password string) (*Session, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	submitted := []byte(HashPassword(password))
	if subtle.ConstantTimeCompare(submitted, g.passwordHash) != 1 {
		return nil, ErrInvalidPassword
	}

	now := g.now()
	expires := now.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// Validate checks a session token's signature, expiry and subject
func (g *Gate) Validate(tokenString string) (*jwt.RegisteredClaims, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
	}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// jwt/v4 validates exp against wall time; the injected clock also has to agree
	if !claims.VerifyExpiresAt(g.now(), true) {
		return nil, ErrInvalidToken
	}
	if claims.Subject != Subject || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
