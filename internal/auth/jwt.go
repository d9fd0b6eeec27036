// Package auth issues and checks the signed tokens that let spectators watch
// a running match.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// DefaultTokenTTL is the lifetime of tokens issued without an explicit one.
const DefaultTokenTTL = 12 * time.Hour

// Claims holds the spectator token payload. An empty MatchID grants access
// to every match.
type Claims struct {
	Viewer  string `json:"viewer"`
	MatchID string `json:"match_id,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the token may watch matchID.
func (c *Claims) Allows(matchID string) bool {
	return c.MatchID == "" || c.MatchID == matchID
}

// TokenManager handles token creation and validation.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: DefaultTokenTTL}
}

// WithTTL returns a copy of m that issues tokens valid for ttl.
func (m *TokenManager) WithTTL(ttl time.Duration) *TokenManager {
	return &TokenManager{secret: m.secret, ttl: ttl}
}

// Issue creates a spectator token for viewer, optionally scoped to one match.
func (m *TokenManager) Issue(viewer, matchID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Viewer:  viewer,
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   viewer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and validates a token string, returning the claims.
func (m *TokenManager) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
