package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedHeader reports an Authorization header that is not "Bearer <token>".
var ErrMalformedHeader = errors.New("authorization header must be Bearer <token>")

type claimsKey struct{}

// TokenFromRequest returns the bearer token from the Authorization header, or
// from the token query parameter when no header is sent. Browsers cannot set
// headers on a WebSocket handshake, hence the fallback.
func TokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if tok := r.URL.Query().Get("token"); tok != "" {
			return tok, nil
		}
		return "", ErrMissingToken
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrMalformedHeader
	}
	if tok = strings.TrimSpace(tok); tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

// Authenticate validates the token carried by r.
func (m *TokenManager) Authenticate(r *http.Request) (*Claims, error) {
	tok, err := TokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return m.Validate(tok)
}

// Middleware rejects requests without a valid spectator token and stores the
// claims of accepted ones in the request context.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Authenticate(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="spectate"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by Middleware, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}
