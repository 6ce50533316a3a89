package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domain "folio/pkg/domain"
)

// SessionClaims are the claims carried by the app's login token. The subject
// is the user id; nominee routes need nothing else from the session.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Authenticator validates login tokens and resolves the calling user.
type Authenticator struct {
	signingKey []byte
}

// NewAuthenticator creates an Authenticator with an HS256 signing key.
func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and validates a session token, returning the user id
// from its subject claim.
func (a *Authenticator) ValidateToken(tokenString string) (domain.UserID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.signingKey, nil
	})
	if err != nil {
		return domain.UserID{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return domain.UserID{}, fmt.Errorf("invalid token claims")
	}
	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	return userID, nil
}

type contextKeyUserID struct{}

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(ctx context.Context) (domain.UserID, bool) {
	userID, ok := ctx.Value(contextKeyUserID{}).(domain.UserID)
	return userID, ok
}

// RequireAuth rejects requests without a valid Bearer session token and
// stores the resolved user id in the request context.
func RequireAuth(authenticator *Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			userID, err := authenticator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, contextKeyUserID{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
