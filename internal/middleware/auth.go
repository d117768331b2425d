package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/services"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// Auth validates the bearer token and stores the principal id from its
// subject in the request context. Token issuance lives elsewhere.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", "unauthorized", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				services.SendErrorResponse(w, "Invalid authorization header format", "unauthorized", http.StatusUnauthorized, nil)
				return
			}

			ownerID, err := validateToken(parts[1], secret)
			if err != nil {
				services.SendErrorResponse(w, "Invalid token", "unauthorized", http.StatusUnauthorized, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func validateToken(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}
	if subject == "" {
		// older tokens carry the principal as user_id
		if v, ok := claims["user_id"]; ok {
			subject = fmt.Sprintf("%v", v)
		}
	}
	return uuid.Parse(subject)
}

// WithOwnerID returns a copy of ctx carrying the authenticated principal.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// OwnerIDFromContext returns the principal set by Auth.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
