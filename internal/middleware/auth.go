package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OwnerIDKey is the context key under which the authenticated owner id
// is stored.
const OwnerIDKey = contextKey("owner-id")

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// ownerClaims are the claims the external auth service puts into the
// access tokens it issues. This service only verifies them; it never
// issues tokens or checks credentials.
type ownerClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// OwnerAuth verifies bearer access tokens from the auth collaborator
// and injects the authenticated owner id into the request context.
type OwnerAuth struct {
	secret []byte
	leeway time.Duration
}

// NewOwnerAuth creates an OwnerAuth verifying HS256 signatures with the
// shared secret.
func NewOwnerAuth(secret string) *OwnerAuth {
	return &OwnerAuth{
		secret: []byte(secret),
		leeway: 30 * time.Second,
	}
}

// RequireOwner rejects requests without a valid bearer token. On
// success the owner id is available via GetOwnerID.
func (m *OwnerAuth) RequireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		ownerID, err := m.verify(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *OwnerAuth) verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ownerClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		jwt.WithLeeway(m.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*ownerClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// GetOwnerID extracts the authenticated owner id from the context.
// Returns empty string if the request did not pass RequireOwner.
func GetOwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(OwnerIDKey).(string); ok {
		return id
	}
	return ""
}
