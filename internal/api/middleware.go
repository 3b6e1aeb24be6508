package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillpath/interview-engine/internal/models"
)

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// AuthMiddleware verifies the platform-issued JWT on every request and
// places the caller's identity in the request context.
type AuthMiddleware struct {
	secret string
}

// NewAuthMiddleware creates new auth middleware with the shared HMAC secret
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// Authenticate verifies the Bearer token from the Authorization header
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.verify(r)
		if err != nil {
			slog.Warn("authentication failed", "error", err, "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}

		ctx := ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verify parses the token and extracts the caller's id and role
func (m *AuthMiddleware) verify(r *http.Request) (models.Identity, error) {
	var tokenStr string
	authz := r.Header.Get("Authorization")
	switch {
	case strings.HasPrefix(authz, "Bearer "):
		tokenStr = strings.TrimPrefix(authz, "Bearer ")
	case isWebSocketUpgrade(r) && r.URL.Query().Get("token") != "":
		// Browser WebSocket clients cannot set headers. The query
		// fallback is limited to upgrade requests so bearer tokens
		// stay out of REST request URLs and access logs.
		tokenStr = r.URL.Query().Get("token")
	default:
		return models.Identity{}, ErrMissingAuthHeader
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, ErrInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Identity{}, ErrInvalidClaims
	}

	// Role defaults to learner when the token carries none
	role := models.RoleLearner
	if claimed, ok := claims["role"].(string); ok && claimed != "" {
		role = models.Role(claimed)
	}

	return models.Identity{UserID: sub, Role: role}, nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// RequireRole returns middleware that restricts a route to one role
// (admins always pass)
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}

			if identity.Role != role && !identity.IsAdmin() {
				slog.Warn("role denied",
					"user_id", identity.UserID,
					"required", role,
					"has", identity.Role,
				)
				respondError(w, http.StatusForbidden, "forbidden", "insufficient role for this operation")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
