// Package middleware provides HTTP middleware for the onramp gateway.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vertexpay/onramp-gateway/internal/config"
	"github.com/vertexpay/onramp-gateway/internal/errors"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
)

// SupabaseUser represents an authenticated Supabase user.
type SupabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	Aud          string                 `json:"aud"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// contextKey is a custom type for context keys.
type contextKey string

// userContextKey is the context key for the authenticated user.
const userContextKey contextKey = "supabase_user"

// SupabaseAuthMiddleware validates Supabase-issued bearer tokens. Signatures
// are verified locally with the project JWT secret when configured; the
// Supabase Auth REST API is the fallback.
type SupabaseAuthMiddleware struct {
	cfg    config.SupabaseConfig
	logger *logging.Logger
	client *http.Client
}

// NewSupabaseAuthMiddleware creates the middleware.
func NewSupabaseAuthMiddleware(cfg config.SupabaseConfig, logger *logging.Logger) *SupabaseAuthMiddleware {
	return &SupabaseAuthMiddleware{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Middleware extracts and validates the bearer token when present. Requests
// without an Authorization header pass through unauthenticated; handlers
// behind RequireAuth reject them. An invalid or expired token is rejected
// here with 401 before any handler work.
func (m *SupabaseAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			httputil.WriteServiceError(w, r, errors.Unauthorized("invalid authorization header format"))
			return
		}
		token := parts[1]

		user, err := m.validateToken(r.Context(), token)
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("bearer token validation failed")
			httputil.WriteServiceError(w, r, errors.InvalidToken(err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, logging.UserIDKey, user.ID)
		if user.Role != "" {
			ctx = context.WithValue(ctx, logging.RoleKey, user.Role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that did not authenticate.
func (m *SupabaseAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			httputil.WriteServiceError(w, r, errors.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated users without the given role. The
// service_role always passes.
func (m *SupabaseAuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				httputil.WriteServiceError(w, r, errors.Unauthorized("authentication required"))
				return
			}
			if user.Role != role && user.Role != "service_role" {
				httputil.WriteServiceError(w, r, errors.Forbidden("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validateToken prefers local verification; the REST API is the fallback.
func (m *SupabaseAuthMiddleware) validateToken(ctx context.Context, token string) (*SupabaseUser, error) {
	if m.cfg.JWTSecret != "" {
		if user, err := m.validateTokenLocal(token); err == nil {
			return user, nil
		}
	}
	return m.validateTokenRemote(ctx, token)
}

// validateTokenLocal verifies the HMAC signature with the project JWT
// secret. Expiry is enforced by the parser: an exp claim in the past fails
// validation.
func (m *SupabaseAuthMiddleware) validateTokenLocal(token string) (*SupabaseUser, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt invalid")
	}

	return &SupabaseUser{
		ID:           getStringClaim(claims, "sub"),
		Email:        getStringClaim(claims, "email"),
		Role:         getStringClaim(claims, "role"),
		Aud:          getStringClaim(claims, "aud"),
		AppMetadata:  getMapClaim(claims, "app_metadata"),
		UserMetadata: getMapClaim(claims, "user_metadata"),
	}, nil
}

// validateTokenRemote validates the token via the Supabase Auth REST API.
func (m *SupabaseAuthMiddleware) validateTokenRemote(ctx context.Context, token string) (*SupabaseUser, error) {
	if m.cfg.URL == "" {
		return nil, fmt.Errorf("identity provider not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", m.cfg.AnonKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	var user SupabaseUser
	if err := httputil.DecodeResponse(resp, &user); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return &user, nil
}

// GetUserFromContext retrieves the authenticated user from context.
func GetUserFromContext(ctx context.Context) *SupabaseUser {
	user, ok := ctx.Value(userContextKey).(*SupabaseUser)
	if !ok {
		return nil
	}
	return user
}

func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getMapClaim(claims jwt.MapClaims, key string) map[string]interface{} {
	if val, ok := claims[key]; ok {
		if m, ok := val.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}
