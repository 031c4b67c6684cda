package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"recall-backend/pkg/auth"

	"go.uber.org/zap"
)

// AuthConfig configures the authentication middleware.
type AuthConfig struct {
	// APIKey enables static key authentication. Both "Bearer <key>" and
	// "Token <key>" authorization schemes are accepted.
	APIKey string

	// JWTSecret enables JWT bearer authentication as an alternative to
	// the static key. When both are set, a token that is not the static
	// key is validated as a JWT.
	JWTSecret string
	JWTIssuer string

	// RequestsPerMinute bounds per-IP request rates. Zero disables rate
	// limiting.
	RequestsPerMinute int
}

// Authenticate creates the authentication middleware. With neither an
// API key nor a JWT secret configured, authentication is disabled and
// requests pass through (development mode).
func Authenticate(cfg AuthConfig, logger *zap.Logger) func(next http.Handler) http.Handler {
	var validator *auth.JWTValidator
	if cfg.JWTSecret != "" {
		var err error
		validator, err = auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			logger.Error("failed to build JWT validator, JWT auth disabled", zap.Error(err))
		}
	}

	var ipLimiter *auth.IPRateLimiter
	if cfg.RequestsPerMinute > 0 {
		ipLimiter = auth.NewIPRateLimiter(cfg.RequestsPerMinute)
	}

	authDisabled := cfg.APIKey == "" && validator == nil

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ipLimiter != nil {
				allowed, _ := ipLimiter.Allow(r.Context(), clientIP(r))
				if !allowed {
					respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
					return
				}
			}

			if authDisabled {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token, ok := extractToken(authHeader)
			if !ok {
				respondError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer token' or 'Token token'")
				return
			}

			if cfg.APIKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIKey)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if validator != nil {
				claims, err := validator.ValidateToken(token)
				if err == nil {
					ctx := auth.SetPrincipal(r.Context(), &auth.Principal{
						UserID: claims.UserID,
						Email:  claims.Email,
						Roles:  claims.Roles,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				logger.Debug("JWT validation failed",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
			}

			respondError(w, http.StatusUnauthorized, "Invalid API Key")
		})
	}
}

// extractToken accepts the two authorization schemes the API supports.
func extractToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "bearer" && scheme != "token" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// clientIP extracts the client IP address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
