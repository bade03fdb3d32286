package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"foliodb/pkg/logger"
)

type ctxUserKey struct{}

// RequireSession validates the bearer token (or session cookie) and injects
// the resolved user email into the request context. Unauthenticated
// requests get a 401 JSON body.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		u, err := s.ValidateSession(token)
		if err != nil || u == nil {
			logger.Warn("unauthenticated_request",
				"method", r.Method, "path", r.URL.Path,
				"remote", r.RemoteAddr, "headers", logger.SafeHeaders(r))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, u.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimit throttles by client IP using the shared limiter pool. Intended
// for the login endpoint.
func (s *Service) RateLimit(pool *LimiterPool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !pool.Allow(clientIP(r)) {
			logger.Warn("rate_limited", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated email or empty string.
func UserFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxUserKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie("foliodb_session"); err == nil {
		return c.Value
	}
	return ""
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
