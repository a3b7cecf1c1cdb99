package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"campusboard/internal/domain"
	"campusboard/internal/service"
)

type authCtxKey int

const authUserKey authCtxKey = iota

// requireAuth resolves the bearer token to an active user before the handler
// runs. Every failure collapses to the same unauthenticated response.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			WriteDomainError(w, domain.ErrUnauthenticated)
			return
		}

		u, err := a.authSvc.UserForToken(r.Context(), raw)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireRole wraps a handler behind a role check. The handler is not invoked
// at all unless the authenticated user carries one of the allowed roles.
func (a *api) requireRole(next http.HandlerFunc, allowed ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			WriteDomainError(w, domain.ErrUnauthenticated)
			return
		}
		if err := service.Authorize(u, allowed...); err != nil {
			WriteDomainError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
