package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campusboard/internal/domain"
	"campusboard/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth      *service.AuthService
	Reset     *service.PasswordResetService
	Users     *service.UsersService
	Content   *service.ContentService
	PublicURL *url.URL

	RateLimitWindow time.Duration
	RateLimitMax    int
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:     logger,
		isProd:     opts.IsProd,
		dbPing:     opts.DBPing,
		authSvc:    opts.Auth,
		resetSvc:   opts.Reset,
		usersSvc:   opts.Users,
		contentSvc: opts.Content,
		publicURL:  opts.PublicURL,
		limiter:    newRateLimiter(opts.RateLimitWindow, opts.RateLimitMax),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.authSvc == nil {
		apiMux.HandleFunc("POST /v1/auth/login", handleNotImplemented)
		apiMux.HandleFunc("PATCH /v1/auth/updatepassword", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
		apiMux.HandleFunc("PATCH /v1/auth/updatepassword", api.requireAuth(api.handleAuthUpdatePassword))

		if api.resetSvc != nil {
			apiMux.HandleFunc("POST /v1/auth/forgotpassword", api.handleAuthForgot)
			apiMux.HandleFunc("PATCH /v1/auth/resetpassword/{token}", api.handleAuthReset)
		}

		if api.usersSvc != nil {
			apiMux.HandleFunc("GET /v1/users", api.handleUsersList)
			apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))
			apiMux.HandleFunc("PATCH /v1/users/me", api.requireAuth(api.handleUsersMeUpdate))
			apiMux.HandleFunc("DELETE /v1/users/me", api.requireAuth(api.handleUsersMeDelete))
			apiMux.HandleFunc("GET /v1/users/{id}", api.handleUsersGet)
			apiMux.HandleFunc("POST /v1/users", api.requireAuth(api.requireRole(api.handleUsersCreate, domain.RoleAdmin)))
			apiMux.HandleFunc("PUT /v1/users/{id}", api.requireAuth(api.requireRole(api.handleUsersUpdate, domain.RoleAdmin)))
			apiMux.HandleFunc("DELETE /v1/users/{id}", api.requireAuth(api.requireRole(api.handleUsersDelete, domain.RoleAdmin)))
			apiMux.HandleFunc("POST /v1/users/{id}/reactivate", api.requireAuth(api.requireRole(api.handleUsersReactivate, domain.RoleAdmin)))
		}

		if api.contentSvc != nil {
			apiMux.HandleFunc("GET /v1/events", api.handleEventsList)
			apiMux.HandleFunc("GET /v1/events/{id}", api.handleEventsGet)
			apiMux.HandleFunc("POST /v1/events", api.requireAuth(api.requireRole(api.handleEventsCreate, domain.RoleAdmin)))
			apiMux.HandleFunc("PUT /v1/events/{id}", api.requireAuth(api.requireRole(api.handleEventsUpdate, domain.RoleAdmin)))
			apiMux.HandleFunc("DELETE /v1/events/{id}", api.requireAuth(api.requireRole(api.handleEventsDelete, domain.RoleAdmin)))

			apiMux.HandleFunc("GET /v1/updates", api.handleUpdatesList)
			apiMux.HandleFunc("GET /v1/updates/{id}", api.handleUpdatesGet)
			apiMux.HandleFunc("POST /v1/updates", api.requireAuth(api.requireRole(api.handleUpdatesCreate, domain.RoleAdmin)))
			apiMux.HandleFunc("PUT /v1/updates/{id}", api.requireAuth(api.requireRole(api.handleUpdatesUpdate, domain.RoleAdmin)))
			apiMux.HandleFunc("DELETE /v1/updates/{id}", api.requireAuth(api.requireRole(api.handleUpdatesDelete, domain.RoleAdmin)))
		}
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			// The mux reports no pattern both for unknown paths and for
			// method mismatches; retry with the other methods to tell them apart.
			if allowed := allowedMethods(apiMux, r); len(allowed) > 0 {
				w.Header().Set("Allow", strings.Join(allowed, ", "))
				WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
				return
			}
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

func allowedMethods(mux *http.ServeMux, r *http.Request) []string {
	var out []string
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if m == r.Method {
			continue
		}
		alt := r.Clone(r.Context())
		alt.Method = m
		if _, pattern := mux.Handler(alt); pattern != "" {
			out = append(out, m)
		}
	}
	return out
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc    *service.AuthService
	resetSvc   *service.PasswordResetService
	usersSvc   *service.UsersService
	contentSvc *service.ContentService
	publicURL  *url.URL

	limiter *rateLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
