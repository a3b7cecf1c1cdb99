package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusboard/internal/auth"
	"campusboard/internal/domain"
)

func TestAuthLoginIssuesToken(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := &stubCredentialsStore{
		t: t,
		getByEmailFunc: func(_ context.Context, email string) (domain.UserWithSecrets, error) {
			if email != "asha@example.edu" {
				t.Fatalf("unexpected email: %s", email)
			}
			return domain.UserWithSecrets{
				User:         domain.User{ID: "user-1", Active: true},
				PasswordHash: hash,
			}, nil
		},
	}
	api, codec := newTestAPI(t, store)
	api.limiter = newRateLimiter(0, 0)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"Asha@Example.edu","password":"correct horse"}`))
	rr := httptest.NewRecorder()

	api.handleAuthLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rr.Code, rr.Body.String())
	}
	var resp tokenResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := codec.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected subject: %s", claims.UserID)
	}
}

func TestAuthLoginCollapsesFailures(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := &stubCredentialsStore{
		t: t,
		getByEmailFunc: func(_ context.Context, email string) (domain.UserWithSecrets, error) {
			if email == "asha@example.edu" {
				return domain.UserWithSecrets{
					User:         domain.User{ID: "user-1", Active: true},
					PasswordHash: hash,
				}, nil
			}
			return domain.UserWithSecrets{}, domain.ErrNotFound
		},
	}
	api, _ := newTestAPI(t, store)
	api.limiter = newRateLimiter(0, 0)

	for _, body := range []string{
		`{"email":"asha@example.edu","password":"wrong"}`,
		`{"email":"nobody@example.edu","password":"correct horse"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		api.handleAuthLogin(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: unexpected status %d", body, rr.Code)
		}
		var resp errorEnvelope
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error.Code != "invalid_credentials" {
			t.Fatalf("body %s: unexpected error code %s", body, resp.Error.Code)
		}
	}
}

func TestAuthLoginRateLimited(t *testing.T) {
	api, _ := newTestAPI(t, &stubCredentialsStore{
		t: t,
		getByEmailFunc: func(context.Context, string) (domain.UserWithSecrets, error) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		},
	})
	api.limiter = newRateLimiter(0, 0)

	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
			strings.NewReader(`{"email":"asha@example.edu","password":"guess"}`))
		req.RemoteAddr = "203.0.113.7:5000"
		last = httptest.NewRecorder()
		api.handleAuthLogin(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", last.Code)
	}
}
