package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusboard/internal/domain"
	"campusboard/internal/service"
)

func TestUsersMeUpdateRejectsPasswordFields(t *testing.T) {
	api := &api{usersSvc: &service.UsersService{}}

	req := httptest.NewRequest(http.MethodPatch, "/v1/users/me",
		strings.NewReader(`{"name":"Asha","password":"newpass123"}`))
	req = req.WithContext(context.WithValue(req.Context(), authUserKey, domain.User{ID: "user-1"}))
	rr := httptest.NewRecorder()

	api.handleUsersMeUpdate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var resp errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Fatalf("unexpected error code: %s", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Fields["password"], "/v1/auth/updatepassword") {
		t.Fatalf("error should point at the password route: %+v", resp.Error.Fields)
	}
}
