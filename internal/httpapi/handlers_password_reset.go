package httpapi

import (
	"errors"
	"net/http"
	"time"

	"campusboard/internal/domain"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (a *api) handleAuthForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.limiter.Allow("forgot:ip:"+ip, now) || !a.limiter.Allow("forgot:email:"+email, now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	err := a.resetSvc.ForgotPassword(r.Context(), email, a.resetLinkBase(r))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		if errors.Is(err, domain.ErrNotificationFailed) {
			a.logger.Error("send reset email failed", "err", err)
		}
		WriteDomainError(w, err)
		return
	}

	// Unknown addresses get the same answer as known ones.
	WriteJSON(w, http.StatusOK, messageResponse{Message: "if the account exists, a reset link has been sent"})
}

func (a *api) handleAuthReset(w http.ResponseWriter, r *http.Request) {
	rawToken := r.PathValue("token")

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	token, err := a.resetSvc.ResetPassword(r.Context(), rawToken, req.Password, req.PasswordConfirm)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (a *api) resetLinkBase(r *http.Request) string {
	if a.publicURL != nil {
		u := *a.publicURL
		u.Path = "/v1/auth/resetpassword"
		return u.String()
	}
	scheme := "http"
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host + "/v1/auth/resetpassword"
}
