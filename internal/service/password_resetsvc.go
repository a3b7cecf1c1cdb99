package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusboard/internal/auth"
	"campusboard/internal/domain"
)

// ResetNotifier delivers the raw reset token to the user. A send failure
// must be reported so the caller can roll back the issued token pair.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

type PasswordResetService struct {
	Users    CredentialsStore
	Tokens   *auth.TokenCodec
	Notifier ResetNotifier
	TokenTTL time.Duration
	Now      func() time.Time
}

func (s *PasswordResetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PasswordResetService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return 10 * time.Minute
}

// ForgotPassword issues a one-time reset token for the account behind email
// and mails a link embedding the raw token. Only the token's hash is stored.
// If the mail dispatch fails, the just-issued pair is cleared again: a valid
// token the user never received must not stay live. The clear is keyed on
// the issued hash so a concurrent newer pair is never clobbered.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.NewValidationError(map[string]string{"email": "required"})
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, tokenHash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.tokenTTL())
	if err := s.Users.SetResetToken(ctx, u.ID, tokenHash, expiresAt); err != nil {
		return err
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + raw
	if err := s.Notifier.SendPasswordReset(ctx, u.Email, resetURL); err != nil {
		if clearErr := s.Users.ClearResetToken(ctx, u.ID, tokenHash); clearErr != nil {
			return errors.Join(domain.ErrNotificationFailed, err, clearErr)
		}
		return errors.Join(domain.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword consumes a raw reset token and stores the new password. The
// final store write is conditional on the token hash still being present
// and unexpired, so a token satisfies the flow at most once even under
// concurrent requests. A fresh session token is issued on success.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword, newPasswordConfirm string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", domain.ErrResetTokenInvalid
	}

	tokenHash := auth.HashResetToken(rawToken)
	if _, err := s.Users.GetUserByResetTokenHash(ctx, tokenHash, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}

	if err := validateNewPassword(newPassword, newPasswordConfirm); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	u, err := s.Users.ResetPasswordByToken(ctx, tokenHash, hash, s.now())
	if err != nil {
		// The pair was consumed or overwritten between lookup and write.
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}

	return s.Tokens.Issue(u.ID)
}
