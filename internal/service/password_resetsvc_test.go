package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campusboard/internal/auth"
	"campusboard/internal/domain"
)

func TestForgotPassword(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	var issuedHash string
	users := &stubCredentialsStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithSecrets, error) {
			if email != "priya@college.edu" {
				t.Fatalf("unexpected email lookup: %s", email)
			}
			return domain.UserWithSecrets{User: domain.User{ID: "user-2", Email: email, Active: true}}, nil
		},
		setResetTokenFunc: func(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
			if userID != "user-2" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if !expiresAt.Equal(now.Add(10 * time.Minute)) {
				t.Fatalf("unexpected expiry: %s", expiresAt)
			}
			issuedHash = tokenHash
			return nil
		},
	}

	var sentURL, sentTo string
	notifier := &stubNotifier{
		t: t,
		sendFunc: func(_ context.Context, toEmail, resetURL string) error {
			sentTo = toEmail
			sentURL = resetURL
			return nil
		},
	}

	svc := &PasswordResetService{
		Users:    users,
		Tokens:   testTokens(now),
		Notifier: notifier,
		TokenTTL: 10 * time.Minute,
		Now:      func() time.Time { return now },
	}

	if err := svc.ForgotPassword(context.Background(), "Priya@College.edu", "https://campusboard.example.edu/resetpassword"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	if sentTo != "priya@college.edu" {
		t.Fatalf("unexpected recipient: %s", sentTo)
	}
	raw := sentURL[strings.LastIndex(sentURL, "/")+1:]
	if raw == "" {
		t.Fatalf("reset URL carries no token: %s", sentURL)
	}
	// Only the hash of the mailed token is persisted.
	if auth.HashResetToken(raw) != issuedHash {
		t.Fatalf("stored hash does not match mailed token")
	}
	if strings.Contains(sentURL, issuedHash) {
		t.Fatalf("reset URL leaks the stored hash")
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	users := &stubCredentialsStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithSecrets, error) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		},
	}
	svc := &PasswordResetService{Users: users, Notifier: &stubNotifier{t: t}}

	err := svc.ForgotPassword(context.Background(), "nobody@college.edu", "https://x/reset")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForgotPasswordNotifyFailureClearsPair(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	var issuedHash, clearedHash string
	users := &stubCredentialsStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithSecrets, error) {
			return domain.UserWithSecrets{User: domain.User{ID: "user-2", Email: email, Active: true}}, nil
		},
		setResetTokenFunc: func(_ context.Context, _, tokenHash string, _ time.Time) error {
			issuedHash = tokenHash
			return nil
		},
		clearResetTokenFunc: func(_ context.Context, userID, tokenHash string) error {
			if userID != "user-2" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			clearedHash = tokenHash
			return nil
		},
	}
	notifier := &stubNotifier{
		t:        t,
		sendFunc: func(context.Context, string, string) error { return errors.New("smtp: connection refused") },
	}

	svc := &PasswordResetService{
		Users:    users,
		Notifier: notifier,
		Now:      func() time.Time { return now },
	}

	err := svc.ForgotPassword(context.Background(), "priya@college.edu", "https://x/reset")
	if !errors.Is(err, domain.ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed, got %v", err)
	}
	if clearedHash == "" || clearedHash != issuedHash {
		t.Fatalf("expected compensating clear of the issued pair (issued %q, cleared %q)", issuedHash, clearedHash)
	}
}

func TestResetPassword(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	raw, tokenHash, err := auth.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}

	consumed := false
	users := &stubCredentialsStore{
		t: t,
		getUserByResetTokenHashFunc: func(_ context.Context, hash string, when time.Time) (domain.UserWithSecrets, error) {
			if hash != tokenHash {
				return domain.UserWithSecrets{}, domain.ErrNotFound
			}
			if consumed {
				return domain.UserWithSecrets{}, domain.ErrNotFound
			}
			if !when.Equal(now) {
				t.Fatalf("unexpected lookup time: %s", when)
			}
			return domain.UserWithSecrets{User: domain.User{ID: "user-2", Active: true}}, nil
		},
		resetPasswordByTokenFunc: func(_ context.Context, hash, passwordHash string, _ time.Time) (domain.User, error) {
			if hash != tokenHash || consumed {
				return domain.User{}, domain.ErrNotFound
			}
			if !auth.VerifyPassword(passwordHash, "newpass123") {
				t.Fatalf("stored hash does not verify the new password")
			}
			consumed = true
			return domain.User{ID: "user-2", Active: true}, nil
		},
	}

	svc := &PasswordResetService{
		Users:  users,
		Tokens: testTokens(now),
		Now:    func() time.Time { return now },
	}

	tok, err := svc.ResetPassword(context.Background(), raw, "newpass123", "newpass123")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	claims, err := svc.Tokens.Verify(tok)
	if err != nil || claims.UserID != "user-2" {
		t.Fatalf("expected fresh token for user-2, got %q (%v)", tok, err)
	}

	// Single use: the same raw token must not work twice.
	if _, err := svc.ResetPassword(context.Background(), raw, "another123", "another123"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestResetPasswordInvalidOrExpired(t *testing.T) {
	users := &stubCredentialsStore{
		t: t,
		// The store lookup already excludes expired pairs, so both unknown
		// and expired tokens surface as not found.
		getUserByResetTokenHashFunc: func(context.Context, string, time.Time) (domain.UserWithSecrets, error) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		},
	}
	svc := &PasswordResetService{Users: users, Tokens: testTokens(time.Now())}

	if _, err := svc.ResetPassword(context.Background(), "bogus-token", "newpass123", "newpass123"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
	if _, err := svc.ResetPassword(context.Background(), "", "newpass123", "newpass123"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid for empty token, got %v", err)
	}
}

func TestResetPasswordValidationLeavesStateAlone(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	raw, tokenHash, err := auth.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}

	users := &stubCredentialsStore{
		t: t,
		getUserByResetTokenHashFunc: func(_ context.Context, hash string, _ time.Time) (domain.UserWithSecrets, error) {
			if hash != tokenHash {
				return domain.UserWithSecrets{}, domain.ErrNotFound
			}
			return domain.UserWithSecrets{User: domain.User{ID: "user-2", Active: true}}, nil
		},
		// resetPasswordByTokenFunc deliberately unset: a validation failure
		// must not reach the store write.
	}
	svc := &PasswordResetService{Users: users, Tokens: testTokens(now), Now: func() time.Time { return now }}

	if _, err := svc.ResetPassword(context.Background(), raw, "newpass123", "different123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.ResetPassword(context.Background(), raw, "short", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
