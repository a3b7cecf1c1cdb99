package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusboard/internal/domain"
)

type stubCredentialsStore struct {
	t *testing.T

	getUserByEmailFunc          func(context.Context, string) (domain.UserWithSecrets, error)
	getUserByIDFunc             func(context.Context, string) (domain.User, error)
	getUserByIDWithSecretsFunc  func(context.Context, string) (domain.UserWithSecrets, error)
	getUserByResetTokenHashFunc func(context.Context, string, time.Time) (domain.UserWithSecrets, error)
	setResetTokenFunc           func(context.Context, string, string, time.Time) error
	clearResetTokenFunc         func(context.Context, string, string) error
	resetPasswordByTokenFunc    func(context.Context, string, string, time.Time) (domain.User, error)
	setPasswordFunc             func(context.Context, string, string, time.Time) error
}

func (s *stubCredentialsStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithSecrets{}, errors.New("unexpected call")
}

func (s *stubCredentialsStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubCredentialsStore) GetUserByIDWithSecrets(ctx context.Context, id string) (domain.UserWithSecrets, error) {
	if s.getUserByIDWithSecretsFunc != nil {
		return s.getUserByIDWithSecretsFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByIDWithSecrets called unexpectedly")
	return domain.UserWithSecrets{}, errors.New("unexpected call")
}

func (s *stubCredentialsStore) GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.UserWithSecrets, error) {
	if s.getUserByResetTokenHashFunc != nil {
		return s.getUserByResetTokenHashFunc(ctx, tokenHash, now)
	}
	s.t.Fatalf("GetUserByResetTokenHash called unexpectedly")
	return domain.UserWithSecrets{}, errors.New("unexpected call")
}

func (s *stubCredentialsStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if s.setResetTokenFunc != nil {
		return s.setResetTokenFunc(ctx, userID, tokenHash, expiresAt)
	}
	s.t.Fatalf("SetResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubCredentialsStore) ClearResetToken(ctx context.Context, userID, tokenHash string) error {
	if s.clearResetTokenFunc != nil {
		return s.clearResetTokenFunc(ctx, userID, tokenHash)
	}
	s.t.Fatalf("ClearResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubCredentialsStore) ResetPasswordByToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	if s.resetPasswordByTokenFunc != nil {
		return s.resetPasswordByTokenFunc(ctx, tokenHash, passwordHash, now)
	}
	s.t.Fatalf("ResetPasswordByToken called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubCredentialsStore) SetPassword(ctx context.Context, userID, passwordHash string, now time.Time) error {
	if s.setPasswordFunc != nil {
		return s.setPasswordFunc(ctx, userID, passwordHash, now)
	}
	s.t.Fatalf("SetPassword called unexpectedly")
	return errors.New("unexpected call")
}

type stubNotifier struct {
	t *testing.T

	sendFunc func(context.Context, string, string) error
}

func (s *stubNotifier) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	if s.sendFunc != nil {
		return s.sendFunc(ctx, toEmail, resetURL)
	}
	s.t.Fatalf("SendPasswordReset called unexpectedly")
	return errors.New("unexpected call")
}
