package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusboard/internal/auth"
	"campusboard/internal/domain"
)

// CredentialsStore is the subset of the users store the auth flows need.
// Reads resolve active records only; the password hash and reset-token pair
// are returned only by the WithSecrets/ByEmail variants.
type CredentialsStore interface {
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByIDWithSecrets(ctx context.Context, id string) (domain.UserWithSecrets, error)
	GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.UserWithSecrets, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID, tokenHash string) error
	ResetPasswordByToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error)
	SetPassword(ctx context.Context, userID, passwordHash string, now time.Time) error
}

type AuthService struct {
	Users  CredentialsStore
	Tokens *auth.TokenCodec
	Now    func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login verifies email+password and issues a session token. Unknown email
// and wrong password collapse into one undifferentiated failure so callers
// cannot discover which accounts exist. Inactive users are invisible to the
// lookup and fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", domain.NewValidationError(map[string]string{"email": "required", "password": "required"})
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", domain.ErrInvalidCredentials
	}

	return s.Tokens.Issue(u.ID)
}

// UserForToken is the gatekeeper resolution step: verify the token, resolve
// the subject against the active-only lookup, and reject tokens issued
// before the last password change. Every failure is ErrUnauthenticated;
// the finer-grained cause is never exposed.
func (s *AuthService) UserForToken(ctx context.Context, tokenString string) (domain.User, error) {
	claims, err := s.Tokens.Verify(tokenString)
	if err != nil {
		return domain.User{}, domain.ErrUnauthenticated
	}

	u, err := s.Users.GetUserByIDWithSecrets(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthenticated
		}
		return domain.User{}, err
	}
	if u.ChangedPasswordAfter(claims.IssuedAt) {
		return domain.User{}, domain.ErrUnauthenticated
	}

	return u.User, nil
}

// ChangePassword verifies the current password before storing the new one,
// then issues a fresh token. The store write also stamps passwordChangedAt,
// which invalidates every previously issued token.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, newPasswordConfirm string) (string, error) {
	if currentPassword == "" {
		return "", domain.NewValidationError(map[string]string{"current_password": "required"})
	}
	if err := validateNewPassword(newPassword, newPasswordConfirm); err != nil {
		return "", err
	}

	u, err := s.Users.GetUserByIDWithSecrets(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthenticated
		}
		return "", err
	}
	if !auth.VerifyPassword(u.PasswordHash, currentPassword) {
		return "", domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.Users.SetPassword(ctx, u.ID, hash, s.now()); err != nil {
		return "", err
	}

	return s.Tokens.Issue(u.ID)
}

func validateNewPassword(password, confirm string) error {
	fields := map[string]string{}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if password != confirm {
		fields["password_confirm"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}
