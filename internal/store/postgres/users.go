package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersStore persists credential records. Every read filters active rows
// unless it is one of the explicit Any variants; the reset-token pair and
// password hash are only selected by the secret-bearing lookups.
type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, email, name, role, course, semester, active, created_at, updated_at`

const userSecretColumns = userColumns + `, password_hash, password_changed_at, reset_token_hash, reset_token_expires_at`

func (s *UsersStore) CreateUser(ctx context.Context, u domain.User, passwordHash string) (domain.User, error) {
	q := `
		INSERT INTO users (email, name, role, course, semester, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	row := s.pool.QueryRow(ctx, q, u.Email, u.Name, string(u.Role), u.Course, u.Semester, passwordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active`
	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetUserByIDAny bypasses the active-only filter. Administrative use only,
// e.g. reactivating a soft-deleted account.
func (s *UsersStore) GetUserByIDAny(ctx context.Context, id string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id any: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error) {
	q := `SELECT ` + userSecretColumns + ` FROM users WHERE email = $1 AND active`
	u, err := scanUserWithSecrets(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		}
		return domain.UserWithSecrets{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByIDWithSecrets(ctx context.Context, id string) (domain.UserWithSecrets, error) {
	q := `SELECT ` + userSecretColumns + ` FROM users WHERE id = $1 AND active`
	u, err := scanUserWithSecrets(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		}
		return domain.UserWithSecrets{}, fmt.Errorf("get user by id with secrets: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.UserWithSecrets, error) {
	q := `
		SELECT ` + userSecretColumns + `
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2 AND active`
	u, err := scanUserWithSecrets(s.pool.QueryRow(ctx, q, tokenHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		}
		return domain.UserWithSecrets{}, fmt.Errorf("get user by reset token: %w", err)
	}
	return u, nil
}

// SetResetToken stores the hashed token pair, overwriting any previous pair
// for the record.
func (s *UsersStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1 AND active`
	tag, err := s.pool.Exec(ctx, q, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearResetToken removes the pair only if the stored hash is still the one
// being rolled back, so it never erases a newer token issued concurrently.
func (s *UsersStore) ClearResetToken(ctx context.Context, userID, tokenHash string) error {
	const q = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND reset_token_hash = $2`
	if _, err := s.pool.Exec(ctx, q, userID, tokenHash); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ResetPasswordByToken consumes an unexpired reset token and writes the new
// password in one statement, so the token can never satisfy two resets. The
// change timestamp is backdated one second so the session token issued right
// after the reset is not itself invalidated by the freshness check.
func (s *UsersStore) ResetPasswordByToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	q := `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = $3,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = now()
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $4 AND active
		RETURNING ` + userColumns

	changedAt := now.Add(-time.Second)
	u, err := scanUser(s.pool.QueryRow(ctx, q, tokenHash, passwordHash, changedAt, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("reset password by token: %w", err)
	}
	return u, nil
}

// SetPassword writes a new hash for an authenticated password change. Any
// outstanding reset pair is dropped; the change timestamp is backdated one
// second like ResetPasswordByToken.
func (s *UsersStore) SetPassword(ctx context.Context, userID, passwordHash string, now time.Time) error {
	const q = `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = $3,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND active`
	tag, err := s.pool.Exec(ctx, q, userID, passwordHash, now.Add(-time.Second))
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var userFilterColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"course":    "course",
	"semester":  "semester",
	"createdAt": "created_at",
}

func (s *UsersStore) ListUsers(ctx context.Context, params domain.ListParams) ([]domain.User, error) {
	q, args := buildListQuery(`SELECT `+userColumns+` FROM users`, []string{"active"}, nil, userFilterColumns, "created_at", params)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *UsersStore) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}
	if upd.Course != nil {
		add("course", *upd.Course)
	}
	if upd.Semester != nil {
		add("semester", *upd.Semester)
	}

	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND active RETURNING ` + userColumns
	u, err := scanUser(s.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.User, error) {
	var full domain.UserUpdate
	full.Email = upd.Email
	full.Name = upd.Name
	return s.UpdateUser(ctx, id, full)
}

func (s *UsersStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) DeactivateUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET active = false, updated_at = now() WHERE id = $1 AND active`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) ReactivateUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET active = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		idUUID    pgtype.UUID
		roleText  string
		emailText pgtype.Text
	)
	err := row.Scan(&idUUID, &emailText, &u.Name, &roleText, &u.Course, &u.Semester, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Role = domain.Role(roleText)
	return u, nil
}

func scanUserWithSecrets(row pgx.Row) (domain.UserWithSecrets, error) {
	var (
		u            domain.UserWithSecrets
		idUUID       pgtype.UUID
		roleText     string
		emailText    pgtype.Text
		changedAt    pgtype.Timestamptz
		resetHash    pgtype.Text
		resetExpires pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID, &emailText, &u.Name, &roleText, &u.Course, &u.Semester, &u.Active, &u.CreatedAt, &u.UpdatedAt,
		&u.PasswordHash, &changedAt, &resetHash, &resetExpires,
	)
	if err != nil {
		return domain.UserWithSecrets{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Role = domain.Role(roleText)
	u.PasswordChangedAt = timestamptzPtr(changedAt)
	u.ResetTokenHash = textOrEmpty(resetHash)
	u.ResetTokenExpiresAt = timestamptzPtr(resetExpires)
	return u, nil
}
