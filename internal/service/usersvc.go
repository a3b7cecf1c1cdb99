package service

import (
	"context"
	"strings"

	"campusboard/internal/auth"
	"campusboard/internal/domain"
)

// UsersAdminStore covers the provisioning and profile operations. Reads go
// through the active-only filter; the Any/Reactivate pair is the explicit
// administrative bypass.
type UsersAdminStore interface {
	CreateUser(ctx context.Context, u domain.User, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByIDAny(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context, params domain.ListParams) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	DeactivateUser(ctx context.Context, id string) error
	ReactivateUser(ctx context.Context, id string) error
}

var validCourses = map[string]bool{
	"bca": true, "bba": true, "bcom": true,
	"mca": true, "mba": true, "mcom": true,
}

type CreateUserParams struct {
	Email           string
	Name            string
	Password        string
	PasswordConfirm string
	Role            domain.Role
	Course          string
	Semester        string
}

type UsersService struct {
	Store UsersAdminStore
}

// Create provisions an account. There is no self-signup: this runs behind
// the admin role gate or the bootstrap path.
func (s *UsersService) Create(ctx context.Context, p CreateUserParams) (domain.User, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Name = strings.TrimSpace(p.Name)
	p.Course = strings.TrimSpace(strings.ToLower(p.Course))
	if p.Role == "" {
		p.Role = domain.RoleStudent
	}
	if p.Semester == "" {
		p.Semester = "1"
	}

	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = "required"
	}
	if p.Email == "" {
		fields["email"] = "required"
	}
	if !p.Role.Valid() {
		fields["role"] = "must be one of student, faculty, admin"
	}
	if !validCourses[p.Course] {
		fields["course"] = "must be one of bca, bba, bcom, mca, mba, mcom"
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}
	if err := validateNewPassword(p.Password, p.PasswordConfirm); err != nil {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	return s.Store.CreateUser(ctx, domain.User{
		Email:    p.Email,
		Name:     p.Name,
		Role:     p.Role,
		Course:   p.Course,
		Semester: p.Semester,
	}, hash)
}

func (s *UsersService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.Store.GetUserByID(ctx, id)
}

func (s *UsersService) List(ctx context.Context, params domain.ListParams) ([]domain.User, error) {
	return s.Store.ListUsers(ctx, params)
}

func (s *UsersService) Update(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	if upd.Role != nil && !upd.Role.Valid() {
		return domain.User{}, domain.NewValidationError(map[string]string{"role": "must be one of student, faculty, admin"})
	}
	if upd.Course != nil {
		course := strings.TrimSpace(strings.ToLower(*upd.Course))
		if !validCourses[course] {
			return domain.User{}, domain.NewValidationError(map[string]string{"course": "must be one of bca, bba, bcom, mca, mba, mcom"})
		}
		upd.Course = &course
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		upd.Email = &email
	}
	return s.Store.UpdateUser(ctx, id, upd)
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteUser(ctx, id)
}

// UpdateProfile is the self-service path; it can only touch name and email.
func (s *UsersService) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.User, error) {
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		upd.Email = &email
	}
	return s.Store.UpdateProfile(ctx, id, upd)
}

// Deactivate soft-deletes the account. The record survives, but every
// active-only lookup stops seeing it, which also ends its sessions.
func (s *UsersService) Deactivate(ctx context.Context, id string) error {
	return s.Store.DeactivateUser(ctx, id)
}

// Reactivate flips a soft-deleted account back. The underlying lookup must
// bypass the active-only filter to find it at all.
func (s *UsersService) Reactivate(ctx context.Context, id string) error {
	if _, err := s.Store.GetUserByIDAny(ctx, id); err != nil {
		return err
	}
	return s.Store.ReactivateUser(ctx, id)
}
