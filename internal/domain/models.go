package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Course    string
	Semester  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserWithSecrets is the internal shape of a credential record. The secret
// fields are never serialized to clients; only auth operations request them.
type UserWithSecrets struct {
	User
	PasswordHash        string
	PasswordChangedAt   *time.Time
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issuance time. The comparison is at second granularity to
// match the token's iat claim.
func (u UserWithSecrets) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// UserUpdate carries the admin-editable fields of a user record. Nil fields
// are left untouched.
type UserUpdate struct {
	Email    *string
	Name     *string
	Role     *Role
	Course   *string
	Semester *string
}

// ProfileUpdate carries the self-service editable fields. Credential fields
// deliberately have no representation here.
type ProfileUpdate struct {
	Email *string
	Name  *string
}

type PostKind string

const (
	PostKindEvent  PostKind = "event"
	PostKindUpdate PostKind = "update"
)

// Post is a published content item. Events and updates share the same shape
// and differ only in kind.
type Post struct {
	ID        string
	Kind      PostKind
	Title     string
	Body      string
	CreatedAt time.Time
}

type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterGt  FilterOp = "gt"
	FilterGte FilterOp = "gte"
	FilterLt  FilterOp = "lt"
	FilterLte FilterOp = "lte"
)

type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

type SortField struct {
	Field string
	Desc  bool
}

// ListParams is the parsed form of the list-query features: field filters,
// sorting, pagination and response field selection.
type ListParams struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

func (p ListParams) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.PageSize()
}

func (p ListParams) PageSize() int {
	if p.Limit <= 0 {
		return 100
	}
	if p.Limit > 500 {
		return 500
	}
	return p.Limit
}
