package service

import "campusboard/internal/domain"

// Authorize is the role gate for privileged operations. It returns nil only
// when the user's role is one of allowed; the caller must branch on the
// result before running the protected operation, so a rejection cannot be
// followed by the operation it rejected.
func Authorize(u domain.User, allowed ...domain.Role) error {
	for _, r := range allowed {
		if u.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}
