package access

import "github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"

// RequireRole must only be called with a user produced by the credential gate.
func RequireRole(user *domain.User, role domain.Role) error {
	if user == nil {
		panic("access: RequireRole called without an authenticated user")
	}
	if user.Role != role {
		return domain.Forbidden("Access denied. Admin privileges required")
	}
	return nil
}
