package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/access"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

func TestRequireRole(t *testing.T) {
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	user := &domain.User{ID: 2, Role: domain.RoleUser}

	assert.NoError(t, access.RequireRole(admin, domain.RoleAdmin))
	requireKind(t, access.RequireRole(user, domain.RoleAdmin), domain.KindForbidden)
}

func TestRequireRoleWithoutUserPanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = access.RequireRole(nil, domain.RoleAdmin)
	})
}
