package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/access"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

var allOps = []access.Operation{access.OpRead, access.OpWrite, access.OpDelete}

func TestCanAccess(t *testing.T) {
	creator := &domain.User{ID: 1, Role: domain.RoleUser}
	assignee := &domain.User{ID: 2, Role: domain.RoleUser}
	stranger := &domain.User{ID: 3, Role: domain.RoleUser}
	admin := &domain.User{ID: 4, Role: domain.RoleAdmin}

	assigneeID := assignee.ID
	task := &domain.Task{ID: 10, CreatedBy: creator.ID, AssignedTo: &assigneeID}
	unassigned := &domain.Task{ID: 11, CreatedBy: creator.ID}

	tests := []struct {
		name string
		user *domain.User
		task *domain.Task
		want bool
	}{
		{"creator", creator, task, true},
		{"assignee", assignee, task, true},
		{"admin", admin, task, true},
		{"stranger", stranger, task, false},
		{"assignee of another task", assignee, unassigned, false},
		{"admin unassigned", admin, unassigned, true},
		{"nil user", nil, task, false},
		{"nil task", creator, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, op := range allOps {
				assert.Equal(t, tt.want, access.CanAccess(tt.user, tt.task, op), "op %s", op)
			}
		})
	}
}

func TestCanAccessUnknownOperation(t *testing.T) {
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	assert.False(t, access.CanAccess(admin, &domain.Task{CreatedBy: 1}, access.Operation(99)))
}

func TestCanAccessStrangerNeverWrites(t *testing.T) {
	// every non-admin who is neither creator nor assignee is denied
	for id := int64(1); id <= 50; id++ {
		assigned := id + 1
		task := &domain.Task{CreatedBy: id, AssignedTo: &assigned}
		for other := int64(1); other <= 52; other++ {
			if other == id || other == assigned {
				continue
			}
			user := &domain.User{ID: other, Role: domain.RoleUser}
			assert.False(t, access.CanAccess(user, task, access.OpWrite))
		}
	}
}

func TestFilterVisible(t *testing.T) {
	me := &domain.User{ID: 1, Role: domain.RoleUser}
	mine := int64(1)
	tasks := []*domain.Task{
		{ID: 1, CreatedBy: 1},
		{ID: 2, CreatedBy: 2},
		{ID: 3, CreatedBy: 2, AssignedTo: &mine},
		{ID: 4, CreatedBy: 3},
	}

	visible := access.FilterVisible(me, tasks)
	ids := make([]int64, 0, len(visible))
	for _, task := range visible {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)

	admin := &domain.User{ID: 9, Role: domain.RoleAdmin}
	assert.Len(t, access.FilterVisible(admin, tasks), 4)
}
