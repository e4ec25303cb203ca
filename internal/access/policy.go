package access

import "github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"

type Operation int

const (
	OpRead Operation = iota + 1
	OpWrite
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// CanAccess reports whether user may perform op on task. Admins may touch every
// task, everybody else only the tasks they created or are assigned to. The rule
// is the same for all operations.
func CanAccess(user *domain.User, task *domain.Task, op Operation) bool {
	if user == nil || task == nil {
		return false
	}
	switch op {
	case OpRead, OpWrite, OpDelete:
	default:
		return false
	}

	return user.IsAdmin() || task.CreatedBy == user.ID || task.IsAssignedTo(user.ID)
}

// FilterVisible keeps the tasks user may read, preserving order.
func FilterVisible(user *domain.User, tasks []*domain.Task) []*domain.Task {
	visible := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if CanAccess(user, task, OpRead) {
			visible = append(visible, task)
		}
	}
	return visible
}
