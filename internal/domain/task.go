package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var (
	TaskStatuses   = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}
	TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}
)

type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedBy   int64        `json:"createdBy"`
	AssignedTo  *int64       `json:"assignedTo,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Version     int32        `json:"-"`
}

func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TaskWithOwners is a task together with the users it references, used by the admin listing.
type TaskWithOwners struct {
	*Task
	CreatedByUser  *UserSummary `json:"createdByUser"`
	AssignedToUser *UserSummary `json:"assignedToUser,omitempty"`
}
