// Package testutil provides in-memory collaborators for tests.
package testutil

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

// FakeStore is an in-memory implementation of handler.Store.
// Missing rows are reported with sql.ErrNoRows like the postgres repository.
type FakeStore struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	tasks  map[int64]*domain.Task
	nextID int64

	// Error injection for testing
	GetUserErr    error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ListTasksErr  error
	ListUsersErr  error

	// Calls counts mutating calls, keyed by method name.
	Calls map[string]int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:  make(map[int64]*domain.User),
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

// AddUser stores a copy of user with a fresh id and returns that id.
func (f *FakeStore) AddUser(username, email string, role domain.Role) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &domain.User{
		ID:        f.nextID,
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.users[u.ID] = u
	return copyUser(u)
}

// AddTask stores a task created by creator and returns a copy.
func (f *FakeStore) AddTask(title string, creator int64, assignee *int64) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	t := &domain.Task{
		ID:          f.nextID,
		Title:       title,
		Description: title + " description",
		Status:      domain.TaskStatusPending,
		Priority:    domain.TaskPriorityMedium,
		CreatedBy:   creator,
		AssignedTo:  assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.nextID++
	f.tasks[t.ID] = t
	return copyTask(t)
}

// Task returns the stored task, or nil.
func (f *FakeStore) Task(id int64) *domain.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil
	}
	return copyTask(t)
}

// User returns the stored user, or nil.
func (f *FakeStore) User(id int64) *domain.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok {
		return nil
	}
	return copyUser(u)
}

// RemoveUser deletes a user, leaving its tasks in place.
func (f *FakeStore) RemoveUser(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func (f *FakeStore) CreateUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["CreateUser"]++
	for _, u := range f.users {
		if u.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
		if u.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.Version = 1
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *FakeStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyUser(u), nil
}

func (f *FakeStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *FakeStore) UpdateUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["UpdateUser"]++
	stored, ok := f.users[user.ID]
	if !ok || stored.Version != user.Version {
		return sql.ErrNoRows
	}
	user.Version++
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *FakeStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	if f.ListUsersErr != nil {
		return nil, f.ListUsersErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	users := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *FakeStore) CreateTask(ctx context.Context, task *domain.Task) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["CreateTask"]++
	now := time.Now()
	task.ID = f.nextID
	f.nextID++
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Version = 1
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *FakeStore) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	if f.GetTaskErr != nil {
		return nil, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyTask(t), nil
}

func (f *FakeStore) UpdateTask(ctx context.Context, task *domain.Task) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["UpdateTask"]++
	stored, ok := f.tasks[task.ID]
	if !ok || stored.Version != task.Version {
		return sql.ErrNoRows
	}
	task.CreatedBy = stored.CreatedBy
	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = time.Now()
	task.Version++
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *FakeStore) DeleteTask(ctx context.Context, id int64) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["DeleteTask"]++
	delete(f.tasks, id)
	return nil
}

func (f *FakeStore) GetTasksVisibleTo(ctx context.Context, userID int64) ([]*domain.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.listTasks(func(t *domain.Task) bool {
		return t.CreatedBy == userID || t.IsAssignedTo(userID)
	}), nil
}

func (f *FakeStore) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.listTasks(func(*domain.Task) bool { return true }), nil
}

func (f *FakeStore) GetAllTasksWithOwners(ctx context.Context) ([]*domain.TaskWithOwners, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	tasks := f.listTasks(func(*domain.Task) bool { return true })

	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]*domain.TaskWithOwners, 0, len(tasks))
	for _, t := range tasks {
		tw := &domain.TaskWithOwners{Task: t}
		if u, ok := f.users[t.CreatedBy]; ok {
			tw.CreatedByUser = summary(u)
		}
		if t.AssignedTo != nil {
			if u, ok := f.users[*t.AssignedTo]; ok {
				tw.AssignedToUser = summary(u)
			}
		}
		result = append(result, tw)
	}
	return result, nil
}

func (f *FakeStore) listTasks(keep func(*domain.Task) bool) []*domain.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tasks := make([]*domain.Task, 0)
	for _, t := range f.tasks {
		if keep(t) {
			tasks = append(tasks, copyTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func summary(u *domain.User) *domain.UserSummary {
	return &domain.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		c.AssignedTo = &a
	}
	return &c
}
