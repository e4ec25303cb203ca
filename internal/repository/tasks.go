package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.created_by, t.assigned_to, t.created_at, t.updated_at, t.version`

type taskRow struct {
	task       domain.Task
	dueDate    sql.NullTime
	assignedTo sql.NullInt64
}

func (row *taskRow) dst() []any {
	t := &row.task
	return []any{&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &row.dueDate, &t.CreatedBy, &row.assignedTo, &t.CreatedAt, &t.UpdatedAt, &t.Version}
}

func (row *taskRow) build() *domain.Task {
	task := row.task
	if row.dueDate.Valid {
		due := row.dueDate.Time
		task.DueDate = &due
	}
	if row.assignedTo.Valid {
		assignee := row.assignedTo.Int64
		task.AssignedTo = &assignee
	}
	return &task
}

func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, created_by, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at, version
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := []any{task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.CreatedBy, task.AssignedTo}
	dst := []any{&task.ID, &task.CreatedAt, &task.UpdatedAt, &task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row taskRow
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(row.dst()...); err != nil {
		return nil, err
	}

	return row.build(), nil
}

// UpdateTask writes every mutable column. created_by is not part of the update,
// and a stale version yields sql.ErrNoRows.
func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			priority = $4,
			due_date = $5,
			assigned_to = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING created_by, created_at, updated_at, version
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := []any{task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.AssignedTo, task.ID, task.Version}
	dst := []any{&task.CreatedBy, &task.CreatedAt, &task.UpdatedAt, &task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tasks WHERE id = $1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTasksVisibleTo(ctx context.Context, userID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.created_by = $1 OR t.assigned_to = $1 ORDER BY t.id`
	return r.queryTasks(ctx, query, userID)
}

func (r *Repository) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t ORDER BY t.id`
	return r.queryTasks(ctx, query)
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}
		tasks = append(tasks, row.build())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) GetAllTasksWithOwners(ctx context.Context) ([]*domain.TaskWithOwners, error) {
	query := `
		SELECT ` + taskColumns + `,
			c.username,
			c.email,
			a.username,
			a.email
		FROM tasks t
		JOIN users c ON c.id = t.created_by
		LEFT JOIN users a ON a.id = t.assigned_to
		ORDER BY t.id
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.TaskWithOwners, 0)
	for rows.Next() {
		var row taskRow
		var creator domain.UserSummary
		var assigneeName, assigneeEmail sql.NullString

		dst := append(row.dst(), &creator.Username, &creator.Email, &assigneeName, &assigneeEmail)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		task := row.build()
		creator.ID = task.CreatedBy
		tw := &domain.TaskWithOwners{
			Task:          task,
			CreatedByUser: &creator,
		}

		// assigned_to is set to NULL when the assignee is deleted, so a present
		// id always has a joined row
		if task.AssignedTo != nil && assigneeName.Valid {
			tw.AssignedToUser = &domain.UserSummary{
				ID:       *task.AssignedTo,
				Username: assigneeName.String,
				Email:    assigneeEmail.String,
			}
		}

		result = append(result, tw)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
