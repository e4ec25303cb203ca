package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/access"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/utils"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/validation"
)

// Absent and inaccessible tasks share this answer for non-admins so task ids
// cannot be enumerated.
const msgTaskDenied = "Access denied"

// nullableID tells an absent JSON field apart from an explicit null.
type nullableID struct {
	Set bool
	ID  *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.ID = nil
		return nil
	}

	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	n.ID = &id
	return nil
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     string     `json:"dueDate"`
	AssignedTo  nullableID `json:"assignedTo"`
}

func (req *taskRequest) input() validation.Input {
	return validation.Input{
		"title":       &req.Title,
		"description": &req.Description,
		"status":      &req.Status,
		"priority":    &req.Priority,
		"dueDate":     &req.DueDate,
	}
}

// apply copies the validated request onto task. The assignee is only touched
// when the request names one (or null); an empty dueDate clears the date.
func (req *taskRequest) apply(task *domain.Task) {
	task.Title = req.Title
	task.Description = req.Description
	task.Status = domain.TaskStatus(req.Status)
	task.Priority = domain.TaskPriority(req.Priority)

	task.DueDate = nil
	if req.DueDate != "" {
		// already checked by the iso8601 rule
		if due, err := utils.ParseDueDate(req.DueDate); err == nil {
			task.DueDate = &due
		}
	}

	if req.AssignedTo.Set {
		task.AssignedTo = req.AssignedTo.ID
	}
}

func taskMissing(me *domain.User) error {
	if me.IsAdmin() {
		return domain.NotFound("Task not found")
	}
	return domain.Forbidden(msgTaskDenied)
}

// loadTask loads the task named in the path and applies the visibility policy.
func (h *Handler) loadTask(r *http.Request, me *domain.User, op access.Operation) (*domain.Task, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, taskMissing(me)
	}

	task, err := h.store.GetTaskByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, taskMissing(me)
		default:
			return nil, domain.UpstreamFailure(err)
		}
	}

	if !access.CanAccess(me, task, op) {
		return nil, domain.Forbidden(msgTaskDenied)
	}

	return task, nil
}

func (h *Handler) checkAssignee(ctx context.Context, assignee nullableID) (*domain.User, error) {
	if assignee.ID == nil {
		return nil, nil
	}

	user, err := h.store.GetUserByID(ctx, *assignee.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.NotFound("Assigned user not found")
		default:
			return nil, domain.UpstreamFailure(err)
		}
	}
	return user, nil
}

// notifyAssignee queues a mail for a new assignee other than the acting user.
func (h *Handler) notifyAssignee(ctx context.Context, me, assignee *domain.User, task *domain.Task) {
	if assignee == nil || assignee.ID == me.ID {
		return
	}

	if err := h.mailer.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeTaskAssigned,
		To:   assignee.Email,
		Data: domain.TaskAssignedMailData{
			Username:   assignee.Username,
			AssignedBy: me.Username,
			TaskID:     task.ID,
			TaskTitle:  task.Title,
		},
	}); err != nil {
		slog.Warn("failed to queue assignment mail", "task", task.ID, "assignee", assignee.ID, "error", err)
	}
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	me := sessionFrom(r).user

	var tasks []*domain.Task
	var err error
	if me.IsAdmin() {
		tasks, err = h.store.GetAllTasks(r.Context())
	} else {
		tasks, err = h.store.GetTasksVisibleTo(r.Context(), me.ID)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Tasks retrieved successfully", map[string]any{
		"tasks": access.FilterVisible(me, tasks),
	})
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.TaskRules, req.input()); err != nil {
		h.fail(w, r, err)
		return
	}

	s, err := h.authenticate(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	assignee, err := h.checkAssignee(r.Context(), req.AssignedTo)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	task := &domain.Task{CreatedBy: s.user.ID}
	req.apply(task)

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyAssignee(r.Context(), s.user, assignee, task)

	h.createdResponse(w, r, "Task created successfully", map[string]any{"task": task})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	me := sessionFrom(r).user

	task, err := h.loadTask(r, me, access.OpRead)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.successResponse(w, r, "Task retrieved successfully", map[string]any{"task": task})
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validator.Validate(validation.TaskRules, req.input()); err != nil {
		h.fail(w, r, err)
		return
	}

	s, err := h.authenticate(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.loadTask(r, s.user, access.OpWrite)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	assignee, err := h.checkAssignee(r.Context(), req.AssignedTo)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	previous := task.AssignedTo
	req.apply(task)

	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.fail(w, r, domain.Conflict("Task was changed by another request, please retry"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if assignee != nil && (previous == nil || *previous != assignee.ID) {
		h.notifyAssignee(r.Context(), s.user, assignee, task)
	}

	h.successResponse(w, r, "Task updated successfully", map[string]any{"task": task})
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	me := sessionFrom(r).user

	task, err := h.loadTask(r, me, access.OpDelete)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.store.DeleteTask(r.Context(), task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Task deleted successfully", nil)
}
