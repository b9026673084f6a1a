package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/outreach-monitor/internal/pkg/httputil"
	"github.com/ignite/outreach-monitor/internal/taskmanager"
)

// TaskStore is the task manager surface the API uses.
type TaskStore interface {
	Create(ctx context.Context, in taskmanager.CreateInput) (*taskmanager.Task, error)
	Get(ctx context.Context, id string) (*taskmanager.Task, error)
	List(ctx context.Context, status string) ([]taskmanager.Task, error)
	Update(ctx context.Context, id string, in taskmanager.UpdateInput) (*taskmanager.Task, error)
	Delete(ctx context.Context, id string) error
}

func (h *Handlers) tasksConfigured(w http.ResponseWriter) bool {
	if h.tasks == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "task manager is not configured")
		return false
	}
	return true
}

// ListTasks returns tasks, optionally filtered by status.
//
//	GET /api/tasks?status=
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	if !h.tasksConfigured(w) {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !taskmanager.ValidStatus(status) {
		httputil.BadRequest(w, "invalid status filter")
		return
	}

	tasks, err := h.tasks.List(r.Context(), status)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"tasks": tasks})
}

// CreateTask creates a new task.
//
//	POST /api/tasks
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	if !h.tasksConfigured(w) {
		return
	}

	var in taskmanager.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	task, err := h.tasks.Create(r.Context(), in)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, task)
}

// GetTask returns one task by id.
//
//	GET /api/tasks/{taskID}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	if !h.tasksConfigured(w) {
		return
	}

	task, err := h.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if errors.Is(err, taskmanager.ErrNotFound) {
		httputil.NotFound(w, "task not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, task)
}

// UpdateTask applies a partial update to a task.
//
//	PUT /api/tasks/{taskID}
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if !h.tasksConfigured(w) {
		return
	}

	var in taskmanager.UpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	task, err := h.tasks.Update(r.Context(), chi.URLParam(r, "taskID"), in)
	if errors.Is(err, taskmanager.ErrNotFound) {
		httputil.NotFound(w, "task not found")
		return
	}
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, task)
}

// DeleteTask removes a task.
//
//	DELETE /api/tasks/{taskID}
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if !h.tasksConfigured(w) {
		return
	}

	err := h.tasks.Delete(r.Context(), chi.URLParam(r, "taskID"))
	if errors.Is(err, taskmanager.ErrNotFound) {
		httputil.NotFound(w, "task not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
