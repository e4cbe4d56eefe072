package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/service"
)

// noCategory is the category_id query value selecting uncategorized tasks.
const noCategory = "none"

var exportHeader = []string{
	"id", "title", "description", "due_at", "priority", "status",
	"category_id", "is_public", "created_at", "updated_at",
}

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ServeHTTP routes /api/v1/tasks and everything below it.
func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks")
	path = strings.Trim(path, "/")

	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			methodNotAllowed(w)
		}

	case parts[0] == "batch" && len(parts) == 1:
		switch r.Method {
		case http.MethodPut, http.MethodPatch:
			h.handleBatchUpdate(w, r)
		case http.MethodDelete:
			h.handleBatchDelete(w, r)
		default:
			methodNotAllowed(w)
		}

	case parts[0] == "deleted":
		h.routeRecycleBin(w, r, parts[1:])

	case parts[0] == "public":
		switch {
		case r.Method != http.MethodGet:
			methodNotAllowed(w)
		case len(parts) == 1:
			h.handleListPublic(w, r)
		case len(parts) == 2:
			h.handleGetPublic(w, r, parts[1])
		default:
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		}

	case parts[0] == "export" && len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleExport(w, r)

	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetByID(w, r, parts[0])
		case http.MethodPut, http.MethodPatch:
			h.handleUpdate(w, r, parts[0])
		case http.MethodDelete:
			h.handleDelete(w, r, parts[0])
		default:
			methodNotAllowed(w)
		}

	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

// routeRecycleBin serves /deleted, /deleted/{id} and /deleted/{id}/restore.
func (h *TaskHandler) routeRecycleBin(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleListDeleted(w, r)
	case len(parts) == 1:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		h.handlePermanentDelete(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "restore":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleRestore(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueAt       *string        `json:"due_at,omitempty"`
	Priority    model.Priority `json:"priority"`
	CategoryID  *string        `json:"category_id,omitempty"`
	IsPublic    bool           `json:"is_public"`
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Create(r.Context(), getUserID(r), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Priority:    req.Priority,
		CategoryID:  req.CategoryID,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) handleGetByID(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.svc.GetByID(r.Context(), getUserID(r), taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// updateTaskRequest distinguishes absent keys from explicit nulls, so
// {"category_id": null} clears the category while {} leaves it alone.
type updateTaskRequest struct {
	Title       model.Optional[string]           `json:"title"`
	Description model.Optional[string]           `json:"description"`
	DueAt       model.Optional[*string]          `json:"due_at"`
	Priority    model.Optional[model.Priority]   `json:"priority"`
	Status      model.Optional[model.TaskStatus] `json:"status"`
	CategoryID  model.Optional[*string]          `json:"category_id"`
	IsPublic    model.Optional[bool]             `json:"is_public"`
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request, taskID string) {
	var req updateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Update(r.Context(), getUserID(r), taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Priority:    req.Priority,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := h.svc.SoftDelete(r.Context(), getUserID(r), taskID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listParams parses the filters shared by list and export.
func listParams(r *http.Request) (model.TaskListParams, error) {
	q := r.URL.Query()
	params := model.TaskListParams{UserID: getUserID(r)}

	if v := q.Get("status"); v != "" {
		statuses, err := model.ParseStatuses(v)
		if err != nil {
			return params, err
		}
		params.Statuses = statuses
	}
	if v := q.Get("priority"); v != "" {
		p := model.Priority(strings.ToLower(v))
		params.Priority = &p
	}
	if q.Has("category_id") {
		params.Category.Apply = true
		if v := q.Get("category_id"); v != noCategory {
			params.Category.CategoryID = &v
		}
	}
	return params, nil
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	params.Page, err = parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.svc.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.svc.ListDeleted(r.Context(), getUserID(r), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) handleRestore(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.svc.Restore(r.Context(), getUserID(r), taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handlePermanentDelete(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := h.svc.PermanentlyDelete(r.Context(), getUserID(r), taskID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.svc.ListPublic(r.Context(), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) handleGetPublic(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.svc.GetPublic(r.Context(), taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

type batchUpdateRequest struct {
	TaskIDs    []string                       `json:"task_ids"`
	Priority   model.Optional[model.Priority] `json:"priority"`
	CategoryID model.Optional[*string]        `json:"category_id"`
}

func (h *TaskHandler) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	var req batchUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.svc.BatchUpdate(r.Context(), getUserID(r), service.BatchUpdateInput{
		TaskIDs:    req.TaskIDs,
		Priority:   req.Priority,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"updated_count": n})
}

type batchDeleteRequest struct {
	TaskIDs []string `json:"task_ids"`
}

func (h *TaskHandler) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.svc.BatchSoftDelete(r.Context(), getUserID(r), req.TaskIDs)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"deleted_count": n})
}

// handleExport writes every matching task as CSV, ignoring pagination.
func (h *TaskHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	tasks, err := h.svc.Export(r.Context(), params)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	rows := make([][]string, 0, len(tasks)+1)
	rows = append(rows, exportHeader)
	for _, t := range tasks {
		rows = append(rows, exportRow(t))
	}
	if err := cw.WriteAll(rows); err != nil {
		slog.ErrorContext(r.Context(), "failed to write csv export", "error", err)
	}
}

func exportRow(t model.Task) []string {
	var dueAt, categoryID string
	if t.DueAt != nil {
		dueAt = t.DueAt.Format(time.RFC3339)
	}
	if t.CategoryID != nil {
		categoryID = *t.CategoryID
	}
	return []string{
		t.ID,
		t.Title,
		t.Description,
		dueAt,
		string(t.Priority),
		string(t.Status),
		categoryID,
		strconv.FormatBool(t.IsPublic),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	}
}
