package handler

import (
	"net/http"
	"strings"

	"github.com/jaekwang-park/task-api/internal/service"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// ServeHTTP routes /api/v1/categories and /api/v1/categories/{id}
func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/categories"), "/")

	if strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	if id != "" {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut, http.MethodPatch:
			h.handleRename(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		methodNotAllowed(w)
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.svc.Create(r.Context(), getUserID(r), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.svc.List(r.Context(), getUserID(r), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *CategoryHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	category, err := h.svc.GetByID(r.Context(), getUserID(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) handleRename(w http.ResponseWriter, r *http.Request, id string) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.svc.Rename(r.Context(), getUserID(r), id, req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, category)
}

// handleDelete removes the category; its tasks stay and lose the reference.
func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(r.Context(), getUserID(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
