package handler_test

import (
	"net/http"
	"testing"

	"github.com/jaekwang-park/task-api/internal/model"
)

func TestCategoryHandler_CRUD(t *testing.T) {
	env := newTestEnv(t)

	w := do(t, env.categories, http.MethodPost, "/api/v1/categories", "user-1", `{"name":"  "}`)
	expectErrorCode(t, w, http.StatusBadRequest, "INVALID_INPUT")

	work := createCategory(t, env, "user-1", "Work")
	createCategory(t, env, "user-1", "Home")
	createCategory(t, env, "user-2", "Theirs")

	if work.Name != "Work" || work.UserID != "user-1" {
		t.Errorf("unexpected category: %+v", work)
	}

	w = do(t, env.categories, http.MethodGet, "/api/v1/categories", "user-1", nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[model.CategoryListResult](t, w)
	if len(list.Categories) != 2 || list.Categories[0].ID != work.ID {
		t.Errorf("expected two categories oldest first, got %+v", list.Categories)
	}

	w = do(t, env.categories, http.MethodPatch, "/api/v1/categories/"+work.ID, "user-1", `{"name":"Office"}`)
	expectStatus(t, w, http.StatusOK)
	if got := decode[model.Category](t, w); got.Name != "Office" {
		t.Errorf("expected renamed category, got %+v", got)
	}

	w = do(t, env.categories, http.MethodGet, "/api/v1/categories/"+work.ID, "user-2", nil)
	expectErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, env.categories, http.MethodPut, "/api/v1/categories/"+work.ID, "user-2", `{"name":"Stolen"}`)
	expectErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, env.categories, http.MethodGet, "/api/v1/categories/"+work.ID, "user-1", nil)
	expectStatus(t, w, http.StatusOK)
}

func TestCategoryHandler_DeleteClearsTasks(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, "user-1", "Errands")
	task := createTask(t, env, "user-1", map[string]any{"title": "post office", "category_id": cat.ID})

	w := do(t, env.categories, http.MethodDelete, "/api/v1/categories/"+cat.ID, "user-2", nil)
	expectErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, env.categories, http.MethodDelete, "/api/v1/categories/"+cat.ID, "user-1", nil)
	expectStatus(t, w, http.StatusNoContent)

	w = do(t, env.tasks, http.MethodGet, "/api/v1/tasks/"+task.ID, "user-1", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[model.Task](t, w); got.CategoryID != nil {
		t.Errorf("expected task to become uncategorized, got %s", *got.CategoryID)
	}

	w = do(t, env.categories, http.MethodDelete, "/api/v1/categories/"+cat.ID, "user-1", nil)
	expectErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = do(t, env.tasks, http.MethodPost, "/api/v1/tasks", "user-1", map[string]any{"title": "x", "category_id": cat.ID})
	expectErrorCode(t, w, http.StatusBadRequest, "INVALID_REFERENCE")
}

func TestCategoryHandler_Routing(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"nested path", http.MethodGet, "/api/v1/categories/a/b", http.StatusNotFound},
		{"delete collection", http.MethodDelete, "/api/v1/categories", http.StatusMethodNotAllowed},
		{"post item", http.MethodPost, "/api/v1/categories/abc", http.StatusMethodNotAllowed},
		{"bad limit", http.MethodGet, "/api/v1/categories?limit=-5", http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/v1/categories/not-a-uuid", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, do(t, env.categories, tt.method, tt.path, "user-1", nil), tt.wantStatus)
		})
	}
}
