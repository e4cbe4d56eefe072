package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/task-api/internal/http/handler"
	"github.com/jaekwang-park/task-api/internal/middleware"
	"github.com/jaekwang-park/task-api/internal/repository"
	"github.com/jaekwang-park/task-api/internal/service"
)

// testEnv wires the real services to an in-memory SQLite store.
type testEnv struct {
	tasks      http.Handler
	categories http.Handler
	stats      http.Handler
	users      http.Handler
	userRepo   *repository.GormUserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	taskRepo := repository.NewGormTask(db)
	categoryRepo := repository.NewGormCategory(db)
	userRepo := repository.NewGormUser(db)

	return &testEnv{
		tasks:      handler.NewTaskHandler(service.NewTaskService(taskRepo, categoryRepo)),
		categories: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		stats:      handler.NewStatsHandler(service.NewStatsService(repository.NewGormStats(db), categoryRepo, nil), 7),
		users:      handler.NewUserHandler(service.NewUserService(userRepo)),
		userRepo:   userRepo,
	}
}

// do sends a request as userID and returns the recorded response.
func do(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, w.Code, w.Body.String())
	}
}

func expectErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	if got := decode[handler.ErrorResponse](t, w); got.Error.Code != code {
		t.Errorf("expected code %s, got %s", code, got.Error.Code)
	}
}
