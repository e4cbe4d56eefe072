package handler_test

import (
	"net/http"
	"testing"

	"github.com/jaekwang-park/task-api/internal/model"
)

func TestStatsHandler_Views(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, "user-1", "Work")

	createTask(t, env, "user-1", map[string]any{"title": "a", "priority": "high", "category_id": cat.ID})
	createTask(t, env, "user-1", `{"title":"b","due_at":"2001-01-01T00:00:00Z"}`)
	done := createTask(t, env, "user-1", `{"title":"c"}`)
	gone := createTask(t, env, "user-1", `{"title":"d"}`)
	createTask(t, env, "user-2", `{"title":"other"}`)

	expectStatus(t, do(t, env.tasks, http.MethodPatch, "/api/v1/tasks/"+done.ID, "user-1", `{"status":"completed"}`), http.StatusOK)
	expectStatus(t, do(t, env.tasks, http.MethodDelete, "/api/v1/tasks/"+gone.ID, "user-1", nil), http.StatusNoContent)

	t.Run("completion", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/completion", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[model.CompletionStats](t, w)
		want := model.CompletionStats{Total: 4, Completed: 1, Pending: 2, Deleted: 1, CompletionRate: 25}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("daily default window", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/daily", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[[]model.DailyStat](t, w)
		if len(got) != 8 {
			t.Fatalf("expected 8 days, got %d", len(got))
		}
		today := got[len(got)-1]
		if today.CreatedCount != 4 || today.CompletedCount != 1 {
			t.Errorf("unexpected counts for today: %+v", today)
		}
	})

	t.Run("category", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/category", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[[]model.CategoryStat](t, w)
		if len(got) != 2 {
			t.Fatalf("expected category plus uncategorized bucket, got %+v", got)
		}
		if got[0].CategoryName != "Work" || got[0].TaskCount != 1 {
			t.Errorf("unexpected category bucket: %+v", got[0])
		}
		if got[1].CategoryID != nil || got[1].CategoryName != model.UncategorizedLabel || got[1].TaskCount != 1 {
			t.Errorf("unexpected uncategorized bucket: %+v", got[1])
		}
	})

	t.Run("priority", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/priority", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[model.PriorityStats](t, w)
		if got[model.PriorityHigh] != 1 || got[model.PriorityMedium] != 1 || got[model.PriorityLow] != 0 {
			t.Errorf("unexpected priority counts: %v", got)
		}
		if _, ok := got[model.PriorityLow]; !ok {
			t.Error("expected empty priorities to be present")
		}
	})

	t.Run("overdue", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/overdue", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[model.OverdueStats](t, w)
		want := model.OverdueStats{Overdue: 1, Total: 2, OverdueRate: 50}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("summary", func(t *testing.T) {
		w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/summary?days=2", "user-1", nil)
		expectStatus(t, w, http.StatusOK)
		got := decode[model.StatsSummary](t, w)
		if got.Completion.Total != 4 || len(got.Daily) != 3 || len(got.Categories) != 2 || got.Overdue.Overdue != 1 {
			t.Errorf("unexpected summary: %+v", got)
		}
	})
}

func TestStatsHandler_EmptyUser(t *testing.T) {
	env := newTestEnv(t)

	w := do(t, env.stats, http.MethodGet, "/api/v1/statistics/completion", "nobody", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[model.CompletionStats](t, w); got != (model.CompletionStats{}) {
		t.Errorf("expected zero stats, got %+v", got)
	}

	w = do(t, env.stats, http.MethodGet, "/api/v1/statistics/daily?days=0", "nobody", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]model.DailyStat](t, w); len(got) != 1 || got[0].CreatedCount != 0 {
		t.Errorf("expected a single empty day, got %+v", got)
	}
}

func TestStatsHandler_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"days not a number", http.MethodGet, "/api/v1/statistics/daily?days=abc", http.StatusBadRequest, "INVALID_INPUT"},
		{"days too large", http.MethodGet, "/api/v1/statistics/daily?days=400", http.StatusBadRequest, "INVALID_INPUT"},
		{"negative days", http.MethodGet, "/api/v1/statistics/summary?days=-1", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown view", http.MethodGet, "/api/v1/statistics/weekly", http.StatusNotFound, "NOT_FOUND"},
		{"post", http.MethodPost, "/api/v1/statistics/completion", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, env.stats, tt.method, tt.path, "user-1", nil)
			expectErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}
