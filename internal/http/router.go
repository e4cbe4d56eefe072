package http

import (
	"net/http"

	"github.com/jaekwang-park/task-api/internal/http/handler"
	"github.com/jaekwang-park/task-api/internal/service"
)

// Services holds everything the router dispatches to. Auth may be nil when
// no identity provider is configured; DB may be nil to skip the storage
// health check.
type Services struct {
	Tasks            *service.TaskService
	Categories       *service.CategoryService
	Stats            *service.StatsService
	Users            *service.UserService
	Auth             *service.AuthService
	DB               handler.Pinger
	StatsDefaultDays int
}

func NewRouter(svcs Services) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler(svcs.DB))

	if svcs.Auth != nil {
		mux.Handle("/api/v1/auth/", handler.NewAuthHandler(svcs.Auth))
	} else {
		mux.HandleFunc("/api/v1/auth/", func(w http.ResponseWriter, r *http.Request) {
			handler.WriteError(w, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "authentication is not configured")
		})
	}

	mux.Handle("/api/v1/users/", handler.NewUserHandler(svcs.Users))

	tasks := handler.NewTaskHandler(svcs.Tasks)
	mux.Handle("/api/v1/tasks", tasks)
	mux.Handle("/api/v1/tasks/", tasks)

	categories := handler.NewCategoryHandler(svcs.Categories)
	mux.Handle("/api/v1/categories", categories)
	mux.Handle("/api/v1/categories/", categories)

	mux.Handle("/api/v1/statistics/", handler.NewStatsHandler(svcs.Stats, svcs.StatsDefaultDays))

	return mux
}
