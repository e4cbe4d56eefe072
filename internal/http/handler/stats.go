package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jaekwang-park/task-api/internal/service"
)

type StatsHandler struct {
	svc         *service.StatsService
	defaultDays int
}

// NewStatsHandler creates the statistics handler. defaultDays is the daily
// window used when the request carries no days parameter.
func NewStatsHandler(svc *service.StatsService, defaultDays int) *StatsHandler {
	return &StatsHandler{svc: svc, defaultDays: defaultDays}
}

// ServeHTTP routes /api/v1/statistics/{view}
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	view := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/statistics"), "/")
	ctx, userID := r.Context(), getUserID(r)

	var (
		out any
		err error
	)
	switch view {
	case "completion":
		out, err = h.svc.Completion(ctx, userID)
	case "daily":
		days, ok := h.days(w, r)
		if !ok {
			return
		}
		out, err = h.svc.Daily(ctx, userID, days)
	case "category":
		out, err = h.svc.Categories(ctx, userID)
	case "priority":
		out, err = h.svc.Priorities(ctx, userID)
	case "overdue":
		out, err = h.svc.Overdue(ctx, userID)
	case "summary":
		days, ok := h.days(w, r)
		if !ok {
			return
		}
		out, err = h.svc.Summary(ctx, userID, days)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *StatsHandler) days(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return h.defaultDays, true
	}
	days, err := strconv.Atoi(v)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "days must be an integer")
		return 0, false
	}
	return days, true
}
