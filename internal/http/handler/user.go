package handler

import (
	"net/http"
	"strings"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ServeHTTP serves /api/v1/users/me
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.TrimRight(r.URL.Path, "/") != "/api/v1/users/me" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.svc.Me(r.Context(), getUserID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)
	case http.MethodPatch, http.MethodPut:
		var patch model.ProfilePatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		user, err := h.svc.UpdateProfile(r.Context(), getUserID(r), patch)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)
	default:
		methodNotAllowed(w)
	}
}
