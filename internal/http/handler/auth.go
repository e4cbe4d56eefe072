package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/task-api/internal/cognito"
	"github.com/jaekwang-park/task-api/internal/middleware"
	"github.com/jaekwang-park/task-api/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// ServeHTTP routes /api/v1/auth/* requests. Every endpoint is a POST.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/auth/"), "/")

	handlers := map[string]http.HandlerFunc{
		"signup":          h.handleSignUp,
		"confirm-signup":  h.handleConfirmSignUp,
		"login":           h.handleLogin,
		"refresh":         h.handleRefresh,
		"change-password": h.handleChangePassword,
		"logout":          h.handleLogout,
	}
	next, ok := handlers[action]
	if !ok {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	next(w, r)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmSignUpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	AccessToken      string `json:"access_token"`
	PreviousPassword string `json:"previous_password"`
	NewPassword      string `json:"new_password"`
}

type logoutRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, out)
}

func (h *AuthHandler) handleConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	var req confirmSignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ConfirmSignUp(r.Context(), req.Email, req.Code); err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Refresh(r.Context(), req.Email, req.RefreshToken)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), req.AccessToken, req.PreviousPassword, req.NewPassword); err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Logout(r.Context(), req.AccessToken); err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

var cognitoMessages = map[string]string{
	"USER_ALREADY_EXISTS": "a user with this email already exists",
	"USER_NOT_FOUND":      "user not found",
	"USER_NOT_CONFIRMED":  "email address not confirmed",
	"INVALID_PASSWORD":    "password does not meet requirements",
	"INVALID_CODE":        "invalid verification code",
	"CODE_EXPIRED":        "verification code has expired",
	"TOO_MANY_REQUESTS":   "too many requests, please try again later",
	"NOT_AUTHORIZED":      "incorrect credentials",
	"INVALID_PARAMETER":   "invalid request parameter",
}

// handleAuthError maps identity provider and service errors to HTTP
// responses. Provider details are logged, never returned.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.RequestIDFrom(r.Context())

	if info, ok := cognito.LookupError(err); ok {
		slog.WarnContext(r.Context(), "auth error", "request_id", requestID, "code", info.Code, "detail", err.Error())
		msg, ok := cognitoMessages[info.Code]
		if !ok {
			msg = "an error occurred"
		}
		WriteError(w, info.Status, info.Code, msg)
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	slog.ErrorContext(r.Context(), "auth internal error", "request_id", requestID, "error", err.Error())
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
