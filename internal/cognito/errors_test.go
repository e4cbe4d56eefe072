package cognito

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
)

func TestLookupError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{ErrUserNotConfirmed, http.StatusForbidden, "USER_NOT_CONFIRMED"},
		{ErrInvalidPassword, http.StatusBadRequest, "INVALID_PASSWORD"},
		{ErrInvalidCode, http.StatusBadRequest, "INVALID_CODE"},
		{ErrCodeExpired, http.StatusBadRequest, "CODE_EXPIRED"},
		{ErrTooManyRequests, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{ErrNotAuthorized, http.StatusUnauthorized, "NOT_AUTHORIZED"},
		{ErrInvalidParameter, http.StatusBadRequest, "INVALID_PARAMETER"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			info, ok := LookupError(fmt.Errorf("wrapped: %w", tt.err))
			if !ok {
				t.Fatalf("expected LookupError to find %v", tt.err)
			}
			if info.Status != tt.wantStatus || info.Code != tt.wantCode {
				t.Errorf("got %+v, want %d %s", info, tt.wantStatus, tt.wantCode)
			}
		})
	}

	if _, ok := LookupError(errors.New("unknown error")); ok {
		t.Error("expected LookupError to return false for unknown error")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"username exists", &smithy.GenericAPIError{Code: "UsernameExistsException", Message: "taken"}, ErrUserAlreadyExists},
		{"limit exceeded", &smithy.GenericAPIError{Code: "LimitExceededException"}, ErrTooManyRequests},
		{"reset required", &smithy.GenericAPIError{Code: "PasswordResetRequiredException"}, ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translate() = %v, want wrapping %v", got, tt.want)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		if err := translate(nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("unknown api error keeps original", func(t *testing.T) {
		orig := &smithy.GenericAPIError{Code: "InternalErrorException"}
		got := translate(orig)
		if _, ok := LookupError(got); ok {
			t.Errorf("expected no sentinel for %v", got)
		}
		var apiErr smithy.APIError
		if !errors.As(got, &apiErr) {
			t.Errorf("expected original api error to be wrapped, got %v", got)
		}
	})
}
