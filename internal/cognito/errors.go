package cognito

import (
	"errors"
	"net/http"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotConfirmed  = errors.New("user not confirmed")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidCode       = errors.New("invalid code")
	ErrCodeExpired       = errors.New("code expired")
	ErrTooManyRequests   = errors.New("too many requests")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// ErrorInfo is the HTTP rendering of a Cognito failure.
type ErrorInfo struct {
	Status int
	Code   string
}

var errorInfos = []struct {
	err  error
	info ErrorInfo
}{
	{ErrUserAlreadyExists, ErrorInfo{http.StatusConflict, "USER_ALREADY_EXISTS"}},
	{ErrUserNotFound, ErrorInfo{http.StatusNotFound, "USER_NOT_FOUND"}},
	{ErrUserNotConfirmed, ErrorInfo{http.StatusForbidden, "USER_NOT_CONFIRMED"}},
	{ErrInvalidPassword, ErrorInfo{http.StatusBadRequest, "INVALID_PASSWORD"}},
	{ErrInvalidCode, ErrorInfo{http.StatusBadRequest, "INVALID_CODE"}},
	{ErrCodeExpired, ErrorInfo{http.StatusBadRequest, "CODE_EXPIRED"}},
	{ErrTooManyRequests, ErrorInfo{http.StatusTooManyRequests, "TOO_MANY_REQUESTS"}},
	{ErrNotAuthorized, ErrorInfo{http.StatusUnauthorized, "NOT_AUTHORIZED"}},
	{ErrInvalidParameter, ErrorInfo{http.StatusBadRequest, "INVALID_PARAMETER"}},
}

// LookupError reports the HTTP rendering of err if it wraps a known sentinel.
func LookupError(err error) (ErrorInfo, bool) {
	for _, e := range errorInfos {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}
	return ErrorInfo{}, false
}
