package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUserNotFound is returned by UserResolver when no user matches the given Cognito sub.
var ErrUserNotFound = errors.New("user not found")

// authError is a credential problem reported to the caller as a 401.
type authError struct {
	message string
}

func (e *authError) Error() string { return e.message }

func unauthenticated(message string) error {
	return &authError{message: message}
}

// UserResolver resolves a Cognito sub claim to a database user ID.
// Implementations must return ErrUserNotFound (or a wrapped form) when the user does not exist.
type UserResolver interface {
	ResolveUserID(ctx context.Context, cognitoSub string) (string, error)
}

type AuthConfig struct {
	DevMode      bool
	JWKSClient   *JWKSClient
	Issuer       string
	AppClientID  string
	UserResolver UserResolver
}

// Auth is the guard in front of every task, category, statistics and user
// route. In dev mode the caller is taken from X-User-ID; otherwise a Cognito
// ID token must be presented as a bearer token.
type Auth struct {
	cfg AuthConfig
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if !cfg.DevMode {
		if cfg.UserResolver == nil {
			return nil, fmt.Errorf("middleware: UserResolver is required when DevMode is false")
		}
		if cfg.JWKSClient == nil {
			return nil, fmt.Errorf("middleware: JWKSClient is required when DevMode is false")
		}
	}
	return &Auth{cfg: cfg}, nil
}

// public reports whether a path is reachable without credentials.
func public(p string) bool {
	p = path.Clean(p)
	return p == "/health" || strings.HasPrefix(p, "/api/v1/auth/")
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if public(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var (
			userID string
			err    error
		)
		if a.cfg.DevMode {
			userID, err = devUser(r)
		} else {
			userID, err = a.tokenUser(r)
		}

		var authErr *authError
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
		case errors.As(err, &authErr):
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", authErr.message)
		default:
			slog.ErrorContext(r.Context(), "user resolution failed",
				"request_id", RequestIDFrom(r.Context()),
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	})
}

func devUser(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		return "", unauthenticated("X-User-ID header required in dev mode")
	}
	return userID, nil
}

func (a *Auth) tokenUser(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", unauthenticated("authorization header required")
	}
	tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenStr == "" {
		return "", unauthenticated("invalid authorization header format")
	}

	sub, err := a.verify(r.Context(), tokenStr)
	if err != nil {
		slog.DebugContext(r.Context(), "token rejected", "error", err)
		return "", unauthenticated("invalid or expired token")
	}

	userID, err := a.cfg.UserResolver.ResolveUserID(r.Context(), sub)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", unauthenticated("user not found")
		}
		return "", err
	}
	return userID, nil
}

// verify checks signature, issuer, audience and expiry of a Cognito ID
// token and returns its subject.
func (a *Auth) verify(ctx context.Context, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}
		return a.cfg.JWKSClient.GetKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.AppClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	if use, _ := claims["token_use"].(string); use != "id" {
		return "", fmt.Errorf("token_use %q is not an id token", use)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("sub claim not found")
	}
	return sub, nil
}
