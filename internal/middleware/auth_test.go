package middleware_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/task-api/internal/middleware"
)

const (
	testIssuer   = "https://cognito-idp.ap-northeast-2.amazonaws.com/pool-1"
	testClientID = "client-1"
	testKid      = "jwt-test-kid"
)

type resolverFunc func(ctx context.Context, sub string) (string, error)

func (f resolverFunc) ResolveUserID(ctx context.Context, sub string) (string, error) {
	return f(ctx, sub)
}

// knownSubs resolves cognito-sub-123 to user-123 and nothing else.
var knownSubs = resolverFunc(func(ctx context.Context, sub string) (string, error) {
	if sub == "cognito-sub-123" {
		return "user-123", nil
	}
	return "", middleware.ErrUserNotFound
})

func signedToken(t *testing.T, privKey *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(privKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func jwksServer(t *testing.T, kid string, privKey *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	data := jwksDocument(t, kid, privKey)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAuth(t *testing.T, cfg middleware.AuthConfig) *middleware.Auth {
	t.Helper()
	auth, err := middleware.NewAuth(cfg)
	if err != nil {
		t.Fatalf("NewAuth() error = %v", err)
	}
	return auth
}

// capture returns a handler recording the user id it was called with.
func capture(userID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*userID = middleware.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Code
}

func TestNewAuth_RequiresVerifierOutsideDevMode(t *testing.T) {
	if _, err := middleware.NewAuth(middleware.AuthConfig{}); err == nil {
		t.Error("expected error without resolver and JWKS client")
	}
	if _, err := middleware.NewAuth(middleware.AuthConfig{UserResolver: knownSubs}); err == nil {
		t.Error("expected error without JWKS client")
	}
	if _, err := middleware.NewAuth(middleware.AuthConfig{DevMode: true}); err != nil {
		t.Errorf("dev mode needs nothing else, got %v", err)
	}
}

func TestAuth_DevMode(t *testing.T) {
	auth := newAuth(t, middleware.AuthConfig{DevMode: true})

	tests := []struct {
		name       string
		userIDHdr  string
		wantStatus int
		wantUserID string
	}{
		{"with X-User-ID", "dev-user-1", http.StatusOK, "dev-user-1"},
		{"without X-User-ID", "", http.StatusUnauthorized, ""},
		{"blank X-User-ID", "   ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.userIDHdr != "" {
				req.Header.Set("X-User-ID", tt.userIDHdr)
			}
			w := httptest.NewRecorder()

			auth.Middleware(capture(&got)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got != tt.wantUserID {
				t.Errorf("expected userID=%q, got %q", tt.wantUserID, got)
			}
		})
	}
}

func TestAuth_SkipsPublicPaths(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"jwt mode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := middleware.AuthConfig{DevMode: tt.devMode}
			if !tt.devMode {
				cfg.JWKSClient = middleware.NewJWKSClient("http://unused")
				cfg.UserResolver = knownSubs
			}
			auth := newAuth(t, cfg)

			paths := []string{
				"/health",
				"/api/v1/auth/signup",
				"/api/v1/auth/login",
				"/api/v1/auth/confirm-signup",
				"/api/v1/auth/refresh",
				"/api/v1/auth/logout",
			}
			for _, p := range paths {
				var got string
				w := httptest.NewRecorder()
				auth.Middleware(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, p, nil))
				if w.Code != http.StatusOK {
					t.Errorf("%s: expected 200, got %d", p, w.Code)
				}
			}
		})
	}
}

func TestAuth_PublicTaskListingRequiresAuth(t *testing.T) {
	auth := newAuth(t, middleware.AuthConfig{DevMode: true})
	var got string
	w := httptest.NewRecorder()

	auth.Middleware(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/public", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_JWT(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	srv := jwksServer(t, testKid, privKey)

	validClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":       "cognito-sub-123",
			"iss":       testIssuer,
			"aud":       testClientID,
			"exp":       time.Now().Add(time.Hour).Unix(),
			"token_use": "id",
		}
	}
	with := func(key string, value any) jwt.MapClaims {
		c := validClaims()
		if value == nil {
			delete(c, key)
		} else {
			c[key] = value
		}
		return c
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
		wantCode   string
	}{
		{
			name:       "valid id token",
			header:     "Bearer " + signedToken(t, privKey, testKid, validClaims()),
			wantStatus: http.StatusOK,
			wantUserID: "user-123",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "not bearer",
			header:     "NotBearer token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "expired",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("exp", time.Now().Add(-time.Hour).Unix())),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no expiry",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("exp", nil)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong issuer",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("iss", "https://wrong-issuer.example.com")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong audience",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("aud", "someone-else")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "access token",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("token_use", "access")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "signed by unknown key",
			header:     "Bearer " + signedToken(t, otherKey, testKid, validClaims()),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			header:     "Bearer " + signedToken(t, privKey, testKid, with("sub", "cognito-sub-999")),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
	}

	auth := newAuth(t, middleware.AuthConfig{
		JWKSClient:   middleware.NewJWKSClient(srv.URL),
		Issuer:       testIssuer,
		AppClientID:  testClientID,
		UserResolver: knownSubs,
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			auth.Middleware(capture(&got)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if got != tt.wantUserID {
				t.Errorf("expected userID=%q, got %q", tt.wantUserID, got)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
			}
		})
	}
}

func TestAuth_JWT_ResolverFailure(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	srv := jwksServer(t, testKid, privKey)

	auth := newAuth(t, middleware.AuthConfig{
		JWKSClient:  middleware.NewJWKSClient(srv.URL),
		Issuer:      testIssuer,
		AppClientID: testClientID,
		UserResolver: resolverFunc(func(ctx context.Context, sub string) (string, error) {
			return "", errors.New("connection refused")
		}),
	})

	token := signedToken(t, privKey, testKid, jwt.MapClaims{
		"sub":       "cognito-sub-123",
		"iss":       testIssuer,
		"aud":       testClientID,
		"exp":       time.Now().Add(time.Hour).Unix(),
		"token_use": "id",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	var got string
	auth.Middleware(capture(&got)).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
}
