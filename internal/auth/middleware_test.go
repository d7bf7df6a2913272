package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrocampo/campo-api/internal/auth"
	"github.com/agrocampo/campo-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddleware() *auth.Middleware {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			APIKey:    "clave-sistema",
		},
	}
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func captureUser(t *testing.T, dst **auth.UserContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		*dst = userCtx
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_APIKeyActsAsSystemUser(t *testing.T) {
	m := newTestMiddleware()
	var got *auth.UserContext
	handler := m.Authenticate(captureUser(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", "clave-sistema")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "system", got.UserID)
	assert.True(t, got.IsAdmin())
}

func TestAuthenticate_RejectsWrongAPIKey(t *testing.T) {
	m := newTestMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", "clave-incorrecta")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BearerToken(t *testing.T) {
	m := newTestMiddleware()
	var got *auth.UserContext
	handler := m.Authenticate(captureUser(t, &got))

	token := signToken(t, testSecret, jwt.SigningMethodHS256, defaultClaims())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "user-123", got.UserID)
}

func TestAuthenticate_MissingAndMalformedHeaders(t *testing.T) {
	m := newTestMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticate_ExpiredTokenMessage(t *testing.T) {
	m := newTestMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	claims := defaultClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestRequireAPIKey(t *testing.T) {
	m := newTestMiddleware()
	handler := m.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/triggers/document-change", nil)
	req.Header.Set("x-api-key", "clave-sistema")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/triggers/document-change", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAPIKey_EmptyConfiguredKeyDeniesAll(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: testSecret}}
	m := auth.NewMiddleware(cfg, zap.NewNop())
	handler := m.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/triggers/document-change", nil)
	req.Header.Set("x-api-key", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	m := newTestMiddleware()
	protected := m.RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No user context at all.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Operator lacks the admin role.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: "user-123",
		Roles:  []string{auth.RoleOperator},
	}))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin passes.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: "user-123",
		Roles:  []string{auth.RoleAdmin},
	}))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
