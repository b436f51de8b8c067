package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenPrefersHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/passes?token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-header", ExtractToken(r))
}

func TestExtractTokenQueryFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/passes/123/qr.png?token=from-query", nil)
	assert.Equal(t, "from-query", ExtractToken(r))
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()
	orgID := uuid.New()
	token, err := svc.Issue(StaffClaims(userID, orgID, RoleHost, "Ada", "ada@example.com"))
	require.NoError(t, err)

	var got *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/passes", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	NewMiddleware(svc).Authenticate(next).ServeHTTP(w, r)

	require.NotNil(t, got)
	assert.Equal(t, KindStaff, got.Kind)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, orgID, got.OrgID)
}

func TestAuthenticateMissingToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	r := httptest.NewRequest(http.MethodGet, "/passes", nil)
	w := httptest.NewRecorder()
	NewMiddleware(svc).Authenticate(next).ServeHTTP(w, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r = r.WithContext(WithPrincipal(r.Context(), &Principal{Kind: KindStaff, Role: RoleHost}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/users", nil)
	r = r.WithContext(WithPrincipal(r.Context(), &Principal{Kind: KindStaff, Role: RoleAdmin}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
