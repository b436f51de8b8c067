package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passdesk/passdesk/internal/apperr"
)

func TestTokenRoundTripStaff(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()
	orgID := uuid.New()

	token, err := svc.Issue(StaffClaims(userID, orgID, RoleAdmin, "Ada", "ada@example.com"))
	require.NoError(t, err)

	p, err := svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, KindStaff, p.Kind)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, orgID, p.OrgID)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.Equal(t, "ada@example.com", p.Email)
}

func TestTokenRoundTripVisitor(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	visitorID := uuid.New()
	orgID := uuid.New()

	token, err := svc.Issue(VisitorClaims(visitorID, orgID, "Grace Hopper", "grace@example.com"))
	require.NoError(t, err)

	p, err := svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, KindVisitor, p.Kind)
	assert.Equal(t, visitorID, p.VisitorID)
	assert.Equal(t, visitorID, p.UserID)
	assert.Equal(t, orgID, p.OrgID)
}

func TestTokenRoundTripAccount(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(AccountClaims(userID, "Alan", "alan@example.com"))
	require.NoError(t, err)

	p, err := svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, KindAccount, p.Kind)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, uuid.Nil, p.OrgID)
	assert.Equal(t, uuid.Nil, p.VisitorID)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue(AccountClaims(uuid.New(), "", "x@example.com"))
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Resolve(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestTokenInvalidRoleForbidden(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, err := svc.Issue(Claims{UserID: uuid.NewString(), Role: "superuser"})
	require.NoError(t, err)

	_, err = svc.Resolve(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestTokenExpiryEnforced(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(AccountClaims(uuid.New(), "", "x@example.com"))
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Resolve(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestTokenGarbageRejected(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	_, err := svc.Resolve("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}
