package identity

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
)

type fakeOrgs struct {
	orgs map[uuid.UUID]*models.Organization
}

func (f *fakeOrgs) Create(_ context.Context, name string) (*models.Organization, error) {
	o := &models.Organization{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.orgs[o.ID] = o
	return o, nil
}

func (f *fakeOrgs) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, apperr.NotFound("organization not found")
}

func (f *fakeOrgs) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Organization, error) {
	var out []models.Organization
	for _, id := range ids {
		if o, ok := f.orgs[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrgs) SetCreatedBy(_ context.Context, orgID, userID uuid.UUID) error {
	if o, ok := f.orgs[orgID]; ok {
		o.CreatedByUserID = &userID
		return nil
	}
	return apperr.NotFound("organization not found")
}

type fakeUsers struct {
	users []*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	cp := *u
	cp.ID = uuid.New()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.users = append(f.users, &cp)
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) FindAccountByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Role == auth.RoleAccount && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, apperr.NotFound("account not found")
}

type fakeVisitors struct {
	visitors []*models.Visitor
}

func (f *fakeVisitors) Create(_ context.Context, v *models.Visitor) (*models.Visitor, error) {
	for _, existing := range f.visitors {
		if existing.OrgID == v.OrgID && strings.EqualFold(existing.Email, v.Email) {
			return nil, apperr.Conflict("a visitor with this email already exists for this organization")
		}
	}
	cp := *v
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	f.visitors = append(f.visitors, &cp)
	return &cp, nil
}

func (f *fakeVisitors) GetByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	for _, v := range f.visitors {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperr.NotFound("visitor not found")
}

func (f *fakeVisitors) FindFirstByEmail(_ context.Context, email string) (*models.Visitor, error) {
	for _, v := range f.visitors {
		if strings.EqualFold(v.Email, email) {
			return v, nil
		}
	}
	return nil, apperr.NotFound("visitor not found")
}

type fakeAudit struct {
	entries []audit.Entry
}

func (f *fakeAudit) Record(_ context.Context, e audit.Entry) { f.entries = append(f.entries, e) }

type fixture struct {
	svc      *Service
	orgs     *fakeOrgs
	users    *fakeUsers
	visitors *fakeVisitors
	tokens   *auth.TokenService
	audit    *fakeAudit
}

func newFixture() *fixture {
	f := &fixture{
		orgs:     &fakeOrgs{orgs: map[uuid.UUID]*models.Organization{}},
		users:    &fakeUsers{},
		visitors: &fakeVisitors{},
		tokens:   auth.NewTokenService("test-secret", time.Hour),
		audit:    &fakeAudit{},
	}
	f.svc = NewService(f.orgs, f.users, f.visitors, f.tokens, f.audit)
	return f
}

func TestRegisterOrgBootstrapsTenant(t *testing.T) {
	f := newFixture()

	result, err := f.svc.RegisterOrg(context.Background(), RegisterOrgRequest{
		OrgName:    "Acme",
		AdminName:  "Ada",
		AdminEmail: "Ada@Example.com",
		Password:   "correct horse",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Org)
	assert.Equal(t, "Acme", result.Org.Name)
	assert.Equal(t, auth.RoleAdmin, result.User.Role)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)

	// The token must resolve to staff scoped to the new org.
	p, err := f.tokens.Resolve(result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindStaff, p.Kind)
	assert.Equal(t, result.Org.ID, p.OrgID)

	org := f.orgs.orgs[result.Org.ID]
	require.NotNil(t, org.CreatedByUserID)
	assert.Equal(t, result.User.ID, *org.CreatedByUserID)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, audit.ActionOrgRegistered, f.audit.entries[0].Action)
}

func TestLoginPrefersNonDisabledNewest(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")
	hash := mustHash(t, "pw12345678")

	base := time.Now()
	f.users.users = append(f.users.users,
		&models.User{ID: uuid.New(), OrgID: &orgID, Email: "dup@example.com", Role: auth.RoleHost, Status: models.UserStatusDisabled, PasswordHash: mustHash(t, "other-password"), CreatedAt: base.Add(2 * time.Hour)},
		&models.User{ID: uuid.New(), OrgID: &orgID, Email: "dup@example.com", Role: auth.RoleSecurity, Status: models.UserStatusActive, PasswordHash: hash, CreatedAt: base.Add(time.Hour)},
		&models.User{ID: uuid.New(), OrgID: &orgID, Email: "dup@example.com", Role: auth.RoleHost, Status: models.UserStatusActive, PasswordHash: mustHash(t, "oldest-password"), CreatedAt: base},
	)

	// The newest row is disabled; the newest active row must win.
	result, err := f.svc.Login(context.Background(), "dup@example.com", "pw12345678")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSecurity, result.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")
	f.users.users = append(f.users.users, &models.User{
		ID: uuid.New(), OrgID: &orgID, Email: "a@example.com", Role: auth.RoleAdmin,
		Status: models.UserStatusActive, PasswordHash: mustHash(t, "right"), CreatedAt: time.Now(),
	})

	_, err := f.svc.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestLoginRejectsVisitorRole(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")
	f.users.users = append(f.users.users, &models.User{
		ID: uuid.New(), OrgID: &orgID, Email: "v@example.com", Role: auth.RoleVisitor,
		Status: models.UserStatusActive, PasswordHash: mustHash(t, "pw12345678"), CreatedAt: time.Now(),
	})

	_, err := f.svc.Login(context.Background(), "v@example.com", "pw12345678")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestVisitorLoginIssuesVisitorToken(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")
	v, err := f.visitors.Create(context.Background(), &models.Visitor{OrgID: orgID, FirstName: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	result, err := f.svc.VisitorLogin(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	p, err := f.tokens.Resolve(result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindVisitor, p.Kind)
	assert.Equal(t, v.ID, p.VisitorID)
	assert.Equal(t, orgID, p.OrgID)
}

func TestVisitorLoginUnknownEmail(t *testing.T) {
	f := newFixture()
	_, err := f.svc.VisitorLogin(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRegisterVisitorAutoLogin(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")

	result, err := f.svc.RegisterVisitor(context.Background(), RegisterVisitorRequest{
		OrgID: orgID, FirstName: "Grace", Email: "Grace@Example.com", AutoLogin: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)

	// Same email under the same org conflicts.
	_, err = f.svc.RegisterVisitor(context.Background(), RegisterVisitorRequest{
		OrgID: orgID, FirstName: "Grace", Email: "grace@example.com", AutoLogin: true,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterVisitorSameEmailDifferentOrgs(t *testing.T) {
	f := newFixture()
	orgA := mustOrg(f, "A")
	orgB := mustOrg(f, "B")

	_, err := f.svc.RegisterVisitor(context.Background(), RegisterVisitorRequest{OrgID: orgA, FirstName: "G", Email: "g@example.com"})
	require.NoError(t, err)
	_, err = f.svc.RegisterVisitor(context.Background(), RegisterVisitorRequest{OrgID: orgB, FirstName: "G", Email: "g@example.com"})
	require.NoError(t, err)
}

func TestRegisterVisitorUnknownOrg(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RegisterVisitor(context.Background(), RegisterVisitorRequest{OrgID: uuid.New(), FirstName: "G", Email: "g@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAccountRegisterAndLogin(t *testing.T) {
	f := newFixture()

	reg, err := f.svc.RegisterAccount(context.Background(), RegisterAccountRequest{
		Name: "Alan", Email: "Alan@Example.com", Password: "pw12345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "alan@example.com", reg.User.Email)
	assert.Equal(t, auth.RoleAccount, reg.User.Role)
	assert.Empty(t, reg.Token, "registration does not log the account in")

	result, err := f.svc.AccountLogin(context.Background(), "alan@example.com", "pw12345678")
	require.NoError(t, err)
	p, err := f.tokens.Resolve(result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAccount, p.Kind)
	assert.Equal(t, uuid.Nil, p.OrgID)

	_, err = f.svc.AccountLogin(context.Background(), "alan@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestRegisterAccountDuplicateEmail(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RegisterAccount(context.Background(), RegisterAccountRequest{Name: "A", Email: "dup@example.com", Password: "pw12345678"})
	require.NoError(t, err)

	_, err = f.svc.RegisterAccount(context.Background(), RegisterAccountRequest{Name: "B", Email: "dup@example.com", Password: "pw12345678"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAccountLoginNeverMatchesStaff(t *testing.T) {
	f := newFixture()
	orgID := mustOrg(f, "Acme")
	f.users.users = append(f.users.users, &models.User{
		ID: uuid.New(), OrgID: &orgID, Email: "staff@example.com", Role: auth.RoleAdmin,
		Status: models.UserStatusActive, PasswordHash: mustHash(t, "pw12345678"), CreatedAt: time.Now(),
	})

	_, err := f.svc.AccountLogin(context.Background(), "staff@example.com", "pw12345678")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestMyOrgsMergesPrimaryAndMemberships(t *testing.T) {
	f := newFixture()
	orgA := mustOrg(f, "A")
	orgB := mustOrg(f, "B")

	userID := uuid.New()
	f.users.users = append(f.users.users, &models.User{
		ID: userID, OrgID: &orgA, OrgIDs: []uuid.UUID{orgA, orgB}, Email: "s@example.com", Role: auth.RoleAdmin,
	})

	orgs, err := f.svc.MyOrgs(context.Background(), &auth.Principal{Kind: auth.KindStaff, UserID: userID, OrgID: orgA, Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, orgs, 2)
}

func mustOrg(f *fixture, name string) uuid.UUID {
	o, _ := f.orgs.Create(context.Background(), name)
	return o.ID
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}
