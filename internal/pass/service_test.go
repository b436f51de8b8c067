package pass

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/authz"
	"github.com/passdesk/passdesk/internal/models"
)

type serviceFixture struct {
	svc      *Service
	passes   *fakePassRepo
	visitors *fakeVisitorRepo
	appts    *fakeApptRepo
	orgs     *fakeOrgRepo
	users    *fakeUserRepo
	tasks    *fakeEnqueuer
	audit    *fakeAudit
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		passes:   &fakePassRepo{},
		visitors: &fakeVisitorRepo{},
		appts:    &fakeApptRepo{},
		orgs:     &fakeOrgRepo{names: map[uuid.UUID]string{}},
		users:    &fakeUserRepo{},
		tasks:    &fakeEnqueuer{},
		audit:    &fakeAudit{},
	}
	az := authz.New(f.users, f.visitors)
	f.svc = NewService(f.passes, f.visitors, f.appts, f.orgs, f.users, az, f.tasks, fakeStorage{}, f.audit)
	return f
}

func (f *serviceFixture) addStaff(orgID uuid.UUID) *auth.Principal {
	userID := uuid.New()
	f.users.users = append(f.users.users, &models.User{
		ID: userID, OrgID: &orgID, OrgIDs: []uuid.UUID{orgID}, Role: auth.RoleHost, Status: models.UserStatusActive,
	})
	return &auth.Principal{Kind: auth.KindStaff, UserID: userID, OrgID: orgID, Role: auth.RoleHost}
}

func (f *serviceFixture) addVisitor(orgID uuid.UUID, email string) *models.Visitor {
	v := &models.Visitor{ID: uuid.New(), OrgID: orgID, FirstName: "Test", LastName: "Visitor", Email: email}
	f.visitors.visitors = append(f.visitors.visitors, v)
	return v
}

func TestIssueDefaultsToDayWindow(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	issuedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return issuedAt }

	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID})
	require.NoError(t, err)

	assert.Equal(t, issuedAt, created.ValidFrom)
	assert.Equal(t, issuedAt.Add(24*time.Hour), created.ValidTo)
	assert.Equal(t, models.PassStatusIssued, created.Status)
	assert.Regexp(t, codePattern, created.Code)
	assert.NotEmpty(t, created.QRPayload)
	assert.Equal(t, "/uploads/"+created.QRImagePath, created.QRImageURL)

	// Both side effects dispatched, and the issuance audited.
	require.Len(t, f.tasks.qrPayloads, 1)
	assert.Equal(t, created.Code, f.tasks.qrPayloads[0].Code)
	require.Len(t, f.tasks.emailPayloads, 1)
	assert.Equal(t, "v@example.com", f.tasks.emailPayloads[0].VisitorEmail)
	require.Len(t, f.audit.entries, 1)
}

func TestIssueUsesAppointmentWindow(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	appt := &models.Appointment{ID: uuid.New(), OrgID: orgID, VisitorID: visitor.ID, StartTime: start, EndTime: end}
	f.appts.appts = append(f.appts.appts, appt)

	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID, AppointmentID: &appt.ID})
	require.NoError(t, err)
	assert.Equal(t, start, created.ValidFrom)
	assert.Equal(t, end, created.ValidTo)
	require.NotNil(t, created.AppointmentID)
	assert.Equal(t, appt.ID, *created.AppointmentID)
}

func TestIssueExplicitWindowBeatsAppointment(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	apptStart := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{ID: uuid.New(), OrgID: orgID, VisitorID: visitor.ID, StartTime: apptStart, EndTime: apptStart.Add(time.Hour)}
	f.appts.appts = append(f.appts.appts, appt)

	from := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	to := from.Add(4 * time.Hour)
	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{
		VisitorID: visitor.ID, AppointmentID: &appt.ID, ValidFrom: &from, ValidTo: &to,
	})
	require.NoError(t, err)
	assert.Equal(t, from, created.ValidFrom)
	assert.Equal(t, to, created.ValidTo)
}

func TestIssueRejectsInvertedWindow(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	from := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID, ValidFrom: &from, ValidTo: &to})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Nothing persisted and no side effects dispatched.
	assert.Empty(t, f.passes.passes)
	assert.Empty(t, f.tasks.qrPayloads)
}

func TestIssueRequiresStaff(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	visitor := f.addVisitor(orgID, "v@example.com")

	for _, p := range []*auth.Principal{
		{Kind: auth.KindVisitor, VisitorID: uuid.New(), OrgID: orgID, Role: auth.RoleVisitor},
		{Kind: auth.KindAccount, UserID: uuid.New(), Email: "a@example.com", Role: auth.RoleAccount},
		{Kind: auth.KindAnonymous},
	} {
		_, err := f.svc.Issue(context.Background(), p, IssueRequest{VisitorID: visitor.ID})
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	}
}

func TestIssueRejectsVisitorOutsideOrg(t *testing.T) {
	f := newFixture()
	staff := f.addStaff(uuid.New())
	stranger := f.addVisitor(uuid.New(), "other@example.com")

	_, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: stranger.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRevokeIsIdempotent(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID})
	require.NoError(t, err)

	revoked, err := f.svc.Revoke(context.Background(), staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusRevoked, revoked.Status)
	audits := len(f.audit.entries)

	again, err := f.svc.Revoke(context.Background(), staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusRevoked, again.Status)
	assert.Len(t, f.audit.entries, audits, "second revoke must not audit again")
}

func TestRevokeDeniedOutsideOrg(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID})
	require.NoError(t, err)

	outsider := f.addStaff(uuid.New())
	_, err = f.svc.Revoke(context.Background(), outsider, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestGetUnknownPassIsNotFound(t *testing.T) {
	f := newFixture()
	staff := f.addStaff(uuid.New())

	_, err := f.svc.Get(context.Background(), staff, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetExistingPassDeniedIsForbidden(t *testing.T) {
	f := newFixture()
	orgID := uuid.New()
	staff := f.addStaff(orgID)
	visitor := f.addVisitor(orgID, "v@example.com")

	created, err := f.svc.Issue(context.Background(), staff, IssueRequest{VisitorID: visitor.ID})
	require.NoError(t, err)

	outsider := f.addStaff(uuid.New())
	_, err = f.svc.Get(context.Background(), outsider, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestResolveWindowPrecedence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	apptStart := now.Add(time.Hour)
	apptEnd := now.Add(3 * time.Hour)
	appt := &models.Appointment{StartTime: apptStart, EndTime: apptEnd}
	explicit := now.Add(30 * time.Minute)

	from, to, err := resolveWindow(now, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, now, from)
	assert.Equal(t, now.Add(24*time.Hour), to)

	from, to, err = resolveWindow(now, nil, nil, appt)
	require.NoError(t, err)
	assert.Equal(t, apptStart, from)
	assert.Equal(t, apptEnd, to)

	from, to, err = resolveWindow(now, &explicit, nil, appt)
	require.NoError(t, err)
	assert.Equal(t, explicit, from)
	assert.Equal(t, apptEnd, to)

	inverted := explicit.Add(-time.Hour)
	_, _, err = resolveWindow(now, &explicit, &inverted, nil)
	require.Error(t, err)
}
