package pass

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/models"
	"github.com/passdesk/passdesk/internal/queue"
	"github.com/passdesk/passdesk/internal/store"
)

// In-memory fakes backing the service tests. They implement the same repo
// interfaces the pgx stores do, with just enough filtering behavior to
// exercise the service logic.

type fakePassRepo struct {
	passes []*models.Pass
}

func (f *fakePassRepo) Create(_ context.Context, p *models.Pass) (*models.Pass, error) {
	cp := *p
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	f.passes = append(f.passes, &cp)
	return &cp, nil
}

func (f *fakePassRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Pass, error) {
	for _, p := range f.passes {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperr.NotFound("pass not found")
}

func (f *fakePassRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Pass, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	return p, nil
}

func (f *fakePassRepo) matches(p *models.Pass, fl store.ListFilter) bool {
	if fl.OrgID != nil && p.OrgID != *fl.OrgID {
		return false
	}
	if fl.VisitorID != nil && p.VisitorID != *fl.VisitorID {
		return false
	}
	if len(fl.VisitorIDs) > 0 {
		found := false
		for _, id := range fl.VisitorIDs {
			if p.VisitorID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if fl.Status != "" && p.Status != fl.Status {
		return false
	}
	return true
}

func (f *fakePassRepo) List(_ context.Context, fl store.ListFilter, limit, offset int) ([]*models.Pass, error) {
	var matched []*models.Pass
	for _, p := range f.passes {
		if f.matches(p, fl) {
			matched = append(matched, p)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakePassRepo) Count(_ context.Context, fl store.ListFilter) (int, error) {
	n := 0
	for _, p := range f.passes {
		if f.matches(p, fl) {
			n++
		}
	}
	return n, nil
}

func (f *fakePassRepo) CountByOrg(_ context.Context, visitorIDs []uuid.UUID) ([]models.OrgVisitSummary, error) {
	counts := make(map[uuid.UUID]int)
	for _, p := range f.passes {
		for _, id := range visitorIDs {
			if p.VisitorID == id {
				counts[p.OrgID]++
			}
		}
	}
	var out []models.OrgVisitSummary
	for orgID, n := range counts {
		out = append(out, models.OrgVisitSummary{OrgID: orgID, Passes: n})
	}
	return out, nil
}

type fakeVisitorRepo struct {
	visitors []*models.Visitor
}

func (f *fakeVisitorRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	for _, v := range f.visitors {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperr.NotFound("visitor not found")
}

func (f *fakeVisitorRepo) GetInOrg(_ context.Context, id, orgID uuid.UUID) (*models.Visitor, error) {
	for _, v := range f.visitors {
		if v.ID == id && v.OrgID == orgID {
			return v, nil
		}
	}
	return nil, apperr.NotFound("visitor not found")
}

func (f *fakeVisitorRepo) FindAllByEmail(_ context.Context, email string) ([]*models.Visitor, error) {
	var out []*models.Visitor
	for _, v := range f.visitors {
		if strings.EqualFold(v.Email, email) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitorRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Visitor, error) {
	out := make(map[uuid.UUID]*models.Visitor)
	for _, v := range f.visitors {
		for _, id := range ids {
			if v.ID == id {
				out[v.ID] = v
			}
		}
	}
	return out, nil
}

type fakeApptRepo struct {
	appts []*models.Appointment
}

func (f *fakeApptRepo) GetForOrgVisitor(_ context.Context, id, orgID, visitorID uuid.UUID) (*models.Appointment, error) {
	for _, a := range f.appts {
		if a.ID == id && a.OrgID == orgID && a.VisitorID == visitorID {
			return a, nil
		}
	}
	return nil, apperr.NotFound("appointment not found for this visitor/org")
}

type fakeOrgRepo struct {
	names map[uuid.UUID]string
}

func (f *fakeOrgRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users []*models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

type fakeEnqueuer struct {
	qrPayloads    []queue.RenderQRPayload
	emailPayloads []queue.SendEmailPayload
}

func (f *fakeEnqueuer) EnqueueRenderQR(p queue.RenderQRPayload) error {
	f.qrPayloads = append(f.qrPayloads, p)
	return nil
}

func (f *fakeEnqueuer) EnqueueSendEmail(p queue.SendEmailPayload) error {
	f.emailPayloads = append(f.emailPayloads, p)
	return nil
}

type fakeStorage struct{}

func (fakeStorage) Save(context.Context, string, []byte) error { return nil }

func (fakeStorage) Open(context.Context, string) (io.ReadCloser, error) { return nil, nil }

func (fakeStorage) PublicURL(relPath string) string { return "/uploads/" + relPath }

type fakeAudit struct {
	entries []audit.Entry
}

func (f *fakeAudit) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}
