package pass

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
	"github.com/passdesk/passdesk/internal/store"
)

type ListQuery struct {
	OrgID     *uuid.UUID
	VisitorID *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

type ListResult struct {
	Items []models.PassListItem `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

func emptyResult(q ListQuery) *ListResult {
	return &ListResult{Items: []models.PassListItem{}, Total: 0, Page: q.Page, Limit: q.Limit}
}

// List builds the filtered, paginated view each principal kind is entitled
// to. Staff see their org (or another org they belong to), visitors are
// pinned to their own passes, and accounts see every pass tied to their
// email across all organizations.
func (s *Service) List(ctx context.Context, p *auth.Principal, q ListQuery) (*ListResult, error) {
	q.normalize()

	switch p.Kind {
	case auth.KindAccount:
		return s.listForAccount(ctx, p, q)
	case auth.KindStaff, auth.KindVisitor:
		return s.listForOrg(ctx, p, q)
	default:
		return nil, apperr.Forbidden("forbidden")
	}
}

func (s *Service) listForOrg(ctx context.Context, p *auth.Principal, q ListQuery) (*ListResult, error) {
	orgID := p.OrgID
	if q.OrgID != nil {
		orgID = *q.OrgID
	}
	if err := s.authz.RequireOrgAccess(ctx, p, orgID); err != nil {
		return nil, err
	}

	filter := store.ListFilter{OrgID: &orgID}
	if p.Kind == auth.KindVisitor {
		// Visitors only ever see themselves, whatever they ask for.
		own := p.VisitorID
		if own == uuid.Nil {
			own = p.UserID
		}
		filter.VisitorID = &own
	} else {
		filter.Status = q.Status
		filter.VisitorID = q.VisitorID
	}

	return s.page(ctx, filter, q, false)
}

func (s *Service) listForAccount(ctx context.Context, p *auth.Principal, q ListQuery) (*ListResult, error) {
	email, err := s.emailOf(ctx, p)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return emptyResult(q), nil
	}

	visitors, err := s.visitors.FindAllByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(visitors) == 0 {
		return emptyResult(q), nil
	}

	visitorIDs := make([]uuid.UUID, len(visitors))
	for i, v := range visitors {
		visitorIDs[i] = v.ID
	}

	filter := store.ListFilter{VisitorIDs: visitorIDs, Status: q.Status}
	return s.page(ctx, filter, q, true)
}

// AccountPassesForOrg narrows an account's view to one organization; used
// by the account dashboard once an org is picked.
func (s *Service) AccountPassesForOrg(ctx context.Context, p *auth.Principal, orgID uuid.UUID, q ListQuery) (*ListResult, error) {
	if p.Kind != auth.KindAccount {
		return nil, apperr.Forbidden("forbidden")
	}
	q.normalize()

	email, err := s.emailOf(ctx, p)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, apperr.Unauthenticated("not authenticated")
	}

	visitors, err := s.visitors.FindAllByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var visitorIDs []uuid.UUID
	for _, v := range visitors {
		if v.OrgID == orgID {
			visitorIDs = append(visitorIDs, v.ID)
		}
	}
	if len(visitorIDs) == 0 {
		return emptyResult(q), nil
	}

	filter := store.ListFilter{OrgID: &orgID, VisitorIDs: visitorIDs, Status: q.Status}
	return s.page(ctx, filter, q, false)
}

// AccountOrganizations summarizes which organizations the account has
// visited, ordered by pass count. A materialized view in behavior only:
// recomputed on every call.
func (s *Service) AccountOrganizations(ctx context.Context, p *auth.Principal) ([]models.OrgVisitSummary, error) {
	if p.Kind != auth.KindAccount {
		return nil, apperr.Forbidden("forbidden")
	}

	email, err := s.emailOf(ctx, p)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return []models.OrgVisitSummary{}, nil
	}

	visitors, err := s.visitors.FindAllByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(visitors) == 0 {
		return []models.OrgVisitSummary{}, nil
	}

	visitorIDs := make([]uuid.UUID, len(visitors))
	for i, v := range visitors {
		visitorIDs[i] = v.ID
	}

	summaries, err := s.passes.CountByOrg(ctx, visitorIDs)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.OrgVisitSummary{}
	}
	return summaries, nil
}

// emailOf resolves the principal's email: token claim first, store lookup
// second. Empty result means "no identity to match", which callers treat
// as a normal empty view, not an error.
func (s *Service) emailOf(ctx context.Context, p *auth.Principal) (string, error) {
	if p.Email != "" {
		return strings.ToLower(p.Email), nil
	}
	if p.UserID == uuid.Nil {
		return "", nil
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", nil
		}
		return "", err
	}
	return strings.ToLower(u.Email), nil
}

func (s *Service) page(ctx context.Context, filter store.ListFilter, q ListQuery, withOrgNames bool) (*ListResult, error) {
	offset := (q.Page - 1) * q.Limit

	items, err := s.passes.List(ctx, filter, q.Limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.passes.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: make([]models.PassListItem, 0, len(items)), Total: total, Page: q.Page, Limit: q.Limit}
	if len(items) == 0 {
		return result, nil
	}

	visitorIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool)
	for _, it := range items {
		if !seen[it.VisitorID] {
			seen[it.VisitorID] = true
			visitorIDs = append(visitorIDs, it.VisitorID)
		}
	}
	visitorsByID, err := s.visitors.GetByIDs(ctx, visitorIDs)
	if err != nil {
		return nil, err
	}

	var orgNames map[uuid.UUID]string
	if withOrgNames {
		orgIDs := make([]uuid.UUID, 0)
		seenOrgs := make(map[uuid.UUID]bool)
		for _, it := range items {
			if !seenOrgs[it.OrgID] {
				seenOrgs[it.OrgID] = true
				orgIDs = append(orgIDs, it.OrgID)
			}
		}
		orgNames, err = s.orgs.NamesByIDs(ctx, orgIDs)
		if err != nil {
			return nil, err
		}
	}

	for _, it := range items {
		item := models.PassListItem{Pass: *it, Visitor: visitorsByID[it.VisitorID]}
		if withOrgNames {
			if name, ok := orgNames[it.OrgID]; ok {
				item.OrgName = name
			} else {
				item.OrgName = "Unknown"
			}
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
