// Package authz decides whether a resolved principal may act on an
// organization or a pass. Every decision switches exhaustively over the
// principal kind; adding a kind is a compile-visible change here.
package authz

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
)

type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type VisitorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
}

type Authorizer struct {
	users    UserDirectory
	visitors VisitorDirectory
}

func New(users UserDirectory, visitors VisitorDirectory) *Authorizer {
	return &Authorizer{users: users, visitors: visitors}
}

// CanAccessOrg reports whether p may act within orgID.
//
// Staff membership is looked up in the store rather than trusted from the
// token: membership can change after issuance. Visitors hold exactly one
// immutable org, so their token claim is enough. Account principals never
// hold org-level access.
func (a *Authorizer) CanAccessOrg(ctx context.Context, p *auth.Principal, orgID uuid.UUID) (bool, error) {
	if orgID == uuid.Nil {
		return false, nil
	}

	switch p.Kind {
	case auth.KindStaff:
		u, err := a.users.GetByID(ctx, p.UserID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return false, nil
			}
			return false, err
		}
		if u.OrgID != nil && *u.OrgID == orgID {
			return true, nil
		}
		for _, id := range u.OrgIDs {
			if id == orgID {
				return true, nil
			}
		}
		return false, nil

	case auth.KindVisitor:
		return p.OrgID == orgID, nil

	case auth.KindAccount, auth.KindAnonymous:
		return false, nil

	default:
		return false, nil
	}
}

// CanAccessPass reports whether p may read or render pass.
//
// Visitors get an identity-equality fallback on top of the org check: a
// token minted before a data fix may carry a stale org claim, but owning
// the pass's visitor id is sufficient on its own. Accounts are matched by
// email identity only, never by org membership.
func (a *Authorizer) CanAccessPass(ctx context.Context, p *auth.Principal, pass *models.Pass) (bool, error) {
	switch p.Kind {
	case auth.KindStaff:
		return a.CanAccessOrg(ctx, p, pass.OrgID)

	case auth.KindVisitor:
		ok, err := a.CanAccessOrg(ctx, p, pass.OrgID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		own := p.VisitorID
		if own == uuid.Nil {
			own = p.UserID
		}
		return own != uuid.Nil && own == pass.VisitorID, nil

	case auth.KindAccount:
		if p.Email == "" {
			return false, nil
		}
		v, err := a.visitors.GetByID(ctx, pass.VisitorID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return false, nil
			}
			return false, err
		}
		return strings.EqualFold(v.Email, p.Email), nil

	case auth.KindAnonymous:
		return false, nil

	default:
		return false, nil
	}
}

// RequirePassAccess wraps CanAccessPass into the error the HTTP layer
// expects: nil on success, Forbidden otherwise.
func (a *Authorizer) RequirePassAccess(ctx context.Context, p *auth.Principal, pass *models.Pass) error {
	ok, err := a.CanAccessPass(ctx, p, pass)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("forbidden")
	}
	return nil
}

// RequireOrgAccess mirrors RequirePassAccess for org-scoped operations.
func (a *Authorizer) RequireOrgAccess(ctx context.Context, p *auth.Principal, orgID uuid.UUID) error {
	ok, err := a.CanAccessOrg(ctx, p, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("forbidden for this organization")
	}
	return nil
}
