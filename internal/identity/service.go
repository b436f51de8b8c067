// Package identity implements the sign-up and sign-in flows for every
// principal kind: org bootstrap, staff password login, passwordless visitor
// login, visitor self-registration and consumer accounts.
package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
)

type OrgRepo interface {
	Create(ctx context.Context, name string) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Organization, error)
	SetCreatedBy(ctx context.Context, orgID, userID uuid.UUID) error
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string, limit int) ([]*models.User, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.User, error)
}

type VisitorRepo interface {
	Create(ctx context.Context, v *models.Visitor) (*models.Visitor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	FindFirstByEmail(ctx context.Context, email string) (*models.Visitor, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	orgs     OrgRepo
	users    UserRepo
	visitors VisitorRepo
	tokens   *auth.TokenService
	audit    AuditRecorder
}

func NewService(orgs OrgRepo, users UserRepo, visitors VisitorRepo, tokens *auth.TokenService, auditSvc AuditRecorder) *Service {
	return &Service{orgs: orgs, users: users, visitors: visitors, tokens: tokens, audit: auditSvc}
}

type UserView struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Status string    `json:"status,omitempty"`
}

type OrgView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AuthResult struct {
	Token string   `json:"token,omitempty"`
	User  UserView `json:"user"`
	Org   *OrgView `json:"org,omitempty"`
}

type RegisterOrgRequest struct {
	OrgName    string
	AdminName  string
	AdminEmail string
	Password   string
}

// RegisterOrg bootstraps a tenant: the organization plus its first admin
// staff user, returning a ready-to-use staff token.
func (s *Service) RegisterOrg(ctx context.Context, req RegisterOrgRequest) (*AuthResult, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.Create(ctx, req.OrgName)
	if err != nil {
		return nil, err
	}

	admin, err := s.users.Create(ctx, &models.User{
		OrgID:        &org.ID,
		OrgIDs:       []uuid.UUID{org.ID},
		Name:         req.AdminName,
		Email:        strings.ToLower(req.AdminEmail),
		Role:         auth.RoleAdmin,
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orgs.SetCreatedBy(ctx, org.ID, admin.ID); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(auth.StaffClaims(admin.ID, org.ID, admin.Role, admin.Name, admin.Email))
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &org.ID,
		ActorID:      &admin.ID,
		Action:       audit.ActionOrgRegistered,
		ResourceType: "organization",
		ResourceID:   &org.ID,
	})

	return &AuthResult{
		Token: token,
		User:  UserView{ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: admin.Role},
		Org:   &OrgView{ID: org.ID, Name: org.Name},
	}, nil
}

// loginRoles is what the staff dashboard accepts in stored rows. Account
// rows use their own login; anything else stored is data corruption.
var loginRoles = map[string]bool{
	auth.RoleAdmin:    true,
	auth.RoleSecurity: true,
	auth.RoleHost:     true,
	auth.RoleVisitor:  true,
}

// Login performs staff password sign-in.
//
// Legacy data may hold several rows for one email; candidates are ordered
// newest first and the first non-disabled row wins. When every row is
// disabled the newest is still tried so the caller sees a normal
// credential failure rather than a special case.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	candidates, err := s.users.FindByEmail(ctx, email, 5)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	user := candidates[0]
	for _, c := range candidates {
		if c.Status != models.UserStatusDisabled {
			user = c
			break
		}
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	role := strings.ToLower(user.Role)
	if !loginRoles[role] {
		return nil, apperr.Validation("invalid role on user")
	}
	if role == auth.RoleVisitor {
		return nil, apperr.Forbidden("visitor role cannot sign in to the staff dashboard with password")
	}

	if user.OrgID == nil {
		return nil, apperr.Validation("user organization not found")
	}
	org, err := s.orgs.GetByID(ctx, *user.OrgID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation("user organization not found")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(auth.StaffClaims(user.ID, org.ID, role, user.Name, user.Email))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: token,
		User:  UserView{ID: user.ID, Name: user.Name, Email: user.Email, Role: role},
		Org:   &OrgView{ID: org.ID, Name: org.Name},
	}, nil
}

// VisitorLogin issues a visitor token from an email alone. No password:
// possession of the mailbox is established by the pass email itself.
func (s *Service) VisitorLogin(ctx context.Context, email string) (*AuthResult, error) {
	visitor, err := s.visitors.FindFirstByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, visitor.OrgID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation("visitor organization not found")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(auth.VisitorClaims(visitor.ID, visitor.OrgID, visitor.FullName(), visitor.Email))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: token,
		User:  UserView{ID: visitor.ID, Name: visitor.FullName(), Email: visitor.Email, Role: auth.RoleVisitor},
		Org:   &OrgView{ID: org.ID, Name: org.Name},
	}, nil
}

type RegisterVisitorRequest struct {
	OrgID     uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Notes     string
	AutoLogin bool
}

// RegisterVisitor self-registers a visitor under one org. The (org, email)
// unique index is the authority against double registration; the same email
// may register independently under other orgs.
func (s *Service) RegisterVisitor(ctx context.Context, req RegisterVisitorRequest) (*AuthResult, error) {
	org, err := s.orgs.GetByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	visitor, err := s.visitors.Create(ctx, &models.Visitor{
		OrgID:     org.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &org.ID,
		Action:       audit.ActionVisitorRegistered,
		ResourceType: "visitor",
		ResourceID:   &visitor.ID,
	})

	result := &AuthResult{
		User: UserView{ID: visitor.ID, Name: visitor.FullName(), Email: visitor.Email, Role: auth.RoleVisitor},
		Org:  &OrgView{ID: org.ID, Name: org.Name},
	}
	if !req.AutoLogin {
		return result, nil
	}

	token, err := s.tokens.Issue(auth.VisitorClaims(visitor.ID, visitor.OrgID, visitor.FullName(), visitor.Email))
	if err != nil {
		return nil, err
	}
	result.Token = token
	return result, nil
}

type RegisterAccountRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// RegisterAccount creates a cross-org consumer account. The email must be
// unused by any existing row, staff included, to keep staff password login
// unambiguous.
func (s *Service) RegisterAccount(ctx context.Context, req RegisterAccountRequest) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, req.Email, 1)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Role:         auth.RoleAccount,
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}

	return &AuthResult{
		User: UserView{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}, nil
}

func (s *Service) AccountLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindAccountByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthenticated("invalid credentials")
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	token, err := s.tokens.Issue(auth.AccountClaims(user.ID, user.Name, user.Email))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token: token,
		User:  UserView{ID: user.ID, Name: user.Name, Email: user.Email, Role: auth.RoleAccount},
	}, nil
}

// Me returns the normalized profile and org for whoever holds the token.
func (s *Service) Me(ctx context.Context, p *auth.Principal) (*AuthResult, error) {
	switch p.Kind {
	case auth.KindVisitor:
		id := p.VisitorID
		if id == uuid.Nil {
			id = p.UserID
		}
		visitor, err := s.visitors.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result := &AuthResult{
			User: UserView{ID: visitor.ID, Name: visitor.FullName(), Email: visitor.Email, Role: auth.RoleVisitor},
		}
		if org, err := s.orgs.GetByID(ctx, visitor.OrgID); err == nil {
			result.Org = &OrgView{ID: org.ID, Name: org.Name}
		}
		return result, nil

	case auth.KindStaff, auth.KindAccount:
		user, err := s.users.GetByID(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		result := &AuthResult{
			User: UserView{ID: user.ID, Name: user.Name, Email: user.Email, Role: strings.ToLower(user.Role), Status: user.Status},
		}
		if user.OrgID != nil {
			if org, err := s.orgs.GetByID(ctx, *user.OrgID); err == nil {
				result.Org = &OrgView{ID: org.ID, Name: org.Name}
			}
		}
		return result, nil

	default:
		return nil, apperr.Unauthenticated("not authenticated")
	}
}

// MyOrgs lists every organization a staff user belongs to: the primary org
// plus the membership set.
func (s *Service) MyOrgs(ctx context.Context, p *auth.Principal) ([]models.Organization, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	if user.OrgID != nil {
		seen[*user.OrgID] = true
		ids = append(ids, *user.OrgID)
	}
	for _, id := range user.OrgIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	orgs, err := s.orgs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	return orgs, nil
}
