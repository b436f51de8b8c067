// Package user implements admin-side staff management within an
// organization.
package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
)

type Repo interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.User, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id, orgID uuid.UUID) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	users Repo
	audit AuditRecorder
}

func NewService(users Repo, auditSvc AuditRecorder) *Service {
	return &Service{users: users, audit: auditSvc}
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	users, err := s.users.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id, orgID uuid.UUID) (*models.User, error) {
	return s.users.GetInOrg(ctx, id, orgID)
}

type CreateRequest struct {
	Name     string
	Email    string
	Phone    string
	Role     string
	Password string
}

// Create adds a staff member to the admin's org. The role must be one of
// the staff roles; accounts and visitors are never created here.
func (s *Service) Create(ctx context.Context, p *auth.Principal, req CreateRequest) (*models.User, error) {
	role := strings.ToLower(req.Role)
	if !auth.StaffRoles[role] {
		return nil, apperr.Validation("role must be one of admin, security, host")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &models.User{
		OrgID:        &p.OrgID,
		OrgIDs:       []uuid.UUID{p.OrgID},
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Role:         role,
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, apperr.Conflict("user already exists in this organization")
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &p.OrgID,
		ActorID:      &p.UserID,
		Action:       audit.ActionUserCreated,
		ResourceType: "user",
		ResourceID:   &created.ID,
		Details:      map[string]interface{}{"role": created.Role},
	})

	return created, nil
}

type UpdateRequest struct {
	Name     *string
	Phone    *string
	Status   *string
	Role     *string
	Password *string
}

// Update applies a partial update to a staff member in the admin's org.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, req UpdateRequest) (*models.User, error) {
	user, err := s.users.GetInOrg(ctx, id, p.OrgID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		status := strings.ToLower(*req.Status)
		if status != models.UserStatusActive && status != models.UserStatusDisabled {
			return nil, apperr.Validation("status must be active or disabled")
		}
		user.Status = status
	}
	if req.Role != nil {
		role := strings.ToLower(*req.Role)
		if !auth.StaffRoles[role] {
			return nil, apperr.Validation("role must be one of admin, security, host")
		}
		user.Role = role
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &p.OrgID,
		ActorID:      &p.UserID,
		Action:       audit.ActionUserUpdated,
		ResourceType: "user",
		ResourceID:   &updated.ID,
	})

	return updated, nil
}

// Delete removes a staff member. Admins cannot delete themselves; a tenant
// must always keep at least the acting admin.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	if id == p.UserID {
		return apperr.Validation("cannot delete your own account")
	}

	if _, err := s.users.GetInOrg(ctx, id, p.OrgID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id, p.OrgID); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &p.OrgID,
		ActorID:      &p.UserID,
		Action:       audit.ActionUserDeleted,
		ResourceType: "user",
		ResourceID:   &id,
	})

	return nil
}
