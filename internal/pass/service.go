// Package pass implements the pass lifecycle: issuance, lookup, revocation
// and artifact rendering, plus the role-dependent visibility aggregation.
package pass

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/artifact"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/authz"
	"github.com/passdesk/passdesk/internal/models"
	"github.com/passdesk/passdesk/internal/queue"
	"github.com/passdesk/passdesk/internal/store"
)

type PassRepo interface {
	Create(ctx context.Context, p *models.Pass) (*models.Pass, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pass, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Pass, error)
	List(ctx context.Context, f store.ListFilter, limit, offset int) ([]*models.Pass, error)
	Count(ctx context.Context, f store.ListFilter) (int, error)
	CountByOrg(ctx context.Context, visitorIDs []uuid.UUID) ([]models.OrgVisitSummary, error)
}

type VisitorRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	GetInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.Visitor, error)
	FindAllByEmail(ctx context.Context, email string) ([]*models.Visitor, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Visitor, error)
}

type AppointmentRepo interface {
	GetForOrgVisitor(ctx context.Context, id, orgID, visitorID uuid.UUID) (*models.Appointment, error)
}

type OrgRepo interface {
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Enqueuer dispatches the best-effort side effects of issuance.
type Enqueuer interface {
	EnqueueRenderQR(payload queue.RenderQRPayload) error
	EnqueueSendEmail(payload queue.SendEmailPayload) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	passes       PassRepo
	visitors     VisitorRepo
	appointments AppointmentRepo
	orgs         OrgRepo
	users        UserRepo
	authz        *authz.Authorizer
	tasks        Enqueuer
	storage      artifact.Storage
	audit        AuditRecorder
	now          func() time.Time
}

func NewService(
	passes PassRepo,
	visitors VisitorRepo,
	appointments AppointmentRepo,
	orgs OrgRepo,
	users UserRepo,
	az *authz.Authorizer,
	tasks Enqueuer,
	storage artifact.Storage,
	auditSvc AuditRecorder,
) *Service {
	return &Service{
		passes:       passes,
		visitors:     visitors,
		appointments: appointments,
		orgs:         orgs,
		users:        users,
		authz:        az,
		tasks:        tasks,
		storage:      storage,
		audit:        auditSvc,
		now:          time.Now,
	}
}

type IssueRequest struct {
	VisitorID     uuid.UUID
	AppointmentID *uuid.UUID
	ValidFrom     *time.Time
	ValidTo       *time.Time
}

// Issue creates a pass within the issuing staff user's primary org. The
// pass row is durable before any side effect runs; QR rendering and email
// are dispatched to the queue and their failures only reach the logs.
func (s *Service) Issue(ctx context.Context, p *auth.Principal, req IssueRequest) (*models.Pass, error) {
	if p.Kind != auth.KindStaff {
		return nil, apperr.Forbidden("only staff can issue passes")
	}
	if p.OrgID == uuid.Nil {
		return nil, apperr.Validation("missing org context")
	}

	visitor, err := s.visitors.GetInOrg(ctx, req.VisitorID, p.OrgID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation("visitor not found in your organization")
		}
		return nil, err
	}

	var appt *models.Appointment
	if req.AppointmentID != nil {
		appt, err = s.appointments.GetForOrgVisitor(ctx, *req.AppointmentID, p.OrgID, visitor.ID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, apperr.Validation("appointment not found for this visitor/org")
			}
			return nil, err
		}
	}

	validFrom, validTo, err := resolveWindow(s.now(), req.ValidFrom, req.ValidTo, appt)
	if err != nil {
		return nil, err
	}

	code := NewCode()
	var apptID *uuid.UUID
	if appt != nil {
		apptID = &appt.ID
	}

	qrRel := artifact.QRRelPath(code)
	created, err := s.passes.Create(ctx, &models.Pass{
		OrgID:          p.OrgID,
		AppointmentID:  apptID,
		VisitorID:      visitor.ID,
		IssuedByUserID: p.UserID,
		Code:           code,
		ValidFrom:      validFrom,
		ValidTo:        validTo,
		Status:         models.PassStatusIssued,
		QRPayload:      NewQRPayload(code, p.OrgID, apptID),
		QRImagePath:    qrRel,
		QRImageURL:     s.storage.PublicURL(qrRel),
	})
	if err != nil {
		return nil, err
	}

	s.dispatchSideEffects(created, visitor)

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &created.OrgID,
		ActorID:      &p.UserID,
		Action:       audit.ActionPassIssued,
		ResourceType: "pass",
		ResourceID:   &created.ID,
		Details:      map[string]interface{}{"code": created.Code, "visitor_id": visitor.ID.String()},
	})

	return created, nil
}

func (s *Service) dispatchSideEffects(pass *models.Pass, visitor *models.Visitor) {
	if err := s.tasks.EnqueueRenderQR(queue.RenderQRPayload{
		PassID: pass.ID.String(),
		Code:   pass.Code,
	}); err != nil {
		slog.Error("failed to enqueue qr render", "pass_id", pass.ID, "error", err)
	}

	if visitor.Email == "" {
		return
	}
	if err := s.tasks.EnqueueSendEmail(queue.SendEmailPayload{
		PassID:       pass.ID.String(),
		Code:         pass.Code,
		VisitorName:  visitor.FirstName,
		VisitorEmail: visitor.Email,
		ValidFrom:    pass.ValidFrom.Local().Format("Jan 2, 2006 15:04"),
		ValidTo:      pass.ValidTo.Local().Format("Jan 2, 2006 15:04"),
	}); err != nil {
		slog.Error("failed to enqueue pass email", "pass_id", pass.ID, "error", err)
	}
}

// resolveWindow picks the validity window: explicit bounds win over the
// appointment's times, which win over (now, now+24h). The strict ordering
// check runs on the resolved values, before any write.
func resolveWindow(now time.Time, from, to *time.Time, appt *models.Appointment) (time.Time, time.Time, error) {
	validFrom := now
	if from != nil {
		validFrom = *from
	} else if appt != nil {
		validFrom = appt.StartTime
	}

	var validTo time.Time
	switch {
	case to != nil:
		validTo = *to
	case appt != nil:
		validTo = appt.EndTime
	default:
		validTo = validFrom.Add(24 * time.Hour)
	}

	if !validTo.After(validFrom) {
		return time.Time{}, time.Time{}, apperr.Validation("validTo must be after validFrom")
	}
	return validFrom, validTo, nil
}

// Get fetches a pass and enforces access. Existence is checked first, so
// unauthorized callers see 403 for passes that exist and 404 otherwise.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Pass, error) {
	pass, err := s.passes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequirePassAccess(ctx, p, pass); err != nil {
		return nil, err
	}
	return pass, nil
}

// Revoke is staff-only and idempotent: revoking an already-revoked pass
// returns it unchanged. issued -> revoked is terminal.
func (s *Service) Revoke(ctx context.Context, p *auth.Principal, id uuid.UUID) (*models.Pass, error) {
	if p.Kind != auth.KindStaff {
		return nil, apperr.Forbidden("only staff can revoke passes")
	}

	pass, err := s.passes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOrgAccess(ctx, p, pass.OrgID); err != nil {
		return nil, err
	}

	if pass.Status == models.PassStatusRevoked {
		return pass, nil
	}

	revoked, err := s.passes.SetStatus(ctx, id, models.PassStatusRevoked)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        &revoked.OrgID,
		ActorID:      &p.UserID,
		Action:       audit.ActionPassRevoked,
		ResourceType: "pass",
		ResourceID:   &revoked.ID,
	})

	return revoked, nil
}

// RenderQR returns the QR PNG for a pass. Same access gate as Get: these
// asset URLs are reachable with the query-token fallback, so the check can
// never be skipped.
func (s *Service) RenderQR(ctx context.Context, p *auth.Principal, id uuid.UUID) ([]byte, error) {
	pass, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return artifact.EncodeQR(pass.Code)
}

// RenderBadge returns the printable badge PDF for a pass.
func (s *Service) RenderBadge(ctx context.Context, p *auth.Principal, id uuid.UUID) ([]byte, *models.Pass, error) {
	pass, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	visitor, err := s.visitors.GetByID(ctx, pass.VisitorID)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := artifact.BuildBadge(pass, visitor)
	if err != nil {
		return nil, nil, err
	}
	return pdf, pass, nil
}
