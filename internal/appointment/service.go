// Package appointment implements staff-scheduled visits that passes can be
// issued against.
package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/models"
)

type Repo interface {
	Create(ctx context.Context, a *models.Appointment) (*models.Appointment, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Appointment, error)
}

type VisitorRepo interface {
	GetInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.Visitor, error)
}

type Service struct {
	appointments Repo
	visitors     VisitorRepo
}

func NewService(appointments Repo, visitors VisitorRepo) *Service {
	return &Service{appointments: appointments, visitors: visitors}
}

type CreateRequest struct {
	VisitorID uuid.UUID
	HostName  string
	Purpose   string
	StartTime time.Time
	EndTime   time.Time
}

func (s *Service) Create(ctx context.Context, p *auth.Principal, req CreateRequest) (*models.Appointment, error) {
	if _, err := s.visitors.GetInOrg(ctx, req.VisitorID, p.OrgID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation("visitor not found in your organization")
		}
		return nil, err
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, apperr.Validation("endTime must be after startTime")
	}

	return s.appointments.Create(ctx, &models.Appointment{
		OrgID:     p.OrgID,
		VisitorID: req.VisitorID,
		HostName:  req.HostName,
		Purpose:   req.Purpose,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.AppointmentStatusScheduled,
	})
}

func (s *Service) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Appointment, error) {
	appts, err := s.appointments.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*models.Appointment{}
	}
	return appts, nil
}
