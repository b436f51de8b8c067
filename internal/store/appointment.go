package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/models"
)

type AppointmentStore struct {
	db *pgxpool.Pool
}

func NewAppointmentStore(db *pgxpool.Pool) *AppointmentStore {
	return &AppointmentStore{db: db}
}

const appointmentColumns = "id, org_id, visitor_id, host_name, purpose, start_time, end_time, status, created_at"

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.OrgID, &a.VisitorID, &a.HostName, &a.Purpose, &a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AppointmentStore) Create(ctx context.Context, a *models.Appointment) (*models.Appointment, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO appointments (org_id, visitor_id, host_name, purpose, start_time, end_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+appointmentColumns,
		a.OrgID, a.VisitorID, a.HostName, a.Purpose, a.StartTime, a.EndTime, a.Status,
	)
	created, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return created, nil
}

// GetForOrgVisitor fetches an appointment only when it belongs to both the
// org and the visitor; pass issuance rejects any other combination.
func (s *AppointmentStore) GetForOrgVisitor(ctx context.Context, id, orgID, visitorID uuid.UUID) (*models.Appointment, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE id = $1 AND org_id = $2 AND visitor_id = $3",
		id, orgID, visitorID,
	)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found for this visitor/org")
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *AppointmentStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Appointment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE org_id = $1 ORDER BY start_time DESC", orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
