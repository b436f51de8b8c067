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

type PassStore struct {
	db *pgxpool.Pool
}

func NewPassStore(db *pgxpool.Pool) *PassStore {
	return &PassStore{db: db}
}

const passColumns = "id, org_id, appointment_id, visitor_id, issued_by_user_id, code, valid_from, valid_to, status, qr_payload, qr_image_path, qr_image_url, created_at"

func scanPass(row pgx.Row) (*models.Pass, error) {
	var p models.Pass
	err := row.Scan(&p.ID, &p.OrgID, &p.AppointmentID, &p.VisitorID, &p.IssuedByUserID, &p.Code,
		&p.ValidFrom, &p.ValidTo, &p.Status, &p.QRPayload, &p.QRImagePath, &p.QRImageURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PassStore) Create(ctx context.Context, p *models.Pass) (*models.Pass, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO passes (org_id, appointment_id, visitor_id, issued_by_user_id, code,
		                     valid_from, valid_to, status, qr_payload, qr_image_path, qr_image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+passColumns,
		p.OrgID, p.AppointmentID, p.VisitorID, p.IssuedByUserID, p.Code,
		p.ValidFrom, p.ValidTo, p.Status, p.QRPayload, p.QRImagePath, p.QRImageURL,
	)
	created, err := scanPass(row)
	if err != nil {
		// The unique code index is the final authority against generator
		// collisions and concurrent issuance races.
		return nil, apperr.FromPostgres(fmt.Errorf("create pass: %w", err), "pass code already exists")
	}
	return created, nil
}

func (s *PassStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Pass, error) {
	row := s.db.QueryRow(ctx, "SELECT "+passColumns+" FROM passes WHERE id = $1", id)
	p, err := scanPass(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("pass not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get pass: %w", err)
	}
	return p, nil
}

func (s *PassStore) GetByCode(ctx context.Context, code string) (*models.Pass, error) {
	row := s.db.QueryRow(ctx, "SELECT "+passColumns+" FROM passes WHERE code = $1", code)
	p, err := scanPass(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("pass not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get pass by code: %w", err)
	}
	return p, nil
}

func (s *PassStore) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Pass, error) {
	row := s.db.QueryRow(ctx,
		"UPDATE passes SET status = $1 WHERE id = $2 RETURNING "+passColumns, status, id,
	)
	p, err := scanPass(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("pass not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set pass status: %w", err)
	}
	return p, nil
}

// ListFilter narrows the pass listing. VisitorIDs and VisitorID are
// mutually exclusive in practice: the aggregator sets VisitorIDs for
// account principals and VisitorID for everyone else.
type ListFilter struct {
	OrgID      *uuid.UUID
	VisitorID  *uuid.UUID
	VisitorIDs []uuid.UUID
	Status     string
}

func (f ListFilter) where() (string, []interface{}) {
	clause := "WHERE 1=1"
	var args []interface{}
	idx := 1
	if f.OrgID != nil {
		clause += fmt.Sprintf(" AND org_id = $%d", idx)
		args = append(args, *f.OrgID)
		idx++
	}
	if f.VisitorID != nil {
		clause += fmt.Sprintf(" AND visitor_id = $%d", idx)
		args = append(args, *f.VisitorID)
		idx++
	}
	if len(f.VisitorIDs) > 0 {
		clause += fmt.Sprintf(" AND visitor_id = ANY($%d::uuid[])", idx)
		args = append(args, uuidStrings(f.VisitorIDs))
		idx++
	}
	if f.Status != "" {
		clause += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	return clause, args
}

func (s *PassStore) List(ctx context.Context, f ListFilter, limit, offset int) ([]*models.Pass, error) {
	clause, args := f.where()
	query := fmt.Sprintf("SELECT %s FROM passes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		passColumns, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []*models.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// Count runs independently of the page slice so totals stay correct for any
// page/limit combination.
func (s *PassStore) Count(ctx context.Context, f ListFilter) (int, error) {
	clause, args := f.where()
	var total int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM passes "+clause, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count passes: %w", err)
	}
	return total, nil
}

// CountByOrg groups an account's passes by owning organization, descending
// by count. Recomputed on every call; nothing is materialized.
func (s *PassStore) CountByOrg(ctx context.Context, visitorIDs []uuid.UUID) ([]models.OrgVisitSummary, error) {
	if len(visitorIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT p.org_id, o.name, COUNT(*) AS passes
		 FROM passes p
		 JOIN organizations o ON o.id = p.org_id
		 WHERE p.visitor_id = ANY($1::uuid[])
		 GROUP BY p.org_id, o.name
		 ORDER BY passes DESC`,
		uuidStrings(visitorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("count passes by org: %w", err)
	}
	defer rows.Close()

	var summaries []models.OrgVisitSummary
	for rows.Next() {
		var s models.OrgVisitSummary
		if err := rows.Scan(&s.OrgID, &s.OrgName, &s.Passes); err != nil {
			return nil, fmt.Errorf("scan org summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
