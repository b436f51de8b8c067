package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passdesk/passdesk/internal/apperr"
	"github.com/passdesk/passdesk/internal/models"
)

type VisitorStore struct {
	db *pgxpool.Pool
}

func NewVisitorStore(db *pgxpool.Pool) *VisitorStore {
	return &VisitorStore{db: db}
}

const visitorColumns = "id, org_id, first_name, last_name, email, phone, company, notes, created_at"

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(&v.ID, &v.OrgID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Company, &v.Notes, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VisitorStore) Create(ctx context.Context, v *models.Visitor) (*models.Visitor, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO visitors (org_id, first_name, last_name, email, phone, company, notes)
		 VALUES ($1, $2, $3, lower($4), $5, $6, $7)
		 RETURNING `+visitorColumns,
		v.OrgID, v.FirstName, v.LastName, v.Email, v.Phone, v.Company, v.Notes,
	)
	created, err := scanVisitor(row)
	if err != nil {
		return nil, apperr.FromPostgres(
			fmt.Errorf("create visitor: %w", err),
			"a visitor with this email already exists for this organization",
		)
	}
	return created, nil
}

func (s *VisitorStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	row := s.db.QueryRow(ctx, "SELECT "+visitorColumns+" FROM visitors WHERE id = $1", id)
	v, err := scanVisitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visitor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get visitor: %w", err)
	}
	return v, nil
}

func (s *VisitorStore) GetInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.Visitor, error) {
	row := s.db.QueryRow(ctx, "SELECT "+visitorColumns+" FROM visitors WHERE id = $1 AND org_id = $2", id, orgID)
	v, err := scanVisitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visitor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get visitor in org: %w", err)
	}
	return v, nil
}

// FindFirstByEmail backs the passwordless visitor login: one visitor row per
// (org,email) exists, and login picks the earliest registration.
func (s *VisitorStore) FindFirstByEmail(ctx context.Context, email string) (*models.Visitor, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+visitorColumns+" FROM visitors WHERE lower(email) = lower($1) ORDER BY created_at LIMIT 1",
		strings.TrimSpace(email),
	)
	v, err := scanVisitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visitor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor by email: %w", err)
	}
	return v, nil
}

// FindAllByEmail returns every visitor identity across all organizations
// sharing an email. This is the cross-tenant lookup account principals are
// scoped by.
func (s *VisitorStore) FindAllByEmail(ctx context.Context, email string) ([]*models.Visitor, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+visitorColumns+" FROM visitors WHERE lower(email) = lower($1)",
		strings.TrimSpace(email),
	)
	if err != nil {
		return nil, fmt.Errorf("find visitors by email: %w", err)
	}
	defer rows.Close()

	var visitors []*models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

func (s *VisitorStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Visitor, error) {
	out := make(map[uuid.UUID]*models.Visitor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.Query(ctx, "SELECT "+visitorColumns+" FROM visitors WHERE id = ANY($1::uuid[])", uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		out[v.ID] = v
	}
	return out, rows.Err()
}
