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

type OrgStore struct {
	db *pgxpool.Pool
}

func NewOrgStore(db *pgxpool.Pool) *OrgStore {
	return &OrgStore{db: db}
}

func (s *OrgStore) Create(ctx context.Context, name string) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1)
		 RETURNING id, name, created_by_user_id, created_at`,
		name,
	).Scan(&o.ID, &o.Name, &o.CreatedByUserID, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return &o, nil
}

func (s *OrgStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRow(ctx,
		"SELECT id, name, created_by_user_id, created_at FROM organizations WHERE id = $1", id,
	).Scan(&o.ID, &o.Name, &o.CreatedByUserID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("organization not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}

func (s *OrgStore) SetCreatedBy(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE organizations SET created_by_user_id = $1 WHERE id = $2", userID, orgID,
	)
	if err != nil {
		return fmt.Errorf("set organization creator: %w", err)
	}
	return nil
}

// ListPublic returns the id+name projection used by registration pickers.
func (s *OrgStore) ListPublic(ctx context.Context) ([]models.Organization, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM organizations ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (s *OrgStore) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := s.db.Query(ctx, "SELECT id, name FROM organizations WHERE id = ANY($1::uuid[])", uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query organization names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan organization name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (s *OrgStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		"SELECT id, name, created_by_user_id, created_at FROM organizations WHERE id = ANY($1::uuid[])", uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedByUserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
