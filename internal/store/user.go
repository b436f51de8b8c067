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

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, org_id, org_ids::text[], name, email, phone, role, status, password_hash, created_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var orgIDs []string
	if err := row.Scan(&u.ID, &u.OrgID, &orgIDs, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	for _, raw := range orgIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse org_ids element: %w", err)
		}
		u.OrgIDs = append(u.OrgIDs, id)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (org_id, org_ids, name, email, phone, role, status, password_hash)
		 VALUES ($1, $2::uuid[], $3, lower($4), $5, $6, $7, $8)
		 RETURNING `+userColumns,
		u.OrgID, uuidStrings(u.OrgIDs), u.Name, u.Email, u.Phone, u.Role, u.Status, u.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, apperr.FromPostgres(fmt.Errorf("create user: %w", err), "email already registered")
	}
	return created, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// FindByEmail returns all rows for an email ordered newest first. The login
// tie-break over legacy duplicate rows depends on this ordering.
func (s *UserStore) FindByEmail(ctx context.Context, email string, limit int) ([]*models.User, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1) ORDER BY created_at DESC LIMIT $2",
		strings.TrimSpace(email), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) FindAccountByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1) AND role = 'account'",
		strings.TrimSpace(email),
	)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE org_id = $1 ORDER BY created_at DESC", orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetInOrg fetches a user only if it belongs to the given org; used by
// admin management so one org can never touch another org's staff.
func (s *UserStore) GetInOrg(ctx context.Context, id, orgID uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 AND org_id = $2", id, orgID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user in org: %w", err)
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE users SET name = $1, phone = $2, role = $3, status = $4, password_hash = $5
		 WHERE id = $6
		 RETURNING `+userColumns,
		u.Name, u.Phone, u.Role, u.Status, u.PasswordHash, u.ID,
	)
	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (s *UserStore) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1 AND org_id = $2", id, orgID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
