// Package audit records who did what to which resource. Writes are
// fire-and-forget from the caller's perspective: a failed audit insert is
// logged, never propagated.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionPassIssued        = "pass.issued"
	ActionPassRevoked       = "pass.revoked"
	ActionUserCreated       = "user.created"
	ActionUserUpdated       = "user.updated"
	ActionUserDeleted       = "user.deleted"
	ActionVisitorRegistered = "visitor.registered"
	ActionOrgRegistered     = "org.registered"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type Entry struct {
	OrgID        *uuid.UUID
	ActorID      *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
}

func (s *Service) Record(ctx context.Context, entry Entry) {
	details, _ := json.Marshal(entry.Details)
	if entry.Details == nil {
		details = []byte("{}")
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (org_id, actor_id, action, resource_type, resource_id, details)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.OrgID, entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID, details,
	)
	if err != nil {
		slog.Error("failed to record audit entry", "action", entry.Action, "error", err)
	}
}
