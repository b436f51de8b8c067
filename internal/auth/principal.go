package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Kind is the closed set of principal variants. Authorization code switches
// over it exhaustively instead of comparing role strings ad hoc.
type Kind int

const (
	KindAnonymous Kind = iota
	KindStaff
	KindVisitor
	KindAccount
)

func (k Kind) String() string {
	switch k {
	case KindStaff:
		return "staff"
	case KindVisitor:
		return "visitor"
	case KindAccount:
		return "account"
	default:
		return "anonymous"
	}
}

const (
	RoleAdmin    = "admin"
	RoleSecurity = "security"
	RoleHost     = "host"
	RoleVisitor  = "visitor"
	RoleAccount  = "account"
)

// StaffRoles are the roles an org admin may assign to staff users.
var StaffRoles = map[string]bool{
	RoleAdmin:    true,
	RoleSecurity: true,
	RoleHost:     true,
}

// Principal is the per-request identity reconstructed from a token. Which
// fields are set depends on Kind: staff carry UserID+OrgID, visitors carry
// VisitorID+OrgID, accounts carry UserID+Email only.
type Principal struct {
	Kind      Kind
	UserID    uuid.UUID
	VisitorID uuid.UUID
	OrgID     uuid.UUID
	Role      string
	Name      string
	Email     string
}

// KindForRole maps a declared role string to a principal kind. The role set
// is fixed; anything outside it is rejected at resolution time.
func KindForRole(role string) (Kind, bool) {
	switch strings.ToLower(role) {
	case RoleAdmin, RoleSecurity, RoleHost:
		return KindStaff, true
	case RoleVisitor:
		return KindVisitor, true
	case RoleAccount:
		return KindAccount, true
	default:
		return KindAnonymous, false
	}
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the resolved principal, or an anonymous one
// when the request carried no token.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return &Principal{Kind: KindAnonymous}
}
