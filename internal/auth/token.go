package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
)

// Claims is the wire shape of every issued token, regardless of principal
// kind. VisitorID and OrgID are empty for account tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	VisitorID string `json:"visitor_id,omitempty"`
	OrgID     string `json:"org_id,omitempty"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the bearer tokens that are the sole
// carrier of identity. No server-side session state exists.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) Issue(c Claims) (string, error) {
	now := s.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a token and maps its claims onto a typed principal.
// Signature or expiry failures are unauthenticated; a role outside the
// fixed set is forbidden.
func (s *TokenService) Resolve(tokenStr string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("invalid token")
	}

	role := strings.ToLower(claims.Role)
	kind, ok := KindForRole(role)
	if !ok {
		return nil, apperr.Forbidden("invalid role")
	}

	p := &Principal{
		Kind:  kind,
		Role:  role,
		Name:  claims.Name,
		Email: claims.Email,
	}
	if claims.UserID != "" {
		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			return nil, apperr.Unauthenticated("invalid token")
		}
		p.UserID = id
	}
	if claims.VisitorID != "" {
		id, err := uuid.Parse(claims.VisitorID)
		if err != nil {
			return nil, apperr.Unauthenticated("invalid token")
		}
		p.VisitorID = id
	}
	if claims.OrgID != "" {
		id, err := uuid.Parse(claims.OrgID)
		if err != nil {
			return nil, apperr.Unauthenticated("invalid token")
		}
		p.OrgID = id
	}
	return p, nil
}

func StaffClaims(userID, orgID uuid.UUID, role, name, email string) Claims {
	return Claims{
		UserID: userID.String(),
		OrgID:  orgID.String(),
		Role:   role,
		Name:   name,
		Email:  email,
	}
}

// VisitorClaims sets user_id and visitor_id to the same id: visitors are
// their own identity record.
func VisitorClaims(visitorID, orgID uuid.UUID, name, email string) Claims {
	return Claims{
		UserID:    visitorID.String(),
		VisitorID: visitorID.String(),
		OrgID:     orgID.String(),
		Role:      RoleVisitor,
		Name:      name,
		Email:     email,
	}
}

// AccountClaims carry no org scope: accounts are identity-scoped by email.
func AccountClaims(userID uuid.UUID, name, email string) Claims {
	return Claims{
		UserID: userID.String(),
		Role:   RoleAccount,
		Name:   name,
		Email:  email,
	}
}
