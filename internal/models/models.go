package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	CreatedByUserID *uuid.UUID `json:"created_by_user_id,omitempty" db:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// User holds both staff rows (org-scoped, role admin/security/host) and
// consumer account rows (role account, no org). OrgID/OrgIDs are nil for
// accounts.
type User struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	OrgID        *uuid.UUID  `json:"org_id,omitempty" db:"org_id"`
	OrgIDs       []uuid.UUID `json:"org_ids,omitempty" db:"org_ids"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Phone        string      `json:"phone,omitempty" db:"phone"`
	Role         string      `json:"role" db:"role"`
	Status       string      `json:"status" db:"status"`
	PasswordHash string      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

type Visitor struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrgID     uuid.UUID `json:"org_id" db:"org_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name,omitempty" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Company   string    `json:"company,omitempty" db:"company"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (v *Visitor) FullName() string {
	if v.LastName == "" {
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

type Appointment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrgID     uuid.UUID `json:"org_id" db:"org_id"`
	VisitorID uuid.UUID `json:"visitor_id" db:"visitor_id"`
	HostName  string    `json:"host_name,omitempty" db:"host_name"`
	Purpose   string    `json:"purpose,omitempty" db:"purpose"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const AppointmentStatusScheduled = "scheduled"

type Pass struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrgID          uuid.UUID  `json:"org_id" db:"org_id"`
	AppointmentID  *uuid.UUID `json:"appointment_id,omitempty" db:"appointment_id"`
	VisitorID      uuid.UUID  `json:"visitor_id" db:"visitor_id"`
	IssuedByUserID uuid.UUID  `json:"issued_by_user_id" db:"issued_by_user_id"`
	Code           string     `json:"code" db:"code"`
	ValidFrom      time.Time  `json:"valid_from" db:"valid_from"`
	ValidTo        time.Time  `json:"valid_to" db:"valid_to"`
	Status         string     `json:"status" db:"status"`
	QRPayload      string     `json:"qr_payload" db:"qr_payload"`
	QRImagePath    string     `json:"qr_image_path,omitempty" db:"qr_image_path"`
	QRImageURL     string     `json:"qr_image_url,omitempty" db:"qr_image_url"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

const (
	PassStatusIssued  = "issued"
	PassStatusRevoked = "revoked"
)

// PassListItem is a pass joined with the display fields list responses
// carry. OrgName is only populated on cross-org account listings.
type PassListItem struct {
	Pass
	Visitor *Visitor `json:"visitor,omitempty"`
	OrgName string   `json:"org_name,omitempty"`
}

type OrgVisitSummary struct {
	OrgID   uuid.UUID `json:"id"`
	OrgName string    `json:"name"`
	Passes  int       `json:"passes"`
}
