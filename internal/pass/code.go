package pass

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

const codePrefix = "PASS"

// NewCode generates a human-shareable pass code: fixed prefix plus ten
// uppercase characters taken from a random uuid. Collisions are negligible
// at this length; the unique index on passes.code is the real guarantee.
func NewCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return codePrefix + "-" + strings.ToUpper(raw[:10])
}

type qrPayload struct {
	Code          string  `json:"code"`
	OrgID         string  `json:"orgId"`
	AppointmentID *string `json:"appointmentId"`
	Version       int     `json:"v"`
}

// NewQRPayload builds the opaque structured record embedded in a pass. The
// schema version allows scanners to evolve without breaking old passes.
func NewQRPayload(code string, orgID uuid.UUID, appointmentID *uuid.UUID) string {
	p := qrPayload{Code: code, OrgID: orgID.String(), Version: 1}
	if appointmentID != nil {
		s := appointmentID.String()
		p.AppointmentID = &s
	}
	data, _ := json.Marshal(p)
	return string(data)
}
