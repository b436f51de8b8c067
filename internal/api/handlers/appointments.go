package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/appointment"
	"github.com/passdesk/passdesk/internal/auth"
)

type AppointmentHandler struct {
	appointments *appointment.Service
}

func NewAppointmentHandler(apptSvc *appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{appointments: apptSvc}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())

	var req struct {
		VisitorID uuid.UUID `json:"visitor_id" validate:"required"`
		HostName  string    `json:"host_name"`
		Purpose   string    `json:"purpose"`
		StartTime time.Time `json:"start_time" validate:"required"`
		EndTime   time.Time `json:"end_time" validate:"required"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	created, err := h.appointments.Create(r.Context(), p, appointment.CreateRequest{
		VisitorID: req.VisitorID,
		HostName:  req.HostName,
		Purpose:   req.Purpose,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	appts, err := h.appointments.ListByOrg(r.Context(), p.OrgID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": appts})
}
