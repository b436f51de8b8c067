package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/pass"
)

type PassHandler struct {
	passes *pass.Service
}

func NewPassHandler(passSvc *pass.Service) *PassHandler {
	return &PassHandler{passes: passSvc}
}

func (h *PassHandler) Issue(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())

	var req struct {
		VisitorID     uuid.UUID  `json:"visitor_id" validate:"required"`
		AppointmentID *uuid.UUID `json:"appointment_id"`
		ValidFrom     *time.Time `json:"valid_from"`
		ValidTo       *time.Time `json:"valid_to"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	created, err := h.passes.Issue(r.Context(), p, pass.IssueRequest{
		VisitorID:     req.VisitorID,
		AppointmentID: req.AppointmentID,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List serves the principal-dependent pass view: staff see their org,
// visitors see themselves, accounts see all their passes across orgs.
func (h *PassHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())

	q := pass.ListQuery{
		Status: r.URL.Query().Get("status"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}
	if raw := r.URL.Query().Get("org_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid org_id"})
			return
		}
		q.OrgID = &id
	}
	if raw := r.URL.Query().Get("visitor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid visitor_id"})
			return
		}
		q.VisitorID = &id
	}

	result, err := h.passes.List(r.Context(), p, q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PassHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	found, err := h.passes.Get(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *PassHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	revoked, err := h.passes.Revoke(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revoked)
}

// QR streams the pass QR code as a PNG. Reachable with the query-token
// fallback so it can be used directly in an img tag.
func (h *PassHandler) QR(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	png, err := h.passes.RenderQR(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Badge streams the printable badge PDF.
func (h *PassHandler) Badge(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	pdf, found, err := h.passes.RenderBadge(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", found.Code+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// AccountPasses serves an account's cross-org pass list, optionally
// narrowed to one organization via the org_id query parameter.
func (h *PassHandler) AccountPasses(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())

	q := pass.ListQuery{
		Status: r.URL.Query().Get("status"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}

	if raw := r.URL.Query().Get("org_id"); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid org_id"})
			return
		}
		result, err := h.passes.AccountPassesForOrg(r.Context(), p, orgID, q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.passes.List(r.Context(), p, q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MyOrganizations lists the organizations an account has passes with.
func (h *PassHandler) MyOrganizations(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	summaries, err := h.passes.AccountOrganizations(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": summaries})
}
