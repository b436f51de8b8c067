package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/identity"
	"github.com/passdesk/passdesk/internal/org"
)

type AuthHandler struct {
	identity *identity.Service
	orgs     *org.Service
}

func NewAuthHandler(identitySvc *identity.Service, orgSvc *org.Service) *AuthHandler {
	return &AuthHandler{identity: identitySvc, orgs: orgSvc}
}

// RegisterOrg creates an organization together with its first admin and
// returns a staff token.
func (h *AuthHandler) RegisterOrg(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrgName    string `json:"org_name" validate:"required"`
		AdminName  string `json:"admin_name" validate:"required"`
		AdminEmail string `json:"admin_email" validate:"required,email"`
		Password   string `json:"password" validate:"required,min=8"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.identity.RegisterOrg(r.Context(), identity.RegisterOrgRequest{
		OrgName:    req.OrgName,
		AdminName:  req.AdminName,
		AdminEmail: req.AdminEmail,
		Password:   req.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.orgs.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) VisitorLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.identity.VisitorLogin(r.Context(), req.Email)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrgID     uuid.UUID `json:"org_id" validate:"required"`
		FirstName string    `json:"first_name" validate:"required"`
		LastName  string    `json:"last_name"`
		Email     string    `json:"email" validate:"required,email"`
		Phone     string    `json:"phone"`
		Company   string    `json:"company"`
		Notes     string    `json:"notes"`
		AutoLogin *bool     `json:"auto_login"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	autoLogin := true
	if req.AutoLogin != nil {
		autoLogin = *req.AutoLogin
	}

	result, err := h.identity.RegisterVisitor(r.Context(), identity.RegisterVisitorRequest{
		OrgID:     req.OrgID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
		AutoLogin: autoLogin,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Phone    string `json:"phone"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.identity.RegisterAccount(r.Context(), identity.RegisterAccountRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) AccountLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.identity.AccountLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	result, err := h.identity.Me(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) MyOrgs(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	orgs, err := h.identity.MyOrgs(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": orgs})
}

// RegisterUserDeprecated is the retired staff self-signup endpoint. It
// only points callers at the visitor flow.
func (h *AuthHandler) RegisterUserDeprecated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": "direct user registration is disabled; use /auth/register-visitor",
	})
}

// PublicOrgs serves the unauthenticated org picker for visitor sign-up.
func (h *AuthHandler) PublicOrgs(w http.ResponseWriter, r *http.Request) {
	items, err := h.orgs.PublicList(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
