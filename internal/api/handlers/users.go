package handlers

import (
	"net/http"

	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/user"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(userSvc *user.Service) *UserHandler {
	return &UserHandler{users: userSvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	users, err := h.users.List(r.Context(), p.OrgID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	u, err := h.users.Get(r.Context(), id, p.OrgID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())

	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone"`
		Role     string `json:"role" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	created, err := h.users.Create(r.Context(), p, user.CreateRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Status   *string `json:"status"`
		Role     *string `json:"role"`
		Password *string `json:"password" validate:"omitempty,min=8"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	updated, err := h.users.Update(r.Context(), p, id, user.UpdateRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		Status:   req.Status,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), p, id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
