package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/apperr"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeErr maps service errors onto HTTP via the apperr taxonomy. Anything
// without a kind surfaces as a generic 500 so internals never leak.
func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.Message(err)})
}

// decode parses the JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return apperr.Validation("invalid field: " + verrs[0].Field())
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// intQuery reads a non-negative integer query parameter, 0 when absent or
// malformed. Pagination defaults handle the zero.
func intQuery(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + param)
	}
	return id, nil
}
