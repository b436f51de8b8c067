package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/passdesk/passdesk/internal/apperr"
)

type Middleware struct {
	tokens *TokenService
}

func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate resolves the bearer token into a principal and stores it on
// the request context. Resolution is pure: no persistence lookups happen
// here, only signature and role-set checks.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ExtractToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		p, err := m.tokens.Resolve(tokenStr)
		if err != nil {
			writeError(w, apperr.Status(err), apperr.Message(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRoles gates an endpoint to an explicit role list. Composed after
// Authenticate.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[strings.ToLower(r)] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p.Kind == KindAnonymous || !want[p.Role] {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken prefers the Authorization header and falls back to a token
// query parameter. The fallback exists for inline image and PDF asset URLs,
// which cannot set headers.
func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
