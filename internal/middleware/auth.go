package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"bookameal/internal/models"
)

// Identity is established by the gateway in front of this service, which
// forwards it in these headers.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal Authenticate stored on ctx.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

// Authenticate resolves the request principal from the identity headers.
// Requests without a usable identity are left anonymous; handlers that need
// one answer 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := parsePrincipal(r.Header); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func parsePrincipal(h http.Header) (models.Principal, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(h.Get(UserIDHeader)))
	if err != nil || id <= 0 {
		return models.Principal{}, false
	}
	role := models.Role(strings.ToLower(strings.TrimSpace(h.Get(UserRoleHeader))))
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return models.Principal{}, false
	}
	return models.Principal{ID: id, Role: role}, true
}
