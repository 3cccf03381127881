package shared

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// StaffChecker resolves an opaque credential to a staff principal.
// The implementation (session store, SSO, admin table) lives outside this core.
type StaffChecker interface {
	Check(ctx context.Context, token string) (*Principal, error)
}

// StaffCheckerFunc adapts a function to the StaffChecker interface.
type StaffCheckerFunc func(ctx context.Context, token string) (*Principal, error)

// Check implements StaffChecker.
func (f StaffCheckerFunc) Check(ctx context.Context, token string) (*Principal, error) {
	return f(ctx, token)
}

// RequireStaff gates a route group behind the staff check. Every mutating
// operation except public RFQ submission goes through this.
func RequireStaff(checker StaffChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing credentials")
				return
			}
			principal, err := checker.Check(r.Context(), token)
			if err != nil || principal == nil {
				if err != nil {
					logger.Warn("staff check failed", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "staff access required")
				return
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.Header.Get("X-Staff-Token")
}
