package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// RequireRole lets the request through when the principal holds one of roles.
func (ra *RBACAuthorization) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return ra.requireRole(internal.ErrRoleRequired, roles...)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.requireRole(internal.ErrAdminRequired, RoleAdmin)
}

func (ra *RBACAuthorization) requireRole(denied error, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				ra.logger.WarnContext(r.Context(), "authorization check failed: principal not found in context")
				ra.HandleServiceError(w, internal.ErrInvalidPrincipal)
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", principal.UserID,
				"role", principal.Role,
				"required_roles", roles)
			ra.HandleServiceError(w, denied)
		})
	}
}
