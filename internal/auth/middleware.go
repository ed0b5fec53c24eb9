package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/transport"
	"github.com/frahmantamala/vacation-management/pkg/logger"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

type Middleware struct {
	*transport.BaseHandler
}

func NewMiddleware(lg *slog.Logger) *Middleware {
	return &Middleware{BaseHandler: transport.NewBaseHandler(lg)}
}

// PrincipalMiddleware reads the acting identity from the trusted identity
// headers. Requests with a missing or malformed identity are rejected.
func (m *Middleware) PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get(HeaderUserID)
		rawRole := r.Header.Get(HeaderUserRole)

		principal, err := ParsePrincipal(rawID, rawRole)
		if err != nil {
			m.Logger.Warn("principal middleware: rejecting request identity",
				"error", err,
				"path", r.URL.Path,
				"user_id_header", rawID,
				"role_header", rawRole)
			m.HandleServiceError(w, internal.ErrInvalidPrincipal)
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "acting_user_id", principal.UserID, "acting_role", principal.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
