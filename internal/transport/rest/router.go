package rest

import (
	"log/slog"

	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/notification"
	"github.com/frahmantamala/vacation-management/internal/transport/middleware"
	"github.com/frahmantamala/vacation-management/internal/transport/openapi"
	"github.com/frahmantamala/vacation-management/internal/transport/swagger"
	"github.com/frahmantamala/vacation-management/internal/user"
	"github.com/frahmantamala/vacation-management/internal/vacation"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

// Dependencies are the handlers and settings the HTTP API is built from. Nil
// handlers leave their routes unmounted.
type Dependencies struct {
	DB                  *sqlx.DB
	Driver              string
	AllowedOrigins      []string
	UserHandler         *user.Handler
	VacationHandler     *vacation.Handler
	NotificationHandler *notification.Handler
	Validator           *openapi.Validator
	Logger              *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Driver)
	principal := auth.NewMiddleware(deps.Logger)
	rbac := auth.NewRBACAuthorization(deps.Logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.Get("/openapi.yml", openapi.ServeDocument)
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.NotificationHandler != nil {
			r.Get("/notifications/ws", deps.NotificationHandler.ServeWS)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(principal.PrincipalMiddleware)
			if deps.Validator != nil {
				pr.Use(deps.Validator.Middleware)
			}

			if h := deps.UserHandler; h != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.ListUsers)
					ur.Get("/manager/{managerId}", h.ListByManager)
					ur.Get("/{id}", h.GetUser)

					ur.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Post("/", h.CreateUser)
						ar.Put("/{id}", h.UpdateUser)
						ar.Delete("/{id}", h.DeleteUser)
					})
				})
			}

			if h := deps.VacationHandler; h != nil {
				pr.Route("/vacation-requests", func(vr chi.Router) {
					vr.Get("/", h.ListRequests)
					vr.Post("/", h.CreateRequest)
					vr.Get("/check-overlap", h.CheckOverlap)
					vr.With(rbac.RequireRole(auth.RoleAdmin, auth.RoleManager)).Get("/export", h.Export)
					vr.Get("/user/{userId}", h.ListByUser)
					vr.Get("/manager/{managerId}", h.ListForManager)
					vr.Get("/{id}", h.GetRequest)
					vr.Put("/{id}", h.UpdateRequest)
					vr.Delete("/{id}", h.DeleteRequest)
					vr.Post("/{id}/approve", h.ApproveRequest)
					vr.Post("/{id}/reject", h.RejectRequest)
				})
			}
		})
	})
}
