package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/transport"
	"github.com/frahmantamala/vacation-management/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	ListByManager(ctx context.Context, managerID int64) ([]*User, error)
	Create(ctx context.Context, dto UserDTO) (*User, error)
	Update(ctx context.Context, id int64, dto UserDTO) (*User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// ListByManager handles GET /users/manager/{managerId}
func (h *Handler) ListByManager(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.PathInt64(r, "managerId")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid manager id", internal.ErrCodeValidationFailed))
		return
	}

	users, err := h.Service.ListByManager(r.Context(), managerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto UserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateUser: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	logger.From(r.Context()).Info("CreateUser: user created", "user_id", u.ID)
	h.WriteJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed))
		return
	}

	var dto UserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateUser: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed))
		return
	}

	deleted, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !deleted {
		h.HandleServiceError(w, internal.ErrUserNotFound)
		return
	}

	logger.From(r.Context()).Info("DeleteUser: user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
