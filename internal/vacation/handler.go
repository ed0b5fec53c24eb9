package vacation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/transport"
	"github.com/frahmantamala/vacation-management/pkg/logger"
)

type ServiceAPI interface {
	HasOverlap(ctx context.Context, userID int64, start, end Date, excludeID *int64) (bool, error)
	CreateRequest(ctx context.Context, dto CreateRequestDTO, principal auth.Principal) (*VacationRequest, error)
	UpdateRequest(ctx context.Context, id int64, dto UpdateRequestDTO, principal auth.Principal) (*VacationRequest, error)
	ApproveRequest(ctx context.Context, id int64, principal auth.Principal) (*VacationRequest, error)
	RejectRequest(ctx context.Context, id int64, principal auth.Principal) (*VacationRequest, error)
	DeleteRequest(ctx context.Context, id int64, principal auth.Principal) (bool, error)
	RequestsForManager(ctx context.Context, managerID int64) ([]*VacationRequest, error)
	ListRequests(ctx context.Context) ([]*VacationRequest, error)
	GetRequest(ctx context.Context, id int64) (*VacationRequest, error)
	ListRequestsByUser(ctx context.Context, userID int64) ([]*VacationRequest, error)
	Export(ctx context.Context, w io.Writer, managerID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListRequests handles GET /vacation-requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListRequests(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /vacation-requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.GetRequest(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

// ListByUser handles GET /vacation-requests/user/{userId}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.PathInt64(r, "userId")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid user id", internal.ErrCodeValidationFailed))
		return
	}

	requests, err := h.Service.ListRequestsByUser(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

// ListForManager handles GET /vacation-requests/manager/{managerId}
func (h *Handler) ListForManager(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.PathInt64(r, "managerId")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid manager id", internal.ErrCodeValidationFailed))
		return
	}

	requests, err := h.Service.RequestsForManager(r.Context(), managerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, requests)
}

// CreateRequest handles POST /vacation-requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateRequest: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), dto, principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	logger.From(r.Context()).Info("CreateRequest: vacation request created",
		"request_id", req.ID,
		"user_id", req.UserID)
	h.WriteJSON(w, http.StatusCreated, req)
}

// UpdateRequest handles PUT /vacation-requests/{id}
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	var dto UpdateRequestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateRequest: invalid request body", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body: "+err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	req, err := h.Service.UpdateRequest(r.Context(), id, dto, principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

// ApproveRequest handles POST /vacation-requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ApproveRequest)
}

// RejectRequest handles POST /vacation-requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.RejectRequest)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, int64, auth.Principal) (*VacationRequest, error)) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, err := fn(r.Context(), id, principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	logger.From(r.Context()).Info("vacation request status changed", "request_id", id, "status", req.Status)
	h.WriteJSON(w, http.StatusOK, req)
}

// DeleteRequest handles DELETE /vacation-requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	deleted, err := h.Service.DeleteRequest(r.Context(), id, principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !deleted {
		h.HandleServiceError(w, internal.ErrRequestNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckOverlap handles GET /vacation-requests/check-overlap
func (h *Handler) CheckOverlap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := strconv.ParseInt(q.Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		h.HandleServiceError(w, internal.NewValidationFieldError("userId", "userId must be a positive number", internal.ErrCodeValidationFailed))
		return
	}
	start, err := ParseDate(q.Get("startDate"))
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("startDate", err.Error(), internal.ErrCodeInvalidDate))
		return
	}
	end, err := ParseDate(q.Get("endDate"))
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("endDate", err.Error(), internal.ErrCodeInvalidDate))
		return
	}

	var exclude *int64
	if raw := q.Get("excludeRequestId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationFieldError("excludeRequestId", "excludeRequestId must be a number", internal.ErrCodeValidationFailed))
			return
		}
		exclude = &id
	}

	overlap, err := h.Service.HasOverlap(r.Context(), userID, start, end, exclude)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, OverlapResponse{HasOverlap: overlap})
}

// Export handles GET /vacation-requests/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var managerID int64
	if raw := r.URL.Query().Get("managerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleServiceError(w, internal.NewValidationFieldError("managerId", "managerId must be a positive number", internal.ErrCodeValidationFailed))
			return
		}
		managerID = id
	}

	// Errors have to be reported before the first byte of the workbook goes out.
	var buf bytes.Buffer
	if err := h.Service.Export(r.Context(), &buf, managerID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("vacation-requests-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("Export: failed to write workbook", "error", err)
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidPrincipal)
		return auth.Principal{}, false
	}
	return p, true
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.HandleServiceError(w, internal.NewValidationError("invalid vacation request id", internal.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
