package vacation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	vacationDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/vacation"
	"github.com/frahmantamala/vacation-management/internal/core/events"
	"github.com/frahmantamala/vacation-management/internal/user"
)

type Repository interface {
	Create(ctx context.Context, req *vacationDatamodel.VacationRequest) error
	// GetByID returns nil without error when the request does not exist.
	GetByID(ctx context.Context, id int64) (*vacationDatamodel.VacationRequest, error)
	List(ctx context.Context) ([]*vacationDatamodel.VacationRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]*vacationDatamodel.VacationRequest, error)
	ListByUsers(ctx context.Context, userIDs []int64) ([]*vacationDatamodel.VacationRequest, error)
	Update(ctx context.Context, req *vacationDatamodel.VacationRequest) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserDirectory resolves request owners and reporting lines.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	ListByManager(ctx context.Context, managerID int64) ([]*user.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo           Repository
	users          UserDirectory
	publisher      EventPublisher
	policy         Policy
	maxDescription int
	locks          *userLocks
	logger         *slog.Logger
}

func NewService(repo Repository, users UserDirectory, publisher EventPublisher, cfg internal.VacationConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		users:          users,
		publisher:      publisher,
		policy:         Policy{EnforceTerminalStatus: cfg.EnforceTerminalStatus},
		maxDescription: cfg.MaxDescriptionLength,
		locks:          newUserLocks(),
		logger:         logger,
	}
}

// HasOverlap reports whether [start, end] collides with a non-rejected request
// of userID other than excludeID.
func (s *Service) HasOverlap(ctx context.Context, userID int64, start, end Date, excludeID *int64) (bool, error) {
	existing, err := s.listByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return FirstOverlap(existing, start, end, excludeID) != nil, nil
}

func (s *Service) CreateRequest(ctx context.Context, dto CreateRequestDTO, principal auth.Principal) (*VacationRequest, error) {
	if err := dto.Validate(s.maxDescription); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(dto.UserID)
	defer unlock()

	existing, err := s.listByUser(ctx, dto.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckCreate(principal, dto.UserID, dto.StartDate, dto.EndDate, existing); err != nil {
		s.logDenied("create", 0, dto.UserID, principal, err)
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, dto.UserID); err != nil {
		return nil, err
	}

	req := NewVacationRequest(dto)
	model := ToDataModel(req)
	if err := s.repo.Create(ctx, model); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create vacation request", "user_id", dto.UserID, "error", err)
		return nil, fmt.Errorf("create vacation request: %w", err)
	}

	created := FromDataModel(model)
	s.logger.Info("vacation request created",
		"request_id", created.ID,
		"user_id", created.UserID,
		"acting_user_id", principal.UserID,
		"start_date", created.StartDate.String(),
		"end_date", created.EndDate.String())
	s.publish(ctx, events.EventTypeVacationRequested, created, principal)
	return created, nil
}

func (s *Service) UpdateRequest(ctx context.Context, id int64, dto UpdateRequestDTO, principal auth.Principal) (*VacationRequest, error) {
	if err := dto.Validate(s.maxDescription); err != nil {
		return nil, err
	}

	current, unlock, err := s.lockRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.listByUser(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckUpdate(principal, current, dto.StartDate, dto.EndDate, existing); err != nil {
		s.logDenied("update", id, current.UserID, principal, err)
		return nil, err
	}

	current.StartDate = dto.StartDate
	current.EndDate = dto.EndDate
	current.Description = dto.Description
	current.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(current)); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update vacation request", "request_id", id, "error", err)
		return nil, fmt.Errorf("update vacation request: %w", err)
	}

	s.logger.Info("vacation request updated", "request_id", id, "acting_user_id", principal.UserID)
	s.publish(ctx, events.EventTypeVacationUpdated, current, principal)
	return current, nil
}

func (s *Service) ApproveRequest(ctx context.Context, id int64, principal auth.Principal) (*VacationRequest, error) {
	return s.transition(ctx, id, principal, StatusApproved)
}

func (s *Service) RejectRequest(ctx context.Context, id int64, principal auth.Principal) (*VacationRequest, error) {
	return s.transition(ctx, id, principal, StatusRejected)
}

func (s *Service) transition(ctx context.Context, id int64, principal auth.Principal, target Status) (*VacationRequest, error) {
	current, unlock, err := s.lockRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	owner, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckTransition(principal, current, owner); err != nil {
		s.logDenied(string(target), id, current.UserID, principal, err)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, string(target)); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update vacation request status", "request_id", id, "status", target, "error", err)
		return nil, fmt.Errorf("update vacation request status: %w", err)
	}

	from := current.Status
	current.Status = target
	current.UpdatedAt = time.Now()

	s.logger.Info("vacation request status changed",
		"request_id", id,
		"from", from,
		"to", target,
		"acting_user_id", principal.UserID)

	eventType := events.EventTypeVacationApproved
	if target == StatusRejected {
		eventType = events.EventTypeVacationRejected
	}
	s.publish(ctx, eventType, current, principal)
	return current, nil
}

// DeleteRequest removes a request. It returns false when the request does not
// exist and an error when the principal may not delete it.
func (s *Service) DeleteRequest(ctx context.Context, id int64, principal auth.Principal) (bool, error) {
	current, unlock, err := s.lockRequest(ctx, id)
	if err != nil {
		if internal.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	defer unlock()

	var owner *user.User
	if principal.IsManager() && current.UserID != principal.UserID {
		owner, err = s.users.GetByID(ctx, current.UserID)
		if err != nil && !internal.IsNotFound(err) {
			return false, err
		}
	}
	if err := s.policy.CheckDelete(principal, current, owner); err != nil {
		s.logDenied("delete", id, current.UserID, principal, err)
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete vacation request", "request_id", id, "error", err)
		return false, fmt.Errorf("delete vacation request: %w", err)
	}
	if deleted {
		s.logger.Info("vacation request deleted", "request_id", id, "acting_user_id", principal.UserID)
		s.publish(ctx, events.EventTypeVacationDeleted, current, principal)
	}
	return deleted, nil
}

// RequestsForManager returns every request owned by a direct report of
// managerID, in storage order.
func (s *Service) RequestsForManager(ctx context.Context, managerID int64) ([]*VacationRequest, error) {
	reports, err := s.users.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	ids := DirectReportIDs(reports, managerID)
	if len(ids) == 0 {
		return []*VacationRequest{}, nil
	}

	requests, err := s.repo.ListByUsers(ctx, ids)
	if err != nil {
		s.logger.Error("failed to list vacation requests for manager", "manager_id", managerID, "error", err)
		return nil, fmt.Errorf("list vacation requests by users: %w", err)
	}
	return FromDataModelSlice(requests), nil
}

func (s *Service) ListRequests(ctx context.Context) ([]*VacationRequest, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list vacation requests", "error", err)
		return nil, fmt.Errorf("list vacation requests: %w", err)
	}
	return FromDataModelSlice(requests), nil
}

func (s *Service) GetRequest(ctx context.Context, id int64) (*VacationRequest, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get vacation request", "request_id", id, "error", err)
		return nil, fmt.Errorf("get vacation request: %w", err)
	}
	if model == nil {
		return nil, internal.ErrRequestNotFound
	}
	return FromDataModel(model), nil
}

func (s *Service) ListRequestsByUser(ctx context.Context, userID int64) ([]*VacationRequest, error) {
	return s.listByUser(ctx, userID)
}

func (s *Service) listByUser(ctx context.Context, userID int64) ([]*VacationRequest, error) {
	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list vacation requests for user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list vacation requests by user: %w", err)
	}
	return FromDataModelSlice(requests), nil
}

// lockRequest loads request id, takes its owner's lock and reloads it so the
// caller decides on the state it will write over.
func (s *Service) lockRequest(ctx context.Context, id int64) (*VacationRequest, func(), error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.locks.Lock(req.UserID)
	req, err = s.GetRequest(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return req, unlock, nil
}

func (s *Service) logDenied(action string, requestID, ownerID int64, principal auth.Principal, err error) {
	s.logger.Warn("vacation request action denied",
		"action", action,
		"request_id", requestID,
		"user_id", ownerID,
		"acting_user_id", principal.UserID,
		"acting_role", principal.Role,
		"reason", err.Error())
}

func (s *Service) publish(ctx context.Context, eventType string, req *VacationRequest, principal auth.Principal) {
	if s.publisher == nil {
		return
	}
	event := events.NewVacationEvent(eventType, req.ID, req.UserID, principal.UserID,
		string(req.Status), req.StartDate.String(), req.EndDate.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish vacation event", "event_type", eventType, "request_id", req.ID, "error", err)
	}
}
