package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/vacation-management/internal/core/events"
)

type Repository interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListByManager(ctx context.Context, managerID int64) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	// Delete removes the user and their vacation requests atomically and
	// returns how many requests went with it.
	Delete(ctx context.Context, id int64) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	return FromDataModelSlice(users), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// ListByManager returns the direct reports of managerID, one level deep.
func (s *Service) ListByManager(ctx context.Context, managerID int64) ([]*User, error) {
	users, err := s.repo.ListByManager(ctx, managerID)
	if err != nil {
		s.logger.Error("failed to list direct reports", "manager_id", managerID, "error", err)
		return nil, fmt.Errorf("list users by manager: %w", err)
	}
	return FromDataModelSlice(users), nil
}

func (s *Service) Create(ctx context.Context, dto UserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, 0, dto.ManagerID); err != nil {
		return nil, err
	}

	u := NewUser(dto)
	model := ToDataModel(u)
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	created := FromDataModel(model)
	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user for update", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if existing == nil {
		return nil, internal.ErrUserNotFound
	}
	// admins stay admins; Delete relies on it
	if existing.Role == string(auth.RoleAdmin) && dto.Role != auth.RoleAdmin {
		s.logger.Warn("refusing to change admin role", "user_id", id, "role", dto.Role)
		return nil, internal.ErrAdminRoleLocked
	}
	if err := s.checkManager(ctx, id, dto.ManagerID); err != nil {
		return nil, err
	}

	existing.Name = dto.Name
	existing.Email = dto.Email
	existing.Role = string(dto.Role)
	existing.ManagerID = dto.ManagerID
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", id)
	return FromDataModel(existing), nil
}

// Delete removes a user together with their vacation requests. It returns
// false when no such user exists. Admins are never deleted, whoever asks.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user for delete", "user_id", id, "error", err)
		return false, fmt.Errorf("get user by id: %w", err)
	}
	if existing == nil {
		return false, nil
	}

	u := FromDataModel(existing)
	if u.IsAdmin() {
		s.logger.Warn("refusing to delete admin user", "user_id", id)
		return false, internal.ErrAdminUndeletable
	}

	reports, err := s.repo.ListByManager(ctx, id)
	if err != nil {
		s.logger.Error("failed to list direct reports", "manager_id", id, "error", err)
		return false, fmt.Errorf("list users by manager: %w", err)
	}
	if len(reports) > 0 {
		s.logger.Warn("refusing to delete user with direct reports", "user_id", id, "reports", len(reports))
		return false, internal.ErrUserHasReports.WithDetails(map[string]interface{}{"reports": len(reports)})
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return false, fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id, "removed_requests", removed)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewUserDeletedEvent(id, removed)); err != nil {
			s.logger.Error("failed to publish user deleted event", "user_id", id, "error", err)
		}
	}
	return true, nil
}

func (s *Service) checkManager(ctx context.Context, userID int64, managerID *int64) error {
	if managerID == nil {
		return nil
	}
	if *managerID == userID {
		return internal.NewValidationFieldError("managerId", "a user cannot manage themselves", internal.ErrCodeInvalidManager)
	}
	manager, err := s.repo.GetByID(ctx, *managerID)
	if err != nil {
		s.logger.Error("failed to get manager", "manager_id", *managerID, "error", err)
		return fmt.Errorf("get manager by id: %w", err)
	}
	if manager == nil {
		return internal.NewValidationFieldError("managerId", fmt.Sprintf("manager %d does not exist", *managerID), internal.ErrCodeInvalidManager)
	}
	return nil
}
