package user

import (
	"strings"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/core/common/validation"
)

// UserDTO is the payload for creating and updating users. Unknown fields such
// as id are ignored.
type UserDTO struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ManagerID *int64    `json:"managerId"`
}

func (dto *UserDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Email = strings.TrimSpace(dto.Email)
	if dto.ManagerID != nil && *dto.ManagerID == 0 {
		dto.ManagerID = nil
	}
}

func (dto UserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", dto.Name).
		Required().
		MaxLength(validation.MaxNameLength, internal.ErrCodeValidationFailed)
	validator.Field("email", dto.Email).
		Required().
		MaxLength(validation.MaxEmailLength, internal.ErrCodeValidationFailed).
		Email()
	validator.Field("role", dto.Role).
		Custom(func(v interface{}) *internal.AppError {
			if r, ok := v.(auth.Role); !ok || !r.Valid() {
				return internal.NewValidationFieldError("role", "role must be one of Admin, Manager, Collaborator", internal.ErrCodeInvalidRole)
			}
			return nil
		})
	validator.Field("managerId", dto.ManagerID).
		Custom(func(v interface{}) *internal.AppError {
			if id, ok := v.(*int64); ok && id != nil && *id < 0 {
				return internal.NewValidationFieldError("managerId", "managerId must be a positive number", internal.ErrCodeInvalidManager)
			}
			return nil
		})

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
