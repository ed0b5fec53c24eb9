package vacation

import (
	"encoding/json"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/core/common/validation"
)

// CreateRequestDTO is the payload for a new vacation request. Status is
// accepted in any shape for compatibility with older clients and ignored.
type CreateRequestDTO struct {
	UserID      int64           `json:"userId"`
	StartDate   Date            `json:"startDate"`
	EndDate     Date            `json:"endDate"`
	Description string          `json:"description"`
	Status      json.RawMessage `json:"status,omitempty"`
}

func (dto CreateRequestDTO) Validate(maxDescription int) error {
	validator := validation.NewValidator()
	validator.Field("userId", dto.UserID).
		Required().
		Positive()
	addDateRules(validator, dto.StartDate, dto.EndDate)
	validator.Field("description", dto.Description).
		MaxLength(descriptionLimit(maxDescription), internal.ErrCodeInvalidDescription)

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateRequestDTO carries the mutable fields of a request. The owner and
// status of a request never change through an update.
type UpdateRequestDTO struct {
	StartDate   Date   `json:"startDate"`
	EndDate     Date   `json:"endDate"`
	Description string `json:"description"`
}

func (dto UpdateRequestDTO) Validate(maxDescription int) error {
	validator := validation.NewValidator()
	addDateRules(validator, dto.StartDate, dto.EndDate)
	validator.Field("description", dto.Description).
		MaxLength(descriptionLimit(maxDescription), internal.ErrCodeInvalidDescription)

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type OverlapResponse struct {
	HasOverlap bool `json:"hasOverlap"`
}

func addDateRules(v *validation.ValidationBuilder, start, end Date) {
	v.Field("startDate", start.Time).Required()
	v.Field("endDate", end.Time).Required()
}

func descriptionLimit(max int) int {
	if max <= 0 {
		return validation.MaxDescriptionLength
	}
	return max
}
