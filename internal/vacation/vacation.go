package vacation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	vacationDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/vacation"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// ParseStatus accepts status names case-insensitively and the legacy numeric
// codes 0 Pending, 1 Approved, 2 Rejected.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(statuses) {
		return statuses[n], nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// BlocksOverlap reports whether a request in this status reserves its dates.
func (s Status) BlocksOverlap() bool {
	return s != StatusRejected
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		if v == "" {
			*s = ""
			return nil
		}
		parsed, err := ParseStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case float64:
		parsed, err := ParseStatus(strconv.Itoa(int(v)))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	return fmt.Errorf("invalid status value %s", string(b))
}

type VacationRequest struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (v *VacationRequest) IsPending() bool {
	return v.Status == StatusPending
}

func (v *VacationRequest) Days() int {
	return v.StartDate.Days(v.EndDate)
}

// NewVacationRequest builds a request from a create payload. The status is
// always Pending whatever the caller sent.
func NewVacationRequest(dto CreateRequestDTO) *VacationRequest {
	now := time.Now()
	return &VacationRequest{
		UserID:      dto.UserID,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		Status:      StatusPending,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(v *VacationRequest) *vacationDatamodel.VacationRequest {
	return &vacationDatamodel.VacationRequest{
		ID:          v.ID,
		UserID:      v.UserID,
		StartDate:   v.StartDate.Time,
		EndDate:     v.EndDate.Time,
		Status:      string(v.Status),
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func FromDataModel(v *vacationDatamodel.VacationRequest) *VacationRequest {
	status, err := ParseStatus(v.Status)
	if err != nil {
		status = Status(v.Status)
	}
	return &VacationRequest{
		ID:          v.ID,
		UserID:      v.UserID,
		StartDate:   DateOf(v.StartDate),
		EndDate:     DateOf(v.EndDate),
		Status:      status,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func FromDataModelSlice(requests []*vacationDatamodel.VacationRequest) []*VacationRequest {
	result := make([]*VacationRequest, len(requests))
	for i, r := range requests {
		result[i] = FromDataModel(r)
	}
	return result
}
