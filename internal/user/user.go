package user

import (
	"time"

	"github.com/frahmantamala/vacation-management/internal/auth"
	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ManagerID *int64    `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// ReportsTo reports whether managerID is the user's direct manager.
func (u *User) ReportsTo(managerID int64) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}

func NewUser(dto UserDTO) *User {
	now := time.Now()
	return &User{
		Name:      dto.Name,
		Email:     dto.Email,
		Role:      dto.Role,
		ManagerID: dto.ManagerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		ManagerID: u.ManagerID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	role, err := auth.ParseRole(u.Role)
	if err != nil {
		// keep the raw value so the record is still visible; it fails Role.Valid
		role = auth.Role(u.Role)
	}
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      role,
		ManagerID: u.ManagerID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
