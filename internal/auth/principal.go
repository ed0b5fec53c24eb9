package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is the access level of a user. The zero value is not a valid role.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleManager      Role = "Manager"
	RoleCollaborator Role = "Collaborator"
)

var roles = []Role{RoleAdmin, RoleManager, RoleCollaborator}

// ParseRole accepts role names case-insensitively, and the numeric codes used
// by the legacy UI (0 Admin, 1 Manager, 2 Collaborator). Anything else is an
// error: there is no default role.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(roles) {
		return roles[n], nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	for _, v := range roles {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.Itoa(int(v))
	default:
		return fmt.Errorf("invalid role value %s", string(b))
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Principal is the acting identity an operation is authorized against.
// The service layer trusts it as given.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool        { return p.Role == RoleAdmin }
func (p Principal) IsManager() bool      { return p.Role == RoleManager }
func (p Principal) IsCollaborator() bool { return p.Role == RoleCollaborator }

// ParsePrincipal builds a principal from the raw X-User-Id and X-User-Role
// header values.
func ParsePrincipal(rawID, rawRole string) (Principal, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, fmt.Errorf("invalid user id %q", rawID)
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: id, Role: role}, nil
}

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(Principal)
	return p, ok
}
