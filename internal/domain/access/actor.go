package access

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleGuest    Role = "Guest"
)

// ParseRole accepts any casing and returns the canonical role.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleEmployee, RoleGuest} {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
