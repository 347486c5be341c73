package auth

import "github.com/google/uuid"

// Role is the access level a user holds.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleExperte Role = "experte"
	RoleKunde   Role = "kunde"
)

// Principal is the authenticated actor performing an operation.
type Principal struct {
	ID         uuid.UUID
	Role       Role
	IsVerified bool
}

// Allowed reports whether the principal holds one of the required roles.
// Every role gate in the system goes through this check.
func Allowed(p Principal, roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
