// Package identity describes who is acting on the registry.
// Authentication itself happens upstream; the registry only trusts the
// actor handed to it.
package identity

import (
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is the coarse authorization role of an authenticated user
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleRT          Role = "RT"
	RoleKepalaDesa  Role = "KEPALA_DESA"
	roleUnspecified Role = ""
)

// ParseRole converts a token claim into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleRT, RoleKepalaDesa:
		return r, nil
	default:
		return roleUnspecified, shared.NewDomainError(shared.CodePermissionDenied, "unknown role "+s)
	}
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRT, RoleKepalaDesa:
		return true
	}
	return false
}

// Actor is the authenticated user performing an operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates an actor
func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// HasAnyRole reports whether the actor holds one of roles
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns a PermissionDenied error carrying message unless the actor holds one of roles
func (a Actor) Require(message string, roles ...Role) error {
	if a.HasAnyRole(roles...) {
		return nil
	}
	return shared.NewDomainError(shared.CodePermissionDenied, message)
}
