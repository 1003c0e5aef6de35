package domain

import (
	"fmt"
	"time"
)

// Role enumerates the closed set of capability tags in the system.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleVP          Role = "vp"
	RoleDirector    Role = "director"
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
	RoleComplainer  Role = "complainer"
)

// Roles lists every valid role, in no particular order.
var Roles = []Role{RoleAdmin, RoleVP, RoleDirector, RoleCoordinator, RoleWorker, RoleComplainer}

// ParseRole validates a raw role token against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleVP, RoleDirector, RoleCoordinator, RoleWorker, RoleComplainer:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether the role is a member of the enumeration.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// RequiresScope reports whether the role is bound to one campus and one
// complaint type. Only coordinators and workers carry a scope.
func (r Role) RequiresScope() bool {
	return r == RoleCoordinator || r == RoleWorker
}

// DashboardRoute returns the canonical dashboard route name for the role.
// The switch is exhaustive over the enumeration; an invalid role yields "".
func (r Role) DashboardRoute() string {
	switch r {
	case RoleAdmin:
		return "admin.dashboard"
	case RoleVP:
		return "vp.dashboard"
	case RoleDirector:
		return "director.dashboard"
	case RoleCoordinator:
		return "coordinator.dashboard"
	case RoleWorker:
		return "worker.dashboard"
	case RoleComplainer:
		return "complainer.dashboard"
	default:
		return ""
	}
}

// RoleAssignment binds a user to a role, optionally scoped by campus and
// complaint type. Campus and type are set only for coordinator/worker rows.
type RoleAssignment struct {
	ID              string
	UserID          string
	Role            Role
	CampusID        *string
	ComplaintTypeID *string
	CreatedAt       time.Time
}

// ScopeMatches reports whether the assignment covers the given campus and
// complaint type. Unscoped assignments never match.
func (a *RoleAssignment) ScopeMatches(campusID, complaintTypeID string) bool {
	if a == nil || a.CampusID == nil || a.ComplaintTypeID == nil {
		return false
	}
	return *a.CampusID == campusID && *a.ComplaintTypeID == complaintTypeID
}
