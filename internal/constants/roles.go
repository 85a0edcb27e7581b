package constants

// Role is the global user role. Roles form a strict hierarchy:
// super > admin > manager > employee.
type Role string

const (
	RoleSuper    Role = "super"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// DefaultRole is assigned when a create request omits the role.
const DefaultRole = RoleEmployee

// Roles lists all valid roles in descending rank order.
var Roles = []Role{RoleSuper, RoleAdmin, RoleManager, RoleEmployee}

// creatableRoles maps a creator role to the set of roles it may assign.
// The table is process-wide static configuration and must never be mutated.
var creatableRoles = map[Role][]Role{
	RoleSuper:    {RoleSuper, RoleAdmin, RoleManager, RoleEmployee},
	RoleAdmin:    {RoleAdmin, RoleManager, RoleEmployee},
	RoleManager:  {RoleEmployee},
	RoleEmployee: {},
}

// CanCreateRole reports whether a user with creatorRole may create or assign
// targetRole.
func CanCreateRole(creatorRole, targetRole Role) bool {
	for _, r := range creatableRoles[creatorRole] {
		if r == targetRole {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
