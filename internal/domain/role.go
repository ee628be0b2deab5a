package domain

// Role represents the role of a staff user
type Role string

const (
	// RoleAdmin has full access to all features
	RoleAdmin Role = "admin"
	// RoleManager plans activities and assigns field teams
	RoleManager Role = "manager"
	// RoleEngineer runs surveys and supervises dismantling
	RoleEngineer Role = "engineer"
	// RoleTechnician performs field work
	RoleTechnician Role = "technician"
	// RoleStorekeeper receives dispatched equipment at the warehouse
	RoleStorekeeper Role = "storekeeper"
	// RoleViewer has read-only access
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEngineer, RoleTechnician, RoleStorekeeper, RoleViewer:
		return true
	default:
		return false
	}
}

// IsAdminOrManager reports whether the role sees every activity section.
// Only the exact values "admin" and "manager" qualify.
func (r Role) IsAdminOrManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanManageUsers checks if the role can manage other staff users
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// CanManageActivities checks if the role can create activities and change main assignees
func (r Role) CanManageActivities() bool {
	return r.IsAdminOrManager()
}

// CanDeleteActivities checks if the role can delete activities
func (r Role) CanDeleteActivities() bool {
	return r == RoleAdmin
}
