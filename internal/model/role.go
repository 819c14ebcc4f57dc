package model

// Role is the account's position in the permission matrix.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Roles lists every assignable role, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Label returns a human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Administrator"
	case RoleAdmin:
		return "Company Administrator"
	case RoleUser:
		return "User"
	}
	return string(r)
}
