package model

// Role is the caller's RBAC role as asserted by the authorization collaborator.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// RoleRank returns the numeric rank of a role (higher = more privileges).
// Only relative ordering matters; RoleAtLeast uses >= comparison.
func RoleRank(r Role) int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// RoleAtLeast returns true if role r has at least the privileges of minRole.
func RoleAtLeast(r, minRole Role) bool {
	return RoleRank(r) >= RoleRank(minRole)
}

// Credential is the capability object passed to every privileged or
// I/O-facing operation. It replaces the ambient token/role globals of the
// original dashboard so the pure computation packages never see session state.
type Credential struct {
	Token string
	Role  Role
	Name  string
}

// Valid reports whether the credential carries a token at all.
func (c Credential) Valid() bool {
	return c.Token != ""
}

// Elevated reports whether the credential may run tag mutations.
func (c Credential) Elevated() bool {
	return c.Valid() && RoleAtLeast(c.Role, RoleAdmin)
}
