package domain

// Permission represents a repository permission level
type Permission string

const (
	PermissionAdmin    Permission = "admin"
	PermissionMaintain Permission = "maintain"
	PermissionPush     Permission = "push"
	PermissionTriage   Permission = "triage"
	PermissionPull     Permission = "pull"
)

// Permissions holds the permission flags of a collaborator on a repository
type Permissions struct {
	Admin    bool
	Maintain bool
	Push     bool
	Triage   bool
	Pull     bool
}

// Has reports whether the flag for the given permission is set
func (p Permissions) Has(permission Permission) bool {
	switch permission {
	case PermissionAdmin:
		return p.Admin
	case PermissionMaintain:
		return p.Maintain
	case PermissionPush:
		return p.Push
	case PermissionTriage:
		return p.Triage
	case PermissionPull:
		return p.Pull
	}
	return false
}

// Collaborator represents an account with access to a repository
type Collaborator struct {
	Login       string
	Name        *string
	Email       *string
	Permissions Permissions
}
