// Package permission classifies repository collaborators by permission level.
package permission

import "github.com/kurihiro0119/github-org-repo-access/internal/domain"

// FilterByPermission returns the collaborators holding the given permission,
// preserving their relative order. The input is not modified.
func FilterByPermission(collaborators []domain.Collaborator, permission domain.Permission) []domain.Collaborator {
	filtered := make([]domain.Collaborator, 0, len(collaborators))
	for _, c := range collaborators {
		if c.Permissions.Has(permission) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Admins returns the collaborators with admin permission
func Admins(collaborators []domain.Collaborator) []domain.Collaborator {
	return FilterByPermission(collaborators, domain.PermissionAdmin)
}

// Maintainers returns the collaborators with maintain permission
func Maintainers(collaborators []domain.Collaborator) []domain.Collaborator {
	return FilterByPermission(collaborators, domain.PermissionMaintain)
}
