package collector

import (
	"context"

	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
)

// Collector defines the interface for reading organization access data from GitHub
type Collector interface {
	// GetOrganization resolves an organization by login
	GetOrganization(ctx context.Context, org string) (*domain.Organization, error)

	// GetRepositories retrieves all repositories for an organization
	GetRepositories(ctx context.Context, org string) ([]*domain.Repository, error)

	// GetCollaborators retrieves the collaborators of a repository with their permissions
	GetCollaborators(ctx context.Context, repo *domain.Repository) ([]domain.Collaborator, error)

	// GetUser retrieves the public profile of an account
	GetUser(ctx context.Context, login string) (*domain.User, error)
}
