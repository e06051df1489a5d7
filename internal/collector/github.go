package collector

import (
	"context"
	"fmt"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
	apperrors "github.com/kurihiro0119/github-org-repo-access/internal/errors"
)

const perPage = 100

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	client *github.Client
}

// NewGitHubCollector creates a new GitHub collector. A non-empty baseURL
// points the client at a GitHub Enterprise Server instance.
func NewGitHubCollector(token, baseURL string) (Collector, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
	}

	return newGitHubCollector(client), nil
}

func newGitHubCollector(client *github.Client) *githubCollector {
	return &githubCollector{client: client}
}

// GetOrganization resolves an organization by login
func (c *githubCollector) GetOrganization(ctx context.Context, org string) (*domain.Organization, error) {
	o, _, err := c.client.Organizations.Get(ctx, org)
	if err != nil {
		return nil, apperrors.FromGitHubError("organization "+org, err)
	}
	return &domain.Organization{
		Login: o.GetLogin(),
		Name:  o.GetName(),
	}, nil
}

// GetRepositories retrieves all repositories for an organization
func (c *githubCollector) GetRepositories(ctx context.Context, org string) ([]*domain.Repository, error) {
	var allRepos []*domain.Repository
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, apperrors.FromGitHubError("repositories of "+org, err)
		}

		for _, repo := range repos {
			allRepos = append(allRepos, toRepository(repo, org))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// GetCollaborators retrieves the collaborators of a repository with their permissions
func (c *githubCollector) GetCollaborators(ctx context.Context, repo *domain.Repository) ([]domain.Collaborator, error) {
	var allCollaborators []domain.Collaborator
	opts := &github.ListCollaboratorsOptions{
		Affiliation: "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		users, resp, err := c.client.Repositories.ListCollaborators(ctx, repo.Org, repo.Name, opts)
		if err != nil {
			return nil, apperrors.FromGitHubError(fmt.Sprintf("collaborators of %s/%s", repo.Org, repo.Name), err)
		}

		for _, user := range users {
			allCollaborators = append(allCollaborators, toCollaborator(user))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCollaborators, nil
}

// GetUser retrieves the public profile of an account
func (c *githubCollector) GetUser(ctx context.Context, login string) (*domain.User, error) {
	u, _, err := c.client.Users.Get(ctx, login)
	if err != nil {
		return nil, apperrors.FromGitHubError("user "+login, err)
	}
	return &domain.User{
		Login: u.GetLogin(),
		Name:  u.Name,
		Email: u.Email,
	}, nil
}

// toRepository converts a go-github repository. The organization login comes
// from the repository itself so renamed or redirected organizations are
// reported under their current login.
func toRepository(repo *github.Repository, requestedOrg string) *domain.Repository {
	org := repo.GetOrganization().GetLogin()
	if org == "" {
		org = repo.GetOwner().GetLogin()
	}
	if org == "" {
		org = requestedOrg
	}
	return &domain.Repository{
		Org:       org,
		Name:      repo.GetName(),
		FullName:  repo.GetFullName(),
		IsPrivate: repo.GetPrivate(),
	}
}

func toCollaborator(user *github.User) domain.Collaborator {
	perms := user.Permissions
	return domain.Collaborator{
		Login: user.GetLogin(),
		Name:  user.Name,
		Email: user.Email,
		Permissions: domain.Permissions{
			Admin:    perms["admin"],
			Maintain: perms["maintain"],
			Push:     perms["push"],
			Triage:   perms["triage"],
			Pull:     perms["pull"],
		},
	}
}
