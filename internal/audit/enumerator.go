// Package audit walks organizations, their repositories and collaborators,
// and assembles one access record per repository.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurihiro0119/github-org-repo-access/internal/collector"
	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
	"github.com/kurihiro0119/github-org-repo-access/internal/permission"
)

// Options tunes an enumeration pass
type Options struct {
	// IncludeMaintainers fills AccessResult.Maintainers
	IncludeMaintainers bool

	// ResolveProfiles fetches name and email of reported collaborators.
	// The collaborator listing only carries logins and permissions.
	ResolveProfiles bool

	// ContinueOnError records a failing organization in Report.Failures and
	// moves on to the next one instead of aborting the pass.
	ContinueOnError bool
}

// DefaultOptions returns the options used by the CLI when no flag is given
func DefaultOptions() Options {
	return Options{ResolveProfiles: true}
}

// Failure records an organization that could not be enumerated
type Failure struct {
	Org string `json:"org"`
	Err error  `json:"-"`
}

// Report is the outcome of an enumeration pass
type Report struct {
	Results  domain.ResultSet
	Failures []Failure
}

// Enumerator builds access results from a Collector
type Enumerator struct {
	collector collector.Collector
	observer  Observer
	logger    *zap.Logger
	options   Options
}

// NewEnumerator creates a new enumerator. A nil observer or logger disables
// progress reporting or logging respectively.
func NewEnumerator(c collector.Collector, observer Observer, logger *zap.Logger, options Options) *Enumerator {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{
		collector: c,
		observer:  observer,
		logger:    logger,
		options:   options,
	}
}

// Enumerate returns the access results of every repository of the given
// organizations, in organization order and then repository order.
// Without ContinueOnError the first error aborts the pass and no results
// are returned.
func (e *Enumerator) Enumerate(ctx context.Context, orgs []string) (*Report, error) {
	logger := e.logger.With(zap.String("run_id", uuid.New().String()))
	report := &Report{Results: domain.ResultSet{}}

	for i, org := range orgs {
		e.observer.OrganizationStarted(org, i, len(orgs))
		logger.Info("Reviewing repos for org", zap.String("org", org))

		results, err := e.enumerateOrganization(ctx, logger, org)
		if err != nil {
			if !e.options.ContinueOnError {
				return nil, err
			}
			logger.Warn("Skipping organization", zap.String("org", org), zap.Error(err))
			report.Failures = append(report.Failures, Failure{Org: org, Err: err})
			continue
		}

		report.Results = append(report.Results, results...)
		e.observer.OrganizationFinished(org, len(results))
	}

	return report, nil
}

func (e *Enumerator) enumerateOrganization(ctx context.Context, logger *zap.Logger, org string) ([]domain.AccessResult, error) {
	if _, err := e.collector.GetOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to resolve organization %s: %w", org, err)
	}

	repos, err := e.collector.GetRepositories(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of %s: %w", org, err)
	}
	logger.Info("Listed repositories", zap.String("org", org), zap.Int("count", len(repos)))

	results := make([]domain.AccessResult, 0, len(repos))
	for i, repo := range repos {
		e.observer.RepositoryStarted(org, repo.Name, i, len(repos))

		result, err := e.accessResult(ctx, logger, repo)
		if err != nil {
			return nil, err
		}
		logger.Debug("Adding result",
			zap.String("repo", result.Name),
			zap.String("org", result.Org),
			zap.Strings("admins", domain.Logins(result.Admins)),
			zap.Bool("private", result.Private),
		)
		results = append(results, result)
	}

	return results, nil
}

func (e *Enumerator) accessResult(ctx context.Context, logger *zap.Logger, repo *domain.Repository) (domain.AccessResult, error) {
	collaborators, err := e.collector.GetCollaborators(ctx, repo)
	if err != nil {
		return domain.AccessResult{}, fmt.Errorf("failed to list collaborators of %s/%s: %w", repo.Org, repo.Name, err)
	}

	admins, err := e.completeProfiles(ctx, permission.Admins(collaborators))
	if err != nil {
		return domain.AccessResult{}, err
	}
	logger.Info("Listed admins", zap.String("repo", repo.Name), zap.Int("count", len(admins)))

	result := domain.AccessResult{
		Name:    repo.Name,
		Org:     repo.Org,
		Admins:  domain.Summarize(admins),
		Private: repo.IsPrivate,
	}

	if e.options.IncludeMaintainers {
		maintainers, err := e.completeProfiles(ctx, permission.Maintainers(collaborators))
		if err != nil {
			return domain.AccessResult{}, err
		}
		result.Maintainers = domain.Summarize(maintainers)
	}

	return result, nil
}

// completeProfiles fills name and email from the user profile when the
// collaborator listing did not provide them
func (e *Enumerator) completeProfiles(ctx context.Context, collaborators []domain.Collaborator) ([]domain.Collaborator, error) {
	if !e.options.ResolveProfiles {
		return collaborators, nil
	}

	completed := make([]domain.Collaborator, 0, len(collaborators))
	for _, c := range collaborators {
		if c.Name == nil || c.Email == nil {
			user, err := e.collector.GetUser(ctx, c.Login)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch profile of %s: %w", c.Login, err)
			}
			if c.Name == nil {
				c.Name = user.Name
			}
			if c.Email == nil {
				c.Email = user.Email
			}
		}
		completed = append(completed, c)
	}
	return completed, nil
}
