package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kurihiro0119/github-org-repo-access/internal/audit"
	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
	apperrors "github.com/kurihiro0119/github-org-repo-access/internal/errors"
)

type fakeCollector struct {
	repos         map[string][]*domain.Repository
	collaborators map[string][]domain.Collaborator
	users         map[string]*domain.User
	orgErrors     map[string]error
	collabErrors  map[string]error

	calls []string
}

func (f *fakeCollector) GetOrganization(_ context.Context, org string) (*domain.Organization, error) {
	f.calls = append(f.calls, "org:"+org)
	if err := f.orgErrors[org]; err != nil {
		return nil, err
	}
	if _, ok := f.repos[org]; !ok {
		return nil, apperrors.NewNotFoundError("organization " + org)
	}
	return &domain.Organization{Login: org}, nil
}

func (f *fakeCollector) GetRepositories(_ context.Context, org string) ([]*domain.Repository, error) {
	f.calls = append(f.calls, "repos:"+org)
	return f.repos[org], nil
}

func (f *fakeCollector) GetCollaborators(_ context.Context, repo *domain.Repository) ([]domain.Collaborator, error) {
	key := repo.Org + "/" + repo.Name
	f.calls = append(f.calls, "collaborators:"+key)
	if err := f.collabErrors[key]; err != nil {
		return nil, err
	}
	return f.collaborators[key], nil
}

func (f *fakeCollector) GetUser(_ context.Context, login string) (*domain.User, error) {
	f.calls = append(f.calls, "user:"+login)
	if u, ok := f.users[login]; ok {
		return u, nil
	}
	return &domain.User{Login: login}, nil
}

type event struct {
	kind  string
	org   string
	repo  string
	index int
	total int
}

type recordingObserver struct {
	events []event
}

func (o *recordingObserver) OrganizationStarted(org string, index, total int) {
	o.events = append(o.events, event{kind: "org", org: org, index: index, total: total})
}

func (o *recordingObserver) RepositoryStarted(org, repo string, index, total int) {
	o.events = append(o.events, event{kind: "repo", org: org, repo: repo, index: index, total: total})
}

func (o *recordingObserver) OrganizationFinished(org string, repositories int) {
	o.events = append(o.events, event{kind: "done", org: org, total: repositories})
}

func strPtr(s string) *string { return &s }

func repo(org, name string, private bool) *domain.Repository {
	return &domain.Repository{Org: org, Name: name, FullName: org + "/" + name, IsPrivate: private}
}

func newFixture() *fakeCollector {
	return &fakeCollector{
		repos: map[string][]*domain.Repository{
			"orgA": {repo("orgA", "r1", true), repo("orgA", "r2", false)},
			"orgB": {repo("orgB", "r3", false)},
			"void": {},
		},
		collaborators: map[string][]domain.Collaborator{
			"orgA/r1": {
				{Login: "alice", Permissions: domain.Permissions{Admin: true, Maintain: true, Pull: true}},
				{Login: "dave", Permissions: domain.Permissions{Pull: true}},
				{Login: "bob", Permissions: domain.Permissions{Admin: true}},
			},
			"orgA/r2": {
				{Login: "erin", Permissions: domain.Permissions{Maintain: true}},
			},
			"orgB/r3": {
				{Login: "carol", Name: strPtr("Carol"), Email: strPtr("carol@example.com"), Permissions: domain.Permissions{Admin: true}},
			},
		},
		users: map[string]*domain.User{
			"alice": {Login: "alice", Name: strPtr("Alice Liddell"), Email: strPtr("alice@example.com")},
		},
	}
}

func names(results domain.ResultSet) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestEnumeratePreservesOrder(t *testing.T) {
	fake := newFixture()
	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())

	report, err := e.Enumerate(context.Background(), []string{"orgA", "orgB"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, names(report.Results))
	assert.Empty(t, report.Failures)

	report, err = e.Enumerate(context.Background(), []string{"orgB", "orgA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1", "r2"}, names(report.Results))
}

func TestEnumerateBuildsAccessResults(t *testing.T) {
	fake := newFixture()
	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())

	report, err := e.Enumerate(context.Background(), []string{"orgA", "orgB"})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	r1 := report.Results[0]
	assert.Equal(t, "orgA", r1.Org)
	assert.True(t, r1.Private)
	require.Len(t, r1.Admins, 2)
	assert.Equal(t, domain.CollaboratorSummary{Name: strPtr("Alice Liddell"), Login: "alice", Email: strPtr("alice@example.com")}, r1.Admins[0])
	assert.Equal(t, "bob", r1.Admins[1].Login)
	assert.Nil(t, r1.Admins[1].Name)
	assert.Nil(t, r1.Maintainers)

	r2 := report.Results[1]
	assert.NotNil(t, r2.Admins)
	assert.Empty(t, r2.Admins)
	assert.False(t, r2.Private)

	r3 := report.Results[2]
	assert.Equal(t, "Carol", *r3.Admins[0].Name)
	assert.NotContains(t, fake.calls, "user:carol")
	assert.NotContains(t, fake.calls, "user:dave")
}

func TestEnumerateUsesRepositoryOrganizationLogin(t *testing.T) {
	fake := newFixture()
	fake.repos["old-name"] = []*domain.Repository{repo("new-name", "moved", false)}
	fake.collaborators["new-name/moved"] = []domain.Collaborator{{Login: "alice", Permissions: domain.Permissions{Admin: true}}}

	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())
	report, err := e.Enumerate(context.Background(), []string{"old-name"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "new-name", report.Results[0].Org)
}

func TestEnumerateEmptyOrganization(t *testing.T) {
	e := audit.NewEnumerator(newFixture(), nil, nil, audit.DefaultOptions())

	report, err := e.Enumerate(context.Background(), []string{"void"})
	require.NoError(t, err)
	assert.NotNil(t, report.Results)
	assert.Empty(t, report.Results)
}

func TestEnumerateNoOrganizations(t *testing.T) {
	fake := newFixture()
	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())

	report, err := e.Enumerate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Empty(t, fake.calls)
}

func TestEnumerateIncludesMaintainers(t *testing.T) {
	options := audit.DefaultOptions()
	options.IncludeMaintainers = true
	e := audit.NewEnumerator(newFixture(), nil, nil, options)

	report, err := e.Enumerate(context.Background(), []string{"orgA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, domain.Logins(report.Results[0].Maintainers))
	assert.Equal(t, []string{"erin"}, domain.Logins(report.Results[1].Maintainers))
}

func TestEnumerateWithoutProfiles(t *testing.T) {
	fake := newFixture()
	options := audit.DefaultOptions()
	options.ResolveProfiles = false
	e := audit.NewEnumerator(fake, nil, nil, options)

	report, err := e.Enumerate(context.Background(), []string{"orgA"})
	require.NoError(t, err)
	assert.Nil(t, report.Results[0].Admins[0].Name)
	for _, call := range fake.calls {
		assert.NotContains(t, call, "user:")
	}
}

func TestEnumerateFailsFast(t *testing.T) {
	fake := newFixture()
	fake.collabErrors = map[string]error{"orgB/r3": apperrors.NewForbiddenError("access to collaborators of orgB/r3 denied")}
	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())

	report, err := e.Enumerate(context.Background(), []string{"orgA", "orgB", "orgC"})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Contains(t, err.Error(), "failed to list collaborators of orgB/r3")
	assert.NotContains(t, fake.calls, "org:orgC")
}

func TestEnumerateUnknownOrganization(t *testing.T) {
	fake := newFixture()
	e := audit.NewEnumerator(fake, nil, nil, audit.DefaultOptions())

	_, err := e.Enumerate(context.Background(), []string{"ghost"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, []string{"org:ghost"}, fake.calls)
}

func TestEnumerateContinueOnError(t *testing.T) {
	fake := newFixture()
	boom := errors.New("connection reset")
	fake.orgErrors = map[string]error{"orgB": boom}

	core, logs := observer.New(zapcore.WarnLevel)
	options := audit.DefaultOptions()
	options.ContinueOnError = true
	e := audit.NewEnumerator(fake, nil, zap.New(core), options)

	report, err := e.Enumerate(context.Background(), []string{"orgA", "orgB", "void"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, names(report.Results))
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "orgB", report.Failures[0].Org)
	assert.ErrorIs(t, report.Failures[0].Err, boom)
	assert.Equal(t, 1, logs.FilterMessage("Skipping organization").Len())
}

func TestEnumerateNotifiesObserver(t *testing.T) {
	recorder := &recordingObserver{}
	e := audit.NewEnumerator(newFixture(), recorder, nil, audit.DefaultOptions())

	withObserver, err := e.Enumerate(context.Background(), []string{"orgA", "orgB"})
	require.NoError(t, err)

	assert.Equal(t, []event{
		{kind: "org", org: "orgA", index: 0, total: 2},
		{kind: "repo", org: "orgA", repo: "r1", index: 0, total: 2},
		{kind: "repo", org: "orgA", repo: "r2", index: 1, total: 2},
		{kind: "done", org: "orgA", total: 2},
		{kind: "org", org: "orgB", index: 1, total: 2},
		{kind: "repo", org: "orgB", repo: "r3", index: 0, total: 1},
		{kind: "done", org: "orgB", total: 1},
	}, recorder.events)

	withoutObserver, err := audit.NewEnumerator(newFixture(), nil, nil, audit.DefaultOptions()).
		Enumerate(context.Background(), []string{"orgA", "orgB"})
	require.NoError(t, err)
	assert.Equal(t, withoutObserver.Results, withObserver.Results)
}

func TestEnumerateDoesNotModifyInput(t *testing.T) {
	orgs := []string{"orgB", "orgA"}
	_, err := audit.NewEnumerator(newFixture(), nil, nil, audit.DefaultOptions()).Enumerate(context.Background(), orgs)
	require.NoError(t, err)
	assert.Equal(t, []string{"orgB", "orgA"}, orgs)
}

func TestEnumerateLogsProgress(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := audit.NewEnumerator(newFixture(), nil, zap.New(core), audit.DefaultOptions())

	_, err := e.Enumerate(context.Background(), []string{"orgA"})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Reviewing repos for org").Len())
	assert.Equal(t, 2, logs.FilterMessage("Adding result").Len())
	for _, entry := range logs.All() {
		assert.Contains(t, entry.ContextMap(), "run_id", fmt.Sprintf("entry %q", entry.Message))
	}
}
