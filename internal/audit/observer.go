package audit

// Observer receives progress notifications from an enumeration pass.
// Implementations must not influence the results.
type Observer interface {
	// OrganizationStarted is called before the repositories of org are fetched.
	// index is zero-based; total is the number of requested organizations.
	OrganizationStarted(org string, index, total int)

	// RepositoryStarted is called before the collaborators of repo are fetched.
	RepositoryStarted(org, repo string, index, total int)

	// OrganizationFinished is called once every repository of org has been processed
	OrganizationFinished(org string, repositories int)
}

type nopObserver struct{}

func (nopObserver) OrganizationStarted(string, int, int) {}
func (nopObserver) RepositoryStarted(string, string, int, int) {}
func (nopObserver) OrganizationFinished(string, int) {}
