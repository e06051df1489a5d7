package domain

// Repository represents a GitHub repository
type Repository struct {
	// Org is the login of the organization that owns the repository as
	// reported by the API, which may differ from the name used to look it up.
	Org       string
	Name      string
	FullName  string
	IsPrivate bool
}

// Organization represents a GitHub organization
type Organization struct {
	Login string
	Name  string
}

// User represents a GitHub account profile
type User struct {
	Login string
	Name  *string
	Email *string
}
