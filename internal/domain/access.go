package domain

// CollaboratorSummary is the exported view of a collaborator
type CollaboratorSummary struct {
	Name  *string `json:"name"`
	Login string  `json:"login"`
	Email *string `json:"email"`
}

// AccessResult reports the privileged collaborators of one repository
type AccessResult struct {
	Name        string                `json:"name"`
	Org         string                `json:"org"`
	Admins      []CollaboratorSummary `json:"admins"`
	Maintainers []CollaboratorSummary `json:"maintainers,omitempty"`
	Private     bool                  `json:"private"`
}

// ResultSet is the ordered output of one enumeration pass
type ResultSet []AccessResult

// Summarize projects collaborators to their exported view, keeping order.
// The result is never nil.
func Summarize(collaborators []Collaborator) []CollaboratorSummary {
	summaries := make([]CollaboratorSummary, 0, len(collaborators))
	for _, c := range collaborators {
		summaries = append(summaries, CollaboratorSummary{
			Name:  c.Name,
			Login: c.Login,
			Email: c.Email,
		})
	}
	return summaries
}

// Logins returns the logins of the summaries in order
func Logins(summaries []CollaboratorSummary) []string {
	logins := make([]string, 0, len(summaries))
	for _, s := range summaries {
		logins = append(logins, s.Login)
	}
	return logins
}
