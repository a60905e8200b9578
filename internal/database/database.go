package database

// Database is the document store behind the web service: users,
// repositories, and issues. Find methods return (nil, nil) on lookup
// misses so callers can surface not-found distinctly from failures.
type Database interface {
	CreateUser(username, email, passwordHash string) (*User, error)
	FindUserByEmail(email string) (*User, error)
	FindUserByID(id string) (*User, error)

	CreateRepository(ownerID, name, description string, visibility bool) (*Repository, error)
	ListRepositories() ([]*Repository, error)
	ListRepositoriesByOwner(ownerID string) ([]*Repository, error)
	FindRepositoryByID(id string) (*Repository, error)
	FindRepositoryByName(name string) (*Repository, error)
	UpdateRepository(id, name, description string) (*Repository, error)
	ToggleRepositoryVisibility(id string) (*Repository, error)
	DeleteRepository(id string) error

	CreateIssue(repoID, title, description string) (*Issue, error)
	FindIssueByID(id string) (*Issue, error)
	ListIssuesByRepository(repoID string) ([]*Issue, error)
	UpdateIssue(id, title, description, status string) (*Issue, error)
	DeleteIssue(id string) error

	Close() error
}
