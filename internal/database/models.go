package database

import "time"

// User is an account in the hosting service.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository is hosting metadata for one repository. The ID scopes all
// remote object keys for the repository's commits.
type Repository struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Visibility  bool      `json:"visibility"` // true = public
	CreatedAt   time.Time `json:"createdAt"`
}

// Issue is a tracked issue belonging to a repository.
type Issue struct {
	ID          string    `json:"id"`
	RepoID      string    `json:"repository"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // "open" or "closed"
	CreatedAt   time.Time `json:"createdAt"`
}
