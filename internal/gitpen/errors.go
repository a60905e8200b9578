package gitpen

import "errors"

var (
	// ErrNotLoggedIn indicates no stored auth credential; push refuses to
	// contact the remote store until login has been performed.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoStaging indicates the staging area is missing or unreadable.
	ErrNoStaging = errors.New("staging area not found (run init first)")

	// ErrNotFound indicates a commit, repository, or object lookup miss.
	// Callers must be able to distinguish this from internal failures.
	ErrNotFound = errors.New("not found")
)
