package gitpen

import "io"

// ContentStore provides access to the local content store: the staging
// area plus the immutable commit collection. Each commit occupies its own
// uniquely-identified location, so no locking is needed across commits.
type ContentStore interface {
	// Init creates the staging area and commit collection if absent.
	Init() error

	// StageFile copies content into the staging area under the given base
	// name. Staging the same name twice overwrites the previous entry.
	StageFile(name string, r io.Reader) error

	// StagedFiles lists the names of all currently staged files.
	// Returns ErrNoStaging if the staging area does not exist.
	StagedFiles() ([]string, error)

	// OpenStaged opens a staged file for reading.
	OpenStaged(name string) (io.ReadCloser, error)

	// ClearStaging removes every staged entry. Called by the commit engine
	// strictly after all commit writes have completed.
	ClearStaging() error

	// WriteCommitFile durably writes a file into the commit identified by
	// commitID, creating the commit location on first write. Commit files
	// are never rewritten after the commit is complete.
	WriteCommitFile(commitID, name string, r io.Reader) error

	// ListCommitIDs lists the identifiers of all local commits.
	ListCommitIDs() ([]string, error)

	// CommitFiles lists the file names within one commit, metadata included.
	// Returns ErrNotFound for an unknown commit ID.
	CommitFiles(commitID string) ([]string, error)

	// OpenCommitFile opens one file of a commit for reading.
	OpenCommitFile(commitID, name string) (io.ReadCloser, error)
}

// WorkingTree abstracts writes back into the user's working directory,
// used by revert to restore a commit's snapshot.
type WorkingTree interface {
	WriteFile(name string, r io.Reader) error
}
