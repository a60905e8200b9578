package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitpen-go/internal/gitpen"
)

// FileSystemStore is the filesystem implementation of the ContentStore
// interface. It owns a repository directory with this layout:
//
//	<root>/
//	  staging/
//	    <name>              (staged file content, flat by base name)
//	  commits/
//	    <commitID>/
//	      <name>            (snapshot files, copied verbatim)
//	      commit.json       (metadata record)
type FileSystemStore struct {
	root       string
	stagingDir string
	commitsDir string
}

// NewFileSystemStore creates a store rooted at the given directory.
// The directory structure is not created until Init is called.
func NewFileSystemStore(root string) *FileSystemStore {
	return &FileSystemStore{
		root:       root,
		stagingDir: filepath.Join(root, "staging"),
		commitsDir: filepath.Join(root, "commits"),
	}
}

// Init creates the staging area and commit collection.
func (s *FileSystemStore) Init() error {
	for _, dir := range []string{s.stagingDir, s.commitsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// StageFile copies content into the staging area under the given base name,
// overwriting any previously staged entry with that name.
func (s *FileSystemStore) StageFile(name string, r io.Reader) error {
	if _, err := os.Stat(s.stagingDir); err != nil {
		if os.IsNotExist(err) {
			return gitpen.ErrNoStaging
		}
		return fmt.Errorf("checking staging area: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.stagingDir, name), r)
}

// StagedFiles lists the names of all currently staged files.
func (s *FileSystemStore) StagedFiles() ([]string, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gitpen.ErrNoStaging
		}
		return nil, fmt.Errorf("reading staging area: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// OpenStaged opens a staged file for reading.
func (s *FileSystemStore) OpenStaged(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.stagingDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("staged file %s: %w", name, gitpen.ErrNotFound)
		}
		return nil, fmt.Errorf("opening staged file: %w", err)
	}
	return f, nil
}

// ClearStaging removes every staged entry, leaving the staging directory
// itself in place.
func (s *FileSystemStore) ClearStaging() error {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		return fmt.Errorf("reading staging area: %w", err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(s.stagingDir, e.Name())); err != nil {
			return fmt.Errorf("removing staged file %s: %w", e.Name(), err)
		}
	}
	return nil
}

// WriteCommitFile durably writes one file into a commit directory, creating
// the directory on first write. The write is atomic (temp file + rename) so
// a crash never leaves a half-written commit file behind.
func (s *FileSystemStore) WriteCommitFile(commitID, name string, r io.Reader) error {
	dir := filepath.Join(s.commitsDir, commitID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating commit directory: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, name), r)
}

// ListCommitIDs lists the identifiers of all local commits.
func (s *FileSystemStore) ListCommitIDs() ([]string, error) {
	entries, err := os.ReadDir(s.commitsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading commit collection: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

// CommitFiles lists the file names within one commit.
func (s *FileSystemStore) CommitFiles(commitID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.commitsDir, commitID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("commit %s: %w", commitID, gitpen.ErrNotFound)
		}
		return nil, fmt.Errorf("reading commit %s: %w", commitID, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// OpenCommitFile opens one file of a commit for reading.
func (s *FileSystemStore) OpenCommitFile(commitID, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.commitsDir, commitID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("commit file %s/%s: %w", commitID, name, gitpen.ErrNotFound)
		}
		return nil, fmt.Errorf("opening commit file: %w", err)
	}
	return f, nil
}

// writeFileAtomic writes data from r to path using temp file + rename.
func writeFileAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements gitpen.ContentStore
var _ gitpen.ContentStore = (*FileSystemStore)(nil)
