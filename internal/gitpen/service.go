package gitpen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// signedURLExpiry bounds how long listing URLs remain valid.
const signedURLExpiry = 15 * time.Minute

// Service is the orchestration layer coordinating the local content store,
// the remote object store, and the credential store to perform the
// high-level operations needed by the CLI and the web service.
type Service struct {
	store  ContentStore
	remote ObjectStore
	creds  CredentialStore
	tree   WorkingTree
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewService creates a Service with the provided dependencies. Components
// not needed by a caller's operations may be nil (e.g. the web service
// passes no ContentStore or WorkingTree).
func NewService(store ContentStore, remote ObjectStore, creds CredentialStore, tree WorkingTree, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:  store,
		remote: remote,
		creds:  creds,
		tree:   tree,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// Add stages content under the given base name for the next commit.
// Re-adding the same name overwrites the staged entry.
func (s *Service) Add(name string, r io.Reader) error {
	if err := s.store.StageFile(name, r); err != nil {
		return fmt.Errorf("staging file: %w", err)
	}
	s.logger.Debug("file staged", "name", name)
	return nil
}

// Commit snapshots all currently staged files into a new immutable commit
// and returns its identifier.
//
// Staging is cleared strictly after every file copy and the metadata record
// have been durably written. A failure partway leaves the staging area
// untouched so no staged work is lost; the partially written commit
// location is abandoned and never referenced.
func (s *Service) Commit(message string) (string, error) {
	files, err := s.store.StagedFiles()
	if err != nil {
		return "", err
	}

	commitID := s.idgen.New()

	for _, name := range files {
		if err := s.copyStagedFile(commitID, name); err != nil {
			return "", err
		}
	}

	meta := NewCommitMeta(message, s.clock.Now())
	data, err := meta.Marshal()
	if err != nil {
		return "", err
	}
	if err := s.store.WriteCommitFile(commitID, MetadataFile, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("writing commit metadata: %w", err)
	}

	if err := s.store.ClearStaging(); err != nil {
		return "", fmt.Errorf("clearing staging area: %w", err)
	}

	s.logger.Info("commit created", "commit", commitID, "message", message, "files", len(files))
	return commitID, nil
}

func (s *Service) copyStagedFile(commitID, name string) error {
	src, err := s.store.OpenStaged(name)
	if err != nil {
		return fmt.Errorf("opening staged file %s: %w", name, err)
	}
	defer src.Close()

	if err := s.store.WriteCommitFile(commitID, name, src); err != nil {
		return fmt.Errorf("copying %s into commit: %w", name, err)
	}
	return nil
}

// Push uploads every file of every local commit to the remote store under
// the repository's key prefix. A stored auth token is required; without
// one the remote store is never contacted.
//
// Pushes are full resyncs: every object is re-uploaded with overwrite
// semantics, so re-running push is a content no-op and a failed push is
// safe to retry. The first upload error aborts the run; objects already
// uploaded remain in place.
func (s *Service) Push(ctx context.Context, repoID string) (int, error) {
	if _, err := s.creds.Load(); err != nil {
		return 0, err
	}

	commitIDs, err := s.store.ListCommitIDs()
	if err != nil {
		return 0, fmt.Errorf("listing local commits: %w", err)
	}

	uploaded := 0
	for _, commitID := range commitIDs {
		files, err := s.store.CommitFiles(commitID)
		if err != nil {
			return uploaded, fmt.Errorf("listing commit %s: %w", commitID, err)
		}
		for _, name := range files {
			if err := s.pushCommitFile(ctx, repoID, commitID, name); err != nil {
				return uploaded, err
			}
			uploaded++
		}
	}

	s.logger.Info("push complete", "repo", repoID, "commits", len(commitIDs), "objects", uploaded)
	return uploaded, nil
}

func (s *Service) pushCommitFile(ctx context.Context, repoID, commitID, name string) error {
	src, err := s.store.OpenCommitFile(commitID, name)
	if err != nil {
		return fmt.Errorf("opening commit file %s: %w", name, err)
	}
	defer src.Close()

	key := objectKey(repoID, commitID, name)
	if err := s.remote.PutObject(ctx, key, src); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	s.logger.Debug("object uploaded", "key", key)
	return nil
}

// Pull restores the local commit collection from the remote store's current
// object set for the repository. Existing local commit files are
// overwritten with the remote content, so an immediately following push is
// a content no-op.
func (s *Service) Pull(ctx context.Context, repoID string) (int, error) {
	prefix := commitPrefix(repoID)
	keys, err := s.remote.ListObjects(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("listing remote objects: %w", err)
	}

	restored := 0
	for _, key := range keys {
		commitID, name, ok := splitCommitKey(prefix, key)
		if !ok {
			s.logger.Warn("skipping unrecognized remote key", "key", key)
			continue
		}

		var buf bytes.Buffer
		if err := s.remote.GetObject(ctx, key, &buf); err != nil {
			return restored, fmt.Errorf("fetching %s: %w", key, err)
		}
		if err := s.store.WriteCommitFile(commitID, name, &buf); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", key, err)
		}
		restored++
	}

	s.logger.Info("pull complete", "repo", repoID, "objects", restored)
	return restored, nil
}

// Revert restores the working tree from the named local commit's snapshot.
// Content files are copied out verbatim; the metadata record stays behind.
// Existing working files with the same names are overwritten. The commit
// itself is untouched.
func (s *Service) Revert(commitID string) error {
	files, err := s.store.CommitFiles(commitID)
	if err != nil {
		return err
	}

	for _, name := range files {
		if name == MetadataFile {
			continue
		}
		src, err := s.store.OpenCommitFile(commitID, name)
		if err != nil {
			return fmt.Errorf("opening commit file %s: %w", name, err)
		}
		err = s.tree.WriteFile(name, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	}

	s.logger.Info("working tree reverted", "commit", commitID)
	return nil
}

// ListFiles queries the remote store for a repository's content files and
// the folder structure implied by their keys. The metadata record is
// excluded from the file listing; folder derivation sees every key.
func (s *Service) ListFiles(ctx context.Context, repoID string) ([]FileEntry, []FolderEntry, error) {
	keys, err := s.remote.ListObjects(ctx, commitPrefix(repoID))
	if err != nil {
		return nil, nil, fmt.Errorf("listing remote objects: %w", err)
	}

	files := make([]FileEntry, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, "/") || strings.HasSuffix(key, "/"+MetadataFile) {
			continue
		}
		url, err := s.remote.SignedURL(ctx, key, signedURLExpiry)
		if err != nil {
			return nil, nil, fmt.Errorf("signing URL for %s: %w", key, err)
		}
		files = append(files, FileEntry{
			Name: key[strings.LastIndex(key, "/")+1:],
			Path: key,
			URL:  url,
		})
	}

	return files, FolderStructure(keys), nil
}

// ListCommits reconstructs commit records from the repository's remote
// metadata objects. Unparseable records are skipped with a diagnostic
// rather than failing the whole listing.
func (s *Service) ListCommits(ctx context.Context, repoID string) ([]CommitRecord, error) {
	prefix := commitPrefix(repoID)
	keys, err := s.remote.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing remote objects: %w", err)
	}

	commits := make([]CommitRecord, 0)
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+MetadataFile) {
			continue
		}

		var buf bytes.Buffer
		if err := s.remote.GetObject(ctx, key, &buf); err != nil {
			s.logger.Warn("skipping unreadable commit metadata", "key", key, "error", err)
			continue
		}
		meta, err := ParseCommitMeta(buf.Bytes())
		if err != nil {
			s.logger.Warn("skipping malformed commit metadata", "key", key, "error", err)
			continue
		}

		commitID, _, _ := splitCommitKey(prefix, key)
		commits = append(commits, CommitRecord{
			ID:      commitID,
			Message: meta.Message,
			Date:    meta.Date,
		})
	}

	return commits, nil
}

// CommitCounts returns the repository's per-day commit histogram.
func (s *Service) CommitCounts(ctx context.Context, repoID string) ([]DateCount, error) {
	commits, err := s.ListCommits(ctx, repoID)
	if err != nil {
		return nil, err
	}
	return CountByDay(commits), nil
}

// LocalLog reconstructs commit records from the local commit collection,
// newest-last by date. Commits without a readable metadata record are
// skipped with a diagnostic.
func (s *Service) LocalLog() ([]CommitRecord, error) {
	commitIDs, err := s.store.ListCommitIDs()
	if err != nil {
		return nil, fmt.Errorf("listing local commits: %w", err)
	}

	commits := make([]CommitRecord, 0, len(commitIDs))
	for _, commitID := range commitIDs {
		rc, err := s.store.OpenCommitFile(commitID, MetadataFile)
		if err != nil {
			s.logger.Warn("commit has no readable metadata", "commit", commitID, "error", err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			s.logger.Warn("commit has no readable metadata", "commit", commitID, "error", err)
			continue
		}
		meta, err := ParseCommitMeta(data)
		if err != nil {
			s.logger.Warn("commit has malformed metadata", "commit", commitID, "error", err)
			continue
		}
		commits = append(commits, CommitRecord{ID: commitID, Message: meta.Message, Date: meta.Date})
	}

	sortCommitsByDate(commits)
	return commits, nil
}

// Login stores the bearer token obtained from the web service, replacing
// any previously stored credential.
func (s *Service) Login(token string) error {
	if err := s.creds.Save(token); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	s.logger.Info("credential stored")
	return nil
}

func commitPrefix(repoID string) string {
	return repoID + "/commits/"
}

func objectKey(repoID, commitID, name string) string {
	return fmt.Sprintf("%s/commits/%s/%s", repoID, commitID, name)
}

// splitCommitKey decomposes "<prefix><commitID>/<name>" into its parts.
// Commit files are flat, so a name with further path segments does not
// conform and the key is rejected.
func splitCommitKey(prefix, key string) (commitID, name string, ok bool) {
	rel := strings.TrimPrefix(key, prefix)
	if rel == key {
		return "", "", false
	}
	i := strings.Index(rel, "/")
	if i <= 0 || i == len(rel)-1 {
		return "", "", false
	}
	commitID, name = rel[:i], rel[i+1:]
	if strings.Contains(name, "/") {
		return "", "", false
	}
	return commitID, name, true
}
