package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitpen-go/internal/authclient"
	"gitpen-go/internal/config"
	"gitpen-go/internal/credentials"
	"gitpen-go/internal/gitpen"
	"gitpen-go/internal/remote"
	"gitpen-go/internal/store"
)

// remoteOperations names the CLI operations that talk to the remote object
// store. Only these require a configured remote; purely local commands work
// without one.
var remoteOperations = map[string]bool{
	"Push":         true,
	"Pull":         true,
	"ListFiles":    true,
	"ListCommits":  true,
	"CommitCounts": true,
}

// App is the application layer between the CLI and the Service. It
// constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and owns the log file lifecycle.
type App struct {
	cfg     *config.Config
	service *gitpen.Service
	creds   gitpen.CredentialStore
	store   gitpen.ContentStore
	logFile *os.File
}

// New creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Commit", "Push").
// The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	st, err := store.NewStoreFromConfig(cfg.Store, filepath.Join(cwd, cfg.RepoDir))
	if err != nil {
		return nil, fmt.Errorf("creating content store: %w", err)
	}

	var rem gitpen.ObjectStore
	if remoteOperations[operation] {
		rem, err = remote.NewRemoteFromConfig(ctx, cfg.Remote)
		if err != nil {
			return nil, fmt.Errorf("creating remote store: %w", err)
		}
	}

	creds := credentials.NewFileStore(cfg.Credentials.Path)
	tree := store.NewOSWorkingTree(cwd)

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := gitpen.NewService(st, rem, creds, tree, &slogAdapter{l: logger}, gitpen.RealClock{}, gitpen.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		service: svc,
		creds:   creds,
		store:   st,
		logFile: logFile,
	}, nil
}

// Init creates the local repository directory structure.
func (a *App) Init() error {
	return a.store.Init()
}

// Add stages the named working-tree file for the next commit under its
// base filename. Adding two files with the same base name overwrites the
// earlier staged entry.
func (a *App) Add(rawPath string) error {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot add a directory: %s", rawPath)
	}

	return a.service.Add(filepath.Base(absPath), f)
}

// Commit snapshots all staged files into a new commit and returns its ID.
func (a *App) Commit(message string) (string, error) {
	return a.service.Commit(message)
}

// Push uploads all local commits to the remote store for the repository.
func (a *App) Push(ctx context.Context, repoID string) (int, error) {
	return a.service.Push(ctx, repoID)
}

// Pull restores local commits from the remote store for the repository.
func (a *App) Pull(ctx context.Context, repoID string) (int, error) {
	return a.service.Pull(ctx, repoID)
}

// Revert restores the working tree from the named commit's snapshot.
func (a *App) Revert(commitID string) error {
	return a.service.Revert(commitID)
}

// Log returns the local commit history, oldest first.
func (a *App) Log() ([]gitpen.CommitRecord, error) {
	return a.service.LocalLog()
}

// Login authenticates against the web service and stores the returned
// token, overwriting any previous credential.
func (a *App) Login(ctx context.Context, email, password string) (*authclient.LoginResult, error) {
	client := authclient.New(a.cfg.Server.URL)
	result, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.service.Login(result.Token); err != nil {
		return nil, err
	}
	return result, nil
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
