package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitpen-go/internal/database/migrations"
	"gitpen-go/internal/gitpen"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens a SQLite database and migrates it to the latest
// schema version. path can be a file path or ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent (each pool
	// connection would otherwise see its own empty database) and sidesteps
	// SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward
	// compatibility).
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the underlying database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// User operations

func (s *SQLiteDatabase) CreateUser(username, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (s *SQLiteDatabase) FindUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (s *SQLiteDatabase) FindUserByID(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *SQLiteDatabase) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

// Repository operations

func (s *SQLiteDatabase) CreateRepository(ownerID, name, description string, visibility bool) (*Repository, error) {
	r := &Repository{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Visibility:  visibility,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO repositories (id, owner_id, name, description, visibility, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Name, r.Description, r.Visibility, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository: %w", err)
	}
	return r, nil
}

const repoColumns = `id, owner_id, name, description, visibility, created_at`

func (s *SQLiteDatabase) ListRepositories() ([]*Repository, error) {
	rows, err := s.db.Query(`SELECT ` + repoColumns + ` FROM repositories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	defer rows.Close()
	return scanRepositories(rows)
}

func (s *SQLiteDatabase) ListRepositoriesByOwner(ownerID string) ([]*Repository, error) {
	rows, err := s.db.Query(
		`SELECT `+repoColumns+` FROM repositories WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing repositories by owner: %w", err)
	}
	defer rows.Close()
	return scanRepositories(rows)
}

func (s *SQLiteDatabase) FindRepositoryByID(id string) (*Repository, error) {
	return scanRepository(s.db.QueryRow(
		`SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id))
}

func (s *SQLiteDatabase) FindRepositoryByName(name string) (*Repository, error) {
	return scanRepository(s.db.QueryRow(
		`SELECT `+repoColumns+` FROM repositories WHERE name = ? ORDER BY created_at LIMIT 1`, name))
}

func (s *SQLiteDatabase) UpdateRepository(id, name, description string) (*Repository, error) {
	res, err := s.db.Exec(
		`UPDATE repositories SET name = ?, description = ? WHERE id = ?`, name, description, id)
	if err != nil {
		return nil, fmt.Errorf("updating repository: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindRepositoryByID(id)
}

func (s *SQLiteDatabase) ToggleRepositoryVisibility(id string) (*Repository, error) {
	res, err := s.db.Exec(`UPDATE repositories SET visibility = NOT visibility WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggling repository visibility: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindRepositoryByID(id)
}

func (s *SQLiteDatabase) DeleteRepository(id string) error {
	res, err := s.db.Exec(`DELETE FROM repositories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting repository: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gitpen.ErrNotFound
	}
	return nil
}

func scanRepository(row *sql.Row) (*Repository, error) {
	var r Repository
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.Visibility, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding repository: %w", err)
	}
	return &r, nil
}

func scanRepositories(rows *sql.Rows) ([]*Repository, error) {
	var repos []*Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.Visibility, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning repository: %w", err)
		}
		repos = append(repos, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repositories: %w", err)
	}
	return repos, nil
}

// Issue operations

const issueColumns = `id, repo_id, title, description, status, created_at`

func (s *SQLiteDatabase) CreateIssue(repoID, title, description string) (*Issue, error) {
	i := &Issue{
		ID:          uuid.New().String(),
		RepoID:      repoID,
		Title:       title,
		Description: description,
		Status:      "open",
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO issues (id, repo_id, title, description, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, i.RepoID, i.Title, i.Description, i.Status, i.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}
	return i, nil
}

func (s *SQLiteDatabase) FindIssueByID(id string) (*Issue, error) {
	var i Issue
	err := s.db.QueryRow(
		`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id).
		Scan(&i.ID, &i.RepoID, &i.Title, &i.Description, &i.Status, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding issue: %w", err)
	}
	return &i, nil
}

func (s *SQLiteDatabase) ListIssuesByRepository(repoID string) ([]*Issue, error) {
	rows, err := s.db.Query(
		`SELECT `+issueColumns+` FROM issues WHERE repo_id = ? ORDER BY created_at`, repoID)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var issues []*Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.ID, &i.RepoID, &i.Title, &i.Description, &i.Status, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issues = append(issues, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}
	return issues, nil
}

func (s *SQLiteDatabase) UpdateIssue(id, title, description, status string) (*Issue, error) {
	res, err := s.db.Exec(
		`UPDATE issues SET title = ?, description = ?, status = ? WHERE id = ?`,
		title, description, status, id)
	if err != nil {
		return nil, fmt.Errorf("updating issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindIssueByID(id)
}

func (s *SQLiteDatabase) DeleteIssue(id string) error {
	res, err := s.db.Exec(`DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gitpen.ErrNotFound
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements Database
var _ Database = (*SQLiteDatabase)(nil)
