package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for gitpen.
type Config struct {
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	RepoDir     string            `toml:"repo_dir"` // repository directory name inside the working tree
	Remote      RemoteConfig      `toml:"remote"`
	Store       StoreConfig       `toml:"store"`
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
}

// RemoteConfig represents configuration for the remote object store.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type RemoteConfig struct {
	Type string `toml:"type"` // "s3" or "memory"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // custom endpoint for MinIO-style deployments
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// StoreConfig represents configuration for the local content store.
type StoreConfig struct {
	Type string `toml:"type"` // "filesystem" (default) or "memory"
}

// CredentialsConfig holds the location of the single-slot token file.
type CredentialsConfig struct {
	Path string `toml:"path"`
}

// ServerConfig holds web service settings. URL is also used client-side as
// the login endpoint base.
type ServerConfig struct {
	URL        string         `toml:"url"`
	ListenAddr string         `toml:"listen_addr"`
	JWTSecret  string         `toml:"jwt_secret"`
	Database   DatabaseConfig `toml:"database"`
}

// DatabaseConfig represents configuration for the web service's document
// store. The Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with the provided base directory and
// default values.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		RepoDir: ".gitpen",
		Remote: RemoteConfig{
			Type: "s3",
		},
		Store: StoreConfig{
			Type: "filesystem",
		},
		Credentials: CredentialsConfig{
			Path: filepath.Join(baseDir, "auth_token"),
		},
		Server: ServerConfig{
			URL:        "http://localhost:3002",
			ListenAddr: ":3002",
			Database: DatabaseConfig{
				Type:    "sqlite",
				DataDir: filepath.Join(baseDir, "data"),
			},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. Fails if a config file already exists.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
