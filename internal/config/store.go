package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// APIKeyEnv takes precedence over the persisted key.
	APIKeyEnv = "RENDER_API_KEY"

	dirName  = ".render-mcp"
	fileName = "config.json"
)

var (
	ErrNotConfigured  = errors.New("no configuration found")
	ErrAPIKeyNotFound = errors.New(`API key not found. Set RENDER_API_KEY environment variable or run "render-mcp configure"`)
)

type Credentials struct {
	APIKey string `json:"apiKey" mapstructure:"apikey"`
}

// Store persists credentials between runs.
type Store interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Exists() bool
	Path() string
}

// DefaultPath is ~/.render-mcp/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func NewDefaultFileStore() (*FileStore, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

func (s *FileStore) Load() (*Credentials, error) {
	if !s.Exists() {
		return nil, ErrNotConfigured
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var creds Credentials
	if err := v.Unmarshal(&creds); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &creds, nil
}

// Save writes the file through a temp file and rename. Viper is not used for
// writing because it lower-cases keys, and the file must keep "apiKey".
func (s *FileStore) Save(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are required")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// ResolveAPIKey checks the environment first, then the store.
func ResolveAPIKey(getenv func(string) string, store Store) (string, error) {
	if key := getenv(APIKeyEnv); key != "" {
		return key, nil
	}

	if store != nil {
		creds, err := store.Load()
		if err != nil && !errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		if creds != nil && creds.APIKey != "" {
			return creds.APIKey, nil
		}
	}

	return "", ErrAPIKeyNotFound
}

func MaskKey(key string) string {
	if key == "" {
		return "Not configured"
	}
	return "********"
}
