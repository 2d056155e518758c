package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credentials is the persisted account file: the login identity plus the
// remote folder uploads land in by default.
type Credentials struct {
	Username       string `json:"Username"`
	Password       string `json:"Password"`
	BaseFolderHash string `json:"BaseFolderHash"`
	FolderKey      string `json:"FolderKey"`
}

// ConfigurationError reports missing credential or destination fields.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "configuration incomplete: missing " + strings.Join(e.Missing, ", ")
}

// Validate checks that every field an upload run depends on is present.
func (c Credentials) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "Username")
	}
	if c.Password == "" {
		missing = append(missing, "Password")
	}
	if c.BaseFolderHash == "" {
		missing = append(missing, "BaseFolderHash")
	}
	if c.FolderKey == "" {
		missing = append(missing, "FolderKey")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// CredentialsPath returns the resolved path to the credentials file.
func CredentialsPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "airlift", "credentials.json")
}

// LoadCredentials reads the credentials file at path, or the default XDG
// location when path is empty. A missing file yields zero Credentials and
// no error; Validate reports the gaps.
func LoadCredentials(path string) (Credentials, error) {
	if path == "" {
		path = CredentialsPath()
	}
	if path == "" {
		return Credentials{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return creds, nil
}

// SaveCredentials writes the credentials file at path (default XDG location
// when empty), creating parent directories as needed. The file holds a
// password, so it is written 0600.
func SaveCredentials(path string, creds Credentials) error {
	if path == "" {
		path = CredentialsPath()
	}
	if path == "" {
		return errors.New("cannot resolve credentials path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
