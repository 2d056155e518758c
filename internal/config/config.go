package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional airlift defaults file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields distinguish
// "unset" from an explicit value so CLI flags keep precedence.
type DefaultsConfig struct {
	Service    *string `toml:"service"`
	Access     *string `toml:"access"`
	Verify     *bool   `toml:"verify"`
	Hashes     *bool   `toml:"hashes"`
	NoProgress *bool   `toml:"no-progress"`
}

// Path returns the resolved path to the defaults file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "airlift", "config.toml")
}

// Load reads the defaults file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. The file is always optional.
func Load() (Config, error) {
	var cfg Config
	path := Path()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return cfg, nil
}
