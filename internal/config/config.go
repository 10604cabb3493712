// Package config provides configuration directory management and file defaults for certknife.
//
// Defaults live in certknife.yaml inside the config directory:
//
//	comment: me@host
//	formatVersion: 3
//	logLevel: Debug
//	keySize: 4096
//	expiresInDays: 730
//
// Command-line flags override every value.
package config

import (
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"certknife/pkg/certgen"
	"certknife/pkg/ppk"
)

// FileName is the defaults file looked up in the config directory.
const FileName = "certknife.yaml"

// Config holds defaults that command-line flags override.
type Config struct {
	Comment       string `json:"comment,omitempty"`
	FormatVersion int    `json:"formatVersion,omitempty"`
	LogLevel      string `json:"logLevel,omitempty"`
	KeySize       int    `json:"keySize,omitempty"`
	ExpiresInDays int    `json:"expiresInDays,omitempty"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Comment:       ppk.DefaultComment,
		FormatVersion: int(ppk.V3),
		LogLevel:      "Info",
		KeySize:       certgen.DefaultKeySize,
		ExpiresInDays: certgen.DefaultExpiresInDays,
	}
}

// GetConfigDir returns the configuration directory for certknife.
// It follows platform-specific conventions:
// - Windows: %APPDATA%\certknife
// - Unix-like: $XDG_CONFIG_HOME/certknife or $HOME/.config/certknife
func GetConfigDir() (string, error) {
	// Check for XDG_CONFIG_HOME first (cross-platform standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "certknife"), nil
	}
	// Windows: use APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "certknife"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "certknife"), nil
}

// Load reads the defaults file and merges it over the built-in defaults.
//
// A missing default file is not an error; a missing explicit path is.
//
// Args:
//
//	path: Path to a YAML defaults file, or "" for certknife.yaml in GetConfigDir.
//
// Returns:
//
//	The merged configuration, or an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		dir, err := GetConfigDir()
		if err != nil {
			return c, nil
		}
		path = filepath.Join(dir, FileName)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return c, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if err := ppk.FormatVersion(c.FormatVersion).Validate(); err != nil {
		return err
	}
	if c.KeySize != 2048 && c.KeySize != 4096 {
		return errors.Errorf("keySize must be 2048 or 4096, got %d", c.KeySize)
	}
	if c.ExpiresInDays <= 0 {
		return errors.Errorf("expiresInDays must be positive, got %d", c.ExpiresInDays)
	}
	return nil
}
