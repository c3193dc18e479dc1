// Package config loads the terminal's client configuration from an
// optional YAML file with environment overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is everything the binaries need to wire up: where the server
// is, how long to wait for it, where credentials live, and an optional
// journal database.
type Config struct {
	ServerURL       string `yaml:"server_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CredentialsFile string `yaml:"credentials_file"`
	JournalDSN      string `yaml:"journal_dsn"`

	// Passphrase is never read from the file; set APEXPOS_PASSPHRASE.
	Passphrase string `yaml:"-"`
}

func defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		ServerURL:       "http://localhost:8082",
		TimeoutSeconds:  15,
		CredentialsFile: filepath.Join(home, ".apexpos", "credentials.json"),
	}
}

// Load reads path (missing file is fine: defaults apply) and then the
// APEXPOS_* environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		if err == nil {
			if err := yaml.Unmarshal(blob, &cfg); err != nil {
				return Config{}, err
			}
		}
	}

	if v := os.Getenv("APEXPOS_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("APEXPOS_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("APEXPOS_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("APEXPOS_JOURNAL_DSN"); v != "" {
		cfg.JournalDSN = v
	}
	cfg.Passphrase = os.Getenv("APEXPOS_PASSPHRASE")

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 15
	}
	return cfg, nil
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
