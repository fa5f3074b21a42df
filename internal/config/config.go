package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "~/.hekit/default.config"

var ErrConfigFile = errors.New("config: invalid config file")

// Config is the validated hekit configuration.
type Config struct {
	ConfigFilename string
	RepoLocation   string
	Workers        int
}

type fileConfig struct {
	RepoLocation string `toml:"repo_location"`
	Workers      *int   `toml:"workers"`
}

// Load reads and validates a TOML config file. Both the file name and
// repo_location are ~-expanded.
func Load(path string) (Config, error) {
	filename, err := ExpandUser(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}

	var raw fileConfig
	if err := loadToml(filename, &raw); err != nil {
		return Config{}, err
	}

	repo, err := ExpandUser(raw.RepoLocation)
	if err != nil {
		return Config{}, fmt.Errorf("%w: repo_location: %v", ErrConfigFile, err)
	}
	cfg := Config{
		ConfigFilename: filename,
		RepoLocation:   repo,
		Workers:        1,
	}
	if raw.Workers != nil {
		cfg.Workers = *raw.Workers
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: load failed (%s): %v", ErrConfigFile, path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: parse failed (%s): %s", ErrConfigFile, path, strict.String())
		}
		return fmt.Errorf("%w: parse failed (%s): %v", ErrConfigFile, path, err)
	}
	return nil
}

// Validate enforces the fields every command relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ConfigFilename) == "" {
		return fmt.Errorf("%w: config_filename must not be empty", ErrConfigFile)
	}
	if strings.TrimSpace(c.RepoLocation) == "" {
		return fmt.Errorf("%w: repo_location must not be empty", ErrConfigFile)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers=%d must be at least 1", ErrConfigFile, c.Workers)
	}
	return nil
}

// ExpandUser replaces a leading ~ with the current user's home directory.
func ExpandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
