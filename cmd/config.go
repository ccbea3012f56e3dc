package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ATE168Forever/divtrack"
)

// Config is the application configuration, read from a YAML file with
// environment-variable overrides on top.
type Config struct {
	APIHost    string         `yaml:"api_host"`
	Country    string         `yaml:"country"`
	Currency   string         `yaml:"currency"`
	DataDir    string         `yaml:"data_dir"`
	BackupFile string         `yaml:"backup_file"`
	Goals      divtrack.Goals `yaml:"goals"`
}

// DefaultConfigDir is where the config and data files live unless
// overridden.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".divtrack"
	}
	return filepath.Join(home, ".divtrack")
}

// LoadConfig reads the YAML config at path, layering a .env file and
// DIVTRACK_* environment variables on top. A missing config file yields
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		APIHost:  "https://etf-api.ate168forever.com",
		Country:  "tw",
		Currency: "TWD",
		DataDir:  DefaultConfigDir(),
	}

	// a .env next to the working directory feeds the overrides below
	_ = godotenv.Load()

	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.yaml")
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults apply
	case err != nil:
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
		}
	}

	if v := os.Getenv("DIVTRACK_API_HOST"); v != "" {
		cfg.APIHost = v
	}
	if v := os.Getenv("DIVTRACK_COUNTRY"); v != "" {
		cfg.Country = v
	}
	if v := os.Getenv("DIVTRACK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if cfg.BackupFile == "" {
		cfg.BackupFile = filepath.Join(cfg.DataDir, divtrack.BackupFilename)
	}
	return cfg, nil
}
