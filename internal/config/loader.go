package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load merges configuration from global and project sources on top of
// the built-in defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Return defaults if no home dir
	}

	cwd, err := os.Getwd()
	if err != nil {
		return cfg, nil // Return defaults if no cwd
	}

	// Global config first
	globalPath := filepath.Join(home, ".paysafe-cli", "config.yaml")
	if err := loadFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	// Project config overrides global
	projectPath := filepath.Join(cwd, ".paysafe-cli", "config.yaml")
	if err := loadFile(projectPath, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// DiagnosticsDir returns where unclassified failure detail is dumped
func DiagnosticsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".paysafe-cli", "diagnostics")
}
