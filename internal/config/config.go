package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project-local config file name.
const FileName = ".deflake.yaml"

// FileConfig is the on-disk configuration. Pointer fields distinguish
// "absent" from the zero value.
type FileConfig struct {
	Bug          string   `yaml:"bug,omitempty"`
	Expects      *string  `yaml:"expects,omitempty"`
	Platforms    []string `yaml:"platforms,omitempty"`
	FlagSpecific []string `yaml:"flag_specific,omitempty"`
	BaselineRoot string   `yaml:"baseline_root,omitempty"`
	ResultsDir   string   `yaml:"results_dir,omitempty"`
	ResultsURL   string   `yaml:"results_url,omitempty"`
	History      string   `yaml:"history,omitempty"`
	SkipSeen     *bool    `yaml:"skip_seen,omitempty"`
	AddNew       *bool    `yaml:"add_new,omitempty"`
	Debug        bool     `yaml:"debug"`
	NoColor      bool     `yaml:"no_color"`
	Format       string   `yaml:"format,omitempty"`
	Theme        string   `yaml:"theme,omitempty"`
}

// LoadFile reads a config file at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Load finds and reads the config file. A missing file yields an empty
// FileConfig and an empty path.
func Load() (*FileConfig, string, error) {
	path := getConfigPath()
	if path == "" {
		return &FileConfig{}, "", nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileConfig{}, "", nil
		}
		return nil, path, err
	}
	return cfg, path, nil
}

// getConfigPath checks the working directory first, then the user config dir.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "deflake", "config.yaml")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
