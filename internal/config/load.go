package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDir   = "terrainview"
	fileName = "config.yaml"

	// envConfig names a config file ahead of the search path.
	envConfig = "TERRAINVIEW_CONFIG"
)

// Load layers the built-in defaults, the first config file found and the
// command-line overrides, then validates the result. f may be nil.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	var path string
	if f != nil {
		path = f.ConfigPath
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}

	if f != nil {
		f.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchPaths() []string {
	var paths []string
	if env := os.Getenv(envConfig); env != "" {
		paths = append(paths, env)
	}
	return append(paths, fileName, filepath.Join(ConfigDir(), fileName))
}

func findConfigFile() string {
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user directory the viewer keeps its config in.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = filepath.Abs(".")
	}
	return filepath.Join(base, appDir)
}

// merge decodes the YAML file at path over c. Keys that match no setting are
// rejected so typos do not pass silently.
func (c *Config) merge(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}
