package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return finalize(&cfg)
}

// LoadOrDefault loads the tool configuration at path. A missing file at the
// default location is not an error: defaults are used instead. Environment
// overrides (including a .env file in the working directory) are applied in
// both cases.
func LoadOrDefault(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if path != DefaultConfigPath || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return finalize(&Config{})
}

func finalize(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)

	if err := validateVersion(cfg); err != nil {
		return nil, err
	}
	if err := validateProject(cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(cfg); err != nil {
		return nil, err
	}
	if err := validateParse(cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
