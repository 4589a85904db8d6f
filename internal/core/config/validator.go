package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateProject(cfg *Config) error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"project.tsconfig", cfg.Project.TSConfig},
		{"project.deps_dir", cfg.Project.DepsDir},
		{"project.source_dir", cfg.Project.SourceDir},
	} {
		value := strings.TrimSpace(field.value)
		if value == "" {
			return fmt.Errorf("%s must not be empty", field.name)
		}
		if filepath.IsAbs(value) {
			return fmt.Errorf("%s must be relative to the analysed root, got %q", field.name, value)
		}
	}

	for i, ext := range cfg.Project.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("project.extensions[%d] %q must start with a dot", i, ext)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateParse(cfg *Config) error {
	if cfg.Parse.Workers < 0 {
		return fmt.Errorf("parse.workers must be >= 0, got %d", cfg.Parse.Workers)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MinInterval < 0 {
		return fmt.Errorf("watch.min_interval must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	endpoint := strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	if endpoint != "" && !cfg.Observability.EnableTracing {
		return fmt.Errorf("observability.otlp_endpoint is set but observability.enable_tracing is false")
	}
	if strings.Contains(endpoint, "://") {
		return fmt.Errorf("observability.otlp_endpoint must be host:port, got %q", endpoint)
	}
	return nil
}
