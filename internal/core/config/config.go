package config

import (
	"time"
)

const (
	DefaultConfigPath = "./tsurface.toml"
	EnvPrefix         = "TSURFACE"
)

type Config struct {
	Version       int           `toml:"version"`
	Project       Project       `toml:"project"`
	Exclude       Exclude       `toml:"exclude"`
	Parse         Parse         `toml:"parse"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

// Project names the conventional locations probed under the analysed root.
type Project struct {
	TSConfig   string   `toml:"tsconfig"`
	DepsDir    string   `toml:"deps_dir"`
	SourceDir  string   `toml:"source_dir"`
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Parse struct {
	Workers   int `toml:"workers"`
	CacheSize int `toml:"cache_size"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

type History struct {
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Observability struct {
	MetricsFile   string `toml:"metrics_file"`
	EnableTracing bool   `toml:"enable_tracing"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
}

// Default returns a configuration with every default applied, used when no
// configuration file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Project.TSConfig == "" {
		cfg.Project.TSConfig = "tsconfig.json"
	}
	if cfg.Project.DepsDir == "" {
		cfg.Project.DepsDir = "node_modules"
	}
	if cfg.Project.SourceDir == "" {
		cfg.Project.SourceDir = "src"
	}
	if len(cfg.Project.Extensions) == 0 {
		cfg.Project.Extensions = []string{".ts"}
	}

	// nil means "not configured"; an explicit empty list disables the defaults.
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"node_modules", ".git"}
	}

	if cfg.Parse.CacheSize <= 0 {
		cfg.Parse.CacheSize = 2048
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = time.Second
	}
}
