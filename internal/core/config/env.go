package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: TSURFACE_[SECTION]_[KEY] (e.g., TSURFACE_HISTORY_PATH).
func ApplyEnvOverrides(cfg *Config) {
	// Project
	setEnvString(&cfg.Project.TSConfig, EnvPrefix+"_PROJECT_TSCONFIG")
	setEnvString(&cfg.Project.DepsDir, EnvPrefix+"_PROJECT_DEPS_DIR")
	setEnvString(&cfg.Project.SourceDir, EnvPrefix+"_PROJECT_SOURCE_DIR")
	setEnvList(&cfg.Project.Extensions, EnvPrefix+"_PROJECT_EXTENSIONS")

	// Exclude
	setEnvList(&cfg.Exclude.Dirs, EnvPrefix+"_EXCLUDE_DIRS")
	setEnvList(&cfg.Exclude.Files, EnvPrefix+"_EXCLUDE_FILES")

	// Parse
	setEnvInt(&cfg.Parse.Workers, EnvPrefix+"_PARSE_WORKERS")
	setEnvInt(&cfg.Parse.CacheSize, EnvPrefix+"_PARSE_CACHE_SIZE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, EnvPrefix+"_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, EnvPrefix+"_WATCH_MIN_INTERVAL")

	// History
	setEnvString(&cfg.History.Path, EnvPrefix+"_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, EnvPrefix+"_HISTORY_PROJECT_KEY")

	// Observability
	setEnvString(&cfg.Observability.MetricsFile, EnvPrefix+"_OBSERVABILITY_METRICS_FILE")
	setEnvBool(&cfg.Observability.EnableTracing, EnvPrefix+"_OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, EnvPrefix+"_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

// setEnvList reads a comma separated list; blank entries are dropped.
func setEnvList(target *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	items := make([]string, 0)
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	log.Printf("Applying env override: %s=%s", key, val)
	*target = items
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
