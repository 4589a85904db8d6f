package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	Root        string
	HistoryPath string
	ProjectKey  string
	MetricsFile string
}

// ResolvePaths makes the root and the configured output locations absolute.
// File locations are relative to cwd, matching how they are given on the
// command line.
func ResolvePaths(cfg *Config, root, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(root) == "" {
		return ResolvedPaths{}, fmt.Errorf("root must not be empty")
	}
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	absRoot := ResolveRelative(cwd, root)

	projectKey := strings.TrimSpace(cfg.History.ProjectKey)
	if projectKey == "" {
		projectKey = filepath.Base(absRoot)
	}

	resolved := ResolvedPaths{
		Root:       absRoot,
		ProjectKey: projectKey,
	}
	// an empty history path leaves history disabled
	if historyPath := strings.TrimSpace(cfg.History.Path); historyPath != "" {
		resolved.HistoryPath = ResolveRelative(cwd, historyPath)
	}
	if metrics := strings.TrimSpace(cfg.Observability.MetricsFile); metrics != "" {
		resolved.MetricsFile = ResolveRelative(cwd, metrics)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
