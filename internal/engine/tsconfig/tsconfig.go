// Package tsconfig loads TypeScript project configuration files and computes
// the set of source files they select.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tsurface/internal/core/errors"

	"github.com/tailscale/hujson"
)

// Config is a tsconfig.json with its extends chain resolved. Paths are
// absolute.
type Config struct {
	Path            string
	Dir             string
	Files           []string
	Include         []Pattern
	Exclude         []Pattern
	HasFiles        bool
	HasInclude      bool
	HasExclude      bool
	CompilerOptions CompilerOptions
}

// Pattern is an include or exclude entry anchored at the directory of the
// config file that declared it.
type Pattern struct {
	Base string
	Spec string
}

type CompilerOptions struct {
	Strict           *bool
	StrictNullChecks *bool
	OutDir           string
}

// StrictNullChecks reports whether optional parameters gain `| undefined`.
func (o CompilerOptions) StrictNullChecksEnabled() bool {
	if o.StrictNullChecks != nil {
		return *o.StrictNullChecks
	}
	return o.Strict != nil && *o.Strict
}

type rawConfig struct {
	Extends         json.RawMessage `json:"extends"`
	Files           *[]string       `json:"files"`
	Include         *[]string       `json:"include"`
	Exclude         *[]string       `json:"exclude"`
	CompilerOptions *rawOptions     `json:"compilerOptions"`
}

type rawOptions struct {
	Strict           *bool  `json:"strict"`
	StrictNullChecks *bool  `json:"strictNullChecks"`
	OutDir           string `json:"outDir"`
}

// Load reads path and every config it extends. Any failure is reported with
// errors.CodeConfigLoad.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	cfg, err := load(abs, make(map[string]bool))
	if err != nil {
		return nil, loadError(abs, err)
	}
	return cfg, nil
}

func loadError(path string, err error) error {
	return errors.AddContext(
		errors.Wrap(err, errors.CodeConfigLoad, "failed to load project configuration"),
		errors.CtxPath, path,
	)
}

func load(path string, visiting map[string]bool) (*Config, error) {
	if visiting[path] {
		return nil, fmt.Errorf("circular extends through %s", path)
	}
	visiting[path] = true
	defer delete(visiting, path)

	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	cfg := &Config{Path: path, Dir: dir}
	for _, parent := range extendsList(raw.Extends) {
		basePath, err := resolveExtends(dir, parent)
		if err != nil {
			return nil, err
		}
		base, err := load(basePath, visiting)
		if err != nil {
			return nil, fmt.Errorf("extends %q: %w", parent, err)
		}
		cfg.inherit(base)
	}

	if raw.Files != nil {
		cfg.HasFiles = true
		cfg.Files = cfg.Files[:0]
		for _, f := range *raw.Files {
			cfg.Files = append(cfg.Files, filepath.Clean(filepath.Join(dir, filepath.FromSlash(f))))
		}
	}
	if raw.Include != nil {
		cfg.HasInclude = true
		cfg.Include = anchor(dir, *raw.Include)
	}
	if raw.Exclude != nil {
		cfg.HasExclude = true
		cfg.Exclude = anchor(dir, *raw.Exclude)
	}
	if opts := raw.CompilerOptions; opts != nil {
		if opts.Strict != nil {
			cfg.CompilerOptions.Strict = opts.Strict
		}
		if opts.StrictNullChecks != nil {
			cfg.CompilerOptions.StrictNullChecks = opts.StrictNullChecks
		}
		if opts.OutDir != "" {
			cfg.CompilerOptions.OutDir = filepath.Join(dir, filepath.FromSlash(opts.OutDir))
		}
	}
	return cfg, nil
}

// inherit copies the settings of an extended config. Values set by the
// extending config are applied afterwards and win.
func (c *Config) inherit(base *Config) {
	if base.HasFiles {
		c.HasFiles = true
		c.Files = append([]string(nil), base.Files...)
	}
	if base.HasInclude {
		c.HasInclude = true
		c.Include = append([]Pattern(nil), base.Include...)
	}
	if base.HasExclude {
		c.HasExclude = true
		c.Exclude = append([]Pattern(nil), base.Exclude...)
	}
	if base.CompilerOptions.Strict != nil {
		c.CompilerOptions.Strict = base.CompilerOptions.Strict
	}
	if base.CompilerOptions.StrictNullChecks != nil {
		c.CompilerOptions.StrictNullChecks = base.CompilerOptions.StrictNullChecks
	}
	if base.CompilerOptions.OutDir != "" {
		c.CompilerOptions.OutDir = base.CompilerOptions.OutDir
	}
}

func readRaw(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// tsconfig files are JSON with comments and trailing commas.
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var raw rawConfig
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &raw, nil
}

func extendsList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// resolveExtends locates an extended config either relative to dir or as a
// package under a node_modules directory in dir or one of its parents.
func resolveExtends(dir, spec string) (string, error) {
	if filepath.IsAbs(spec) || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		candidate := spec
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, filepath.FromSlash(spec))
		}
		if path, ok := firstFile(candidate, candidate+".json"); ok {
			return path, nil
		}
		return "", fmt.Errorf("extended config %q not found", spec)
	}

	for current := dir; ; current = filepath.Dir(current) {
		pkg := filepath.Join(current, "node_modules", filepath.FromSlash(spec))
		if path, ok := firstFile(pkg, pkg+".json", filepath.Join(pkg, "tsconfig.json")); ok {
			return path, nil
		}
		if filepath.Dir(current) == current {
			break
		}
	}
	return "", fmt.Errorf("extended config %q not found in node_modules", spec)
}

func firstFile(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func anchor(dir string, specs []string) []Pattern {
	out := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		out = append(out, Pattern{Base: dir, Spec: spec})
	}
	return out
}
