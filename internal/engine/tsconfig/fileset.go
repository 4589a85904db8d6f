package tsconfig

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

var defaultExcludes = []string{"node_modules", "bower_components", "jspm_packages"}

// matcher is a compiled include or exclude list.
type matcher struct {
	globs []glob.Glob
}

func (m matcher) Match(path string) bool {
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// FileSet walks the config directory and returns the absolute paths of
// files selected by files/include/exclude whose extension is one of
// extensions, in lexical order.
func (c *Config) FileSet(extensions []string) ([]string, error) {
	include, exclude, excludeDirs, err := c.compile()
	if err != nil {
		return nil, loadError(c.Path, err)
	}

	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, f := range c.Files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			add(f)
		}
	}

	if len(include.globs) > 0 {
		err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != c.Dir {
					return filepath.SkipDir
				}
				return nil
			}
			slashed := filepath.ToSlash(path)
			if d.IsDir() {
				if path != c.Dir && excludeDirs.Match(slashed) {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, extensions) {
				return nil
			}
			if include.Match(slashed) && !exclude.Match(slashed) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, loadError(c.Path, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func (c *Config) compile() (include, exclude, excludeDirs matcher, err error) {
	includes := c.Include
	if !c.HasInclude && !c.HasFiles {
		includes = []Pattern{{Base: c.Dir, Spec: "**/*"}}
	}
	excludes := c.Exclude
	if !c.HasExclude {
		excludes = make([]Pattern, 0, len(defaultExcludes)+1)
		for _, spec := range defaultExcludes {
			excludes = append(excludes, Pattern{Base: c.Dir, Spec: spec})
		}
		if out := c.CompilerOptions.OutDir; out != "" {
			excludes = append(excludes, Pattern{Base: filepath.Dir(out), Spec: filepath.Base(out)})
		}
	}

	for _, p := range includes {
		globs, err := compilePattern(p, true)
		if err != nil {
			return include, exclude, excludeDirs, err
		}
		include.globs = append(include.globs, globs...)
	}
	for _, p := range excludes {
		globs, err := compilePattern(p, true)
		if err != nil {
			return include, exclude, excludeDirs, err
		}
		exclude.globs = append(exclude.globs, globs...)

		dirGlobs, err := compilePattern(p, false)
		if err != nil {
			return include, exclude, excludeDirs, err
		}
		excludeDirs.globs = append(excludeDirs.globs, dirGlobs...)
	}
	return include, exclude, excludeDirs, nil
}

// compilePattern anchors p at its base directory. When expandDir is set, a
// final segment without wildcard or extension names a directory and selects
// everything below it.
func compilePattern(p Pattern, expandDir bool) ([]glob.Glob, error) {
	spec := strings.TrimPrefix(filepath.ToSlash(p.Spec), "./")
	spec = strings.TrimSuffix(spec, "/")
	if expandDir && isDirectorySpec(spec) {
		spec += "/**/*"
	}

	base := glob.QuoteMeta(strings.TrimSuffix(filepath.ToSlash(p.Base), "/"))
	var full string
	if strings.HasPrefix(spec, "/") {
		full = spec
	} else {
		full = base + "/" + spec
	}

	var out []glob.Glob
	for _, variant := range expandGlobstar(full) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p.Spec, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func isDirectorySpec(spec string) bool {
	last := spec
	if i := strings.LastIndex(spec, "/"); i >= 0 {
		last = spec[i+1:]
	}
	return !strings.ContainsAny(last, "*?.")
}

// expandGlobstar returns every variant of pattern in which each "**/" either
// stays or is removed, so that "**/" also matches zero directories.
func expandGlobstar(pattern string) []string {
	i := strings.Index(pattern, "**/")
	if i < 0 {
		return []string{pattern}
	}
	head := pattern[:i]
	var out []string
	for _, rest := range expandGlobstar(pattern[i+3:]) {
		out = append(out, head+"**/"+rest, head+rest)
	}
	return out
}

func hasExtension(path string, extensions []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
