package program

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Scanner finds source files below a directory. Exclude patterns are globs
// matched against directory and file base names.
type Scanner struct {
	extensions []string
	dirGlobs   []glob.Glob
	fileGlobs  []glob.Glob
}

func NewScanner(extensions, excludeDirs, excludeFiles []string) (*Scanner, error) {
	s := &Scanner{extensions: make([]string, 0, len(extensions))}
	for _, ext := range extensions {
		s.extensions = append(s.extensions, strings.ToLower(ext))
	}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		s.dirGlobs = append(s.dirGlobs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		s.fileGlobs = append(s.fileGlobs, g)
	}
	return s, nil
}

// Scan walks root and returns matching files in lexical path order.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, g := range s.dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !s.Matches(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Matches reports whether a file path has a source extension and is not
// excluded by name.
func (s *Scanner) Matches(path string) bool {
	if !s.hasExtension(path) {
		return false
	}
	base := filepath.Base(path)
	for _, g := range s.fileGlobs {
		if g.Match(base) {
			return false
		}
	}
	return true
}

func (s *Scanner) hasExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *Scanner) Extensions() []string {
	return append([]string(nil), s.extensions...)
}
