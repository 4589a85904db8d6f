// Package checker resolves parameter types across a parsed project and
// prints them the way a type checker displays them.
package checker

import (
	"path/filepath"
	"strings"

	"tsurface/internal/engine/parser"
)

type Options struct {
	// StrictNullChecks adds `| undefined` to optional parameters.
	StrictNullChecks bool
}

// Checker is a project-wide index of module-scope type declarations and
// import bindings. It is immutable after New and safe for concurrent use.
type Checker struct {
	opts  Options
	files map[string]*scope
}

type scope struct {
	path       string
	modulePath string
	isModule   bool
	types      map[string]bool
	bindings   map[string]parser.ImportBinding
}

// moduleExtensions are tried, in order, when a relative specifier is resolved
// to a project file.
var moduleExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts"}

func New(files []*parser.File, opts Options) *Checker {
	c := &Checker{opts: opts, files: make(map[string]*scope, len(files))}
	for _, f := range files {
		if f == nil {
			continue
		}
		c.files[filepath.Clean(f.Path)] = newScope(f)
	}
	return c
}

func newScope(f *parser.File) *scope {
	s := &scope{
		path:       filepath.Clean(f.Path),
		modulePath: modulePath(f.Path),
		isModule:   f.IsModule,
		types:      make(map[string]bool, len(f.Types)),
		bindings:   make(map[string]parser.ImportBinding, len(f.Bindings)),
	}
	for _, t := range f.Types {
		s.types[t.Name] = true
	}
	for _, b := range f.Bindings {
		s.bindings[b.Local] = b
	}
	return s
}

// modulePath strips the source extension, the form used inside import("...").
func modulePath(path string) string {
	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts", ".tsx", ".mts", ".cts", ".ts"} {
		if strings.HasSuffix(slashed, ext) {
			return strings.TrimSuffix(slashed, ext)
		}
	}
	return slashed
}

// ParamType returns the display text of a parameter's type.
func (c *Checker) ParamType(file *parser.File, p parser.Param) string {
	if !p.HasAnnotation() {
		if p.Inferred != "" {
			return p.Inferred
		}
		return "any"
	}

	s := c.scopeFor(file)
	text := c.print(s, *p.Type)
	if p.Optional && !p.Rest && c.opts.StrictNullChecks {
		text = addUndefined(text, *p.Type)
	}
	return text
}

func (c *Checker) scopeFor(file *parser.File) *scope {
	if file == nil {
		return &scope{types: map[string]bool{}, bindings: map[string]parser.ImportBinding{}}
	}
	if s, ok := c.files[filepath.Clean(file.Path)]; ok {
		return s
	}
	return newScope(file)
}

func addUndefined(text string, expr parser.TypeExpr) string {
	switch text {
	case "any", "unknown", "undefined":
		return text
	}
	if expr.Kind == parser.TypeUnion {
		for _, arg := range expr.Args {
			if arg.Text == "undefined" {
				return text
			}
		}
	}
	if expr.Kind == parser.TypeFunction {
		return "(" + text + ") | undefined"
	}
	return text + " | undefined"
}

// resolveName qualifies a referenced type name with the module that
// declares it.
func (c *Checker) resolveName(s *scope, name string) string {
	head, rest, dotted := strings.Cut(name, ".")

	if dotted {
		if b, ok := s.bindings[head]; ok && b.Namespace {
			return `import("` + c.moduleSpecifier(s, b.Module) + `").` + rest
		}
		return name
	}

	if s.types[name] && s.isModule {
		return `import("` + s.modulePath + `").` + name
	}
	if b, ok := s.bindings[name]; ok && !b.Namespace {
		return `import("` + c.moduleSpecifier(s, b.Module) + `").` + b.Imported
	}
	return name
}

// moduleSpecifier returns the absolute module path for a relative import and
// the specifier itself for a package import.
func (c *Checker) moduleSpecifier(s *scope, spec string) string {
	if !strings.HasPrefix(spec, ".") || s.path == "" {
		return spec
	}
	target := filepath.Join(filepath.Dir(s.path), filepath.FromSlash(spec))
	for _, ext := range []string{".js", ".jsx", ".mjs", ".cjs"} {
		if strings.HasSuffix(target, ext) {
			target = strings.TrimSuffix(target, ext)
			break
		}
	}
	if _, ok := c.files[target]; ok {
		return modulePath(target)
	}
	for _, ext := range moduleExtensions {
		if _, ok := c.files[target+ext]; ok {
			return modulePath(target + ext)
		}
	}
	for _, ext := range moduleExtensions {
		index := filepath.Join(target, "index"+ext)
		if _, ok := c.files[index]; ok {
			return modulePath(index)
		}
	}
	return filepath.ToSlash(target)
}
