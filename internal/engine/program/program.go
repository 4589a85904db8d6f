// Package program loads a TypeScript source tree into parsed files and
// answers parameter type questions in either resolution mode.
package program

import (
	"tsurface/internal/engine/checker"
	"tsurface/internal/engine/mode"
	"tsurface/internal/engine/parser"
)

// Program is the parsed corpus of one run.
type Program interface {
	Mode() mode.Mode
	// Files returns the files in scope, in discovery order.
	Files() []*parser.File
	// ParamType returns the display type text of a parameter declared in file.
	ParamType(file *parser.File, p parser.Param) string
}

// syntaxProgram reports written annotations only.
type syntaxProgram struct {
	files []*parser.File
}

func (p *syntaxProgram) Mode() mode.Mode       { return mode.SyntaxOnly }
func (p *syntaxProgram) Files() []*parser.File { return p.files }

func (p *syntaxProgram) ParamType(_ *parser.File, param parser.Param) string {
	if !param.HasAnnotation() {
		return "any"
	}
	return param.TypeText
}

// semanticProgram resolves types through a project-wide checker.
type semanticProgram struct {
	files   []*parser.File
	checker *checker.Checker
}

func (p *semanticProgram) Mode() mode.Mode       { return mode.FullResolution }
func (p *semanticProgram) Files() []*parser.File { return p.files }

func (p *semanticProgram) ParamType(file *parser.File, param parser.Param) string {
	return p.checker.ParamType(file, param)
}

// NewSyntaxProgram wraps already parsed files.
func NewSyntaxProgram(files []*parser.File) Program {
	return &syntaxProgram{files: files}
}

// NewSemanticProgram indexes project together with the in-scope files.
func NewSemanticProgram(files, project []*parser.File, opts checker.Options) Program {
	index := make([]*parser.File, 0, len(files)+len(project))
	index = append(index, project...)
	index = append(index, files...)
	return &semanticProgram{files: files, checker: checker.New(index, opts)}
}
