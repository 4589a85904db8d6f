package parser

import (
	"time"
)

// File is the parsed structure of one source file. It owns no tree-sitter
// memory: everything the downstream passes need is copied out of the syntax
// tree before the tree is released.
type File struct {
	Path      string
	Language  string
	Functions []Function // top-level function declarations, in source order
	Imports   []Import   // static import statements, in source order
	Types     []TypeDecl // top-level named type declarations
	Bindings  []ImportBinding
	IsModule  bool // has at least one import or export statement
	HasErrors bool // tree-sitter recovered from syntax errors
	ParsedAt  time.Time
}

type Function struct {
	Name      string // empty for `export default function () {}`
	Exported  bool
	Default   bool
	Signature bool // overload or ambient signature without a body
	Params    []Param
	Location  Location
}

// Anonymous reports whether the declaration has no identifier.
func (f Function) Anonymous() bool {
	return f.Name == ""
}

type Param struct {
	Name     string
	TypeText string    // annotation exactly as written, empty when absent
	Type     *TypeExpr // structured form of the annotation, nil when absent
	Inferred string    // type implied by the initializer or binding pattern alone
	Optional bool
	Rest     bool
}

// HasAnnotation reports whether a type annotation was written for the parameter.
func (p Param) HasAnnotation() bool {
	return p.Type != nil
}

type Import struct {
	Module   string // specifier exactly as written, quotes stripped
	TypeOnly bool
	Location Location
}

// ImportBinding maps a local name introduced by an import clause to the
// module and exported name it refers to.
type ImportBinding struct {
	Local     string
	Imported  string // "default" for default imports, "*" for namespace imports
	Module    string
	Namespace bool
}

type TypeDecl struct {
	Name     string
	Kind     DefinitionKind
	Exported bool
}

type DefinitionKind int

const (
	KindFunction DefinitionKind = iota
	KindClass
	KindInterface
	KindType
	KindEnum
)

type Location struct {
	File   string
	Line   int
	Column int
}

type TypeKind int

const (
	TypeOther TypeKind = iota
	TypePredefined
	TypeReference
	TypeArray
	TypeUnion
	TypeIntersection
	TypeObject
	TypeLiteral
	TypeParenthesized
	TypeTuple
	TypeFunction
	TypeReadonly
)

// TypeExpr is a small structural view of a written type annotation.
type TypeExpr struct {
	Kind    TypeKind
	Text    string     // verbatim source text
	Name    string     // TypeReference: possibly dotted name
	Args    []TypeExpr // generic arguments, members, element or inner type
	Members []TypeMember
}

type TypeMember struct {
	Name     string
	Optional bool
	Readonly bool
	Type     *TypeExpr // nil when the member has no annotation
	Text     string    // verbatim text of members that are not properties
}
