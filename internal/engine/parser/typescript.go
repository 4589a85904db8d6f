package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// TypeScriptExtractor copies module-scope functions, imports and named type
// declarations out of a TypeScript or TSX syntax tree. It keeps no state
// between calls and may be shared between goroutines.
type TypeScriptExtractor struct {
	language string
}

func NewTypeScriptExtractor(language string) *TypeScriptExtractor {
	return &TypeScriptExtractor{language: language}
}

// tsWalker holds the per-file state of one extraction.
type tsWalker struct {
	ctx          *ExtractionContext
	localExports map[string]bool // names exported by `export { a }` or `export default a`
}

func (e *TypeScriptExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.language,
		ParsedAt: time.Now(),
	}
	if root == nil {
		return file, nil
	}
	file.HasErrors = root.HasError()

	w := &tsWalker{
		ctx:          &ExtractionContext{Source: source, File: file},
		localExports: make(map[string]bool),
	}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":               w.extractImport,
		"export_statement":               w.extractExport,
		"function_declaration":           w.extractStatement,
		"generator_function_declaration": w.extractStatement,
		"function_signature":             w.extractStatement,
		"ambient_declaration":            w.extractStatement,
		"class_declaration":              w.extractStatement,
		"abstract_class_declaration":     w.extractStatement,
		"interface_declaration":          w.extractStatement,
		"type_alias_declaration":         w.extractStatement,
		"enum_declaration":               w.extractStatement,
	})
	engine.Walk(w.ctx, root)

	w.applyLocalExports()
	file.Functions = foldOverloads(file.Functions)
	return file, nil
}

func (w *tsWalker) extractStatement(ctx *ExtractionContext, node *sitter.Node) {
	w.extractDeclaration(node, false, false)
}

func (w *tsWalker) extractDeclaration(node *sitter.Node, exported, isDefault bool) {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		w.appendFunction(node, exported, isDefault, false)
	case "function_signature":
		w.appendFunction(node, exported, isDefault, true)
	case "ambient_declaration":
		// declare function f(): void;  declare class C {}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child != nil {
				w.extractDeclaration(child, exported, isDefault)
			}
		}
	case "class_declaration", "abstract_class_declaration":
		w.appendType(node, KindClass, exported)
	case "interface_declaration":
		w.appendType(node, KindInterface, exported)
	case "type_alias_declaration":
		w.appendType(node, KindType, exported)
	case "enum_declaration":
		w.appendType(node, KindEnum, exported)
	}
}

func (w *tsWalker) extractExport(ctx *ExtractionContext, node *sitter.Node) {
	ctx.File.IsModule = true
	isDefault := ctx.HasChildToken(node, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		w.extractDeclaration(decl, true, isDefault)
		return
	}

	if value := node.ChildByFieldName("value"); value != nil {
		switch value.Kind() {
		case "function_expression", "function", "generator_function":
			// export default function () {}
			w.appendFunction(value, true, true, false)
		case "identifier":
			w.localExports[ctx.Text(value)] = true
		}
		return
	}

	// export { a } from "./b" re-exports another module's bindings.
	if node.ChildByFieldName("source") != nil {
		return
	}

	clause := ctx.FirstChildOfKind(node, "export_clause")
	if clause == nil {
		return
	}
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		spec := clause.NamedChild(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}
		if name := strings.TrimSpace(ctx.Text(spec.ChildByFieldName("name"))); name != "" {
			w.localExports[name] = true
		}
	}
}

func (w *tsWalker) appendFunction(node *sitter.Node, exported, isDefault, signature bool) {
	ctx := w.ctx
	fn := Function{
		Name:      strings.TrimSpace(ctx.Text(node.ChildByFieldName("name"))),
		Exported:  exported,
		Default:   isDefault,
		Signature: signature,
		Params:    make([]Param, 0),
		Location:  ctx.Location(node),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = w.extractParams(params)
	}
	ctx.File.Functions = append(ctx.File.Functions, fn)
}

func (w *tsWalker) appendType(node *sitter.Node, kind DefinitionKind, exported bool) {
	ctx := w.ctx
	name := strings.TrimSpace(ctx.Text(node.ChildByFieldName("name")))
	if name == "" {
		return
	}
	ctx.File.Types = append(ctx.File.Types, TypeDecl{
		Name:     name,
		Kind:     kind,
		Exported: exported,
	})
}

func (w *tsWalker) extractParams(node *sitter.Node) []Param {
	ctx := w.ctx
	params := make([]Param, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind != "required_parameter" && kind != "optional_parameter" {
			continue
		}

		param := Param{Optional: kind == "optional_parameter"}
		pattern := child.ChildByFieldName("pattern")
		switch {
		case pattern == nil:
			param.Name = "this"
		case pattern.Kind() == "rest_pattern":
			param.Rest = true
			param.Name = ctx.Text(firstNamedChild(pattern))
		default:
			param.Name = ctx.Text(pattern)
		}

		if annotation := child.ChildByFieldName("type"); annotation != nil {
			if typeNode := firstNamedChild(annotation); typeNode != nil {
				param.TypeText = ctx.Text(typeNode)
				expr := convertType(ctx, typeNode)
				param.Type = &expr
			}
		}

		switch value := child.ChildByFieldName("value"); {
		case value != nil:
			param.Inferred = widenedLiteralType(ctx, value)
		case param.Rest:
			param.Inferred = "any[]"
		case pattern != nil:
			param.Inferred = bindingPatternType(ctx, pattern)
		}

		params = append(params, param)
	}
	return params
}

func (w *tsWalker) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	ctx.File.IsModule = true

	// import fs = require("fs") carries its source on the require clause and
	// is not an import declaration.
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	module := trimQuoted(ctx.Text(source))
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:   module,
		TypeOnly: ctx.HasChildToken(node, "type"),
		Location: ctx.Location(node),
	})

	clause := ctx.FirstChildOfKind(node, "import_clause")
	if clause == nil {
		return
	}
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			w.bind(ctx.Text(child), "default", module, false)
		case "namespace_import":
			if id := ctx.FirstChildOfKind(child, "identifier"); id != nil {
				w.bind(ctx.Text(id), "*", module, true)
			}
		case "named_imports":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				imported := trimQuoted(ctx.Text(spec.ChildByFieldName("name")))
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = ctx.Text(alias)
				}
				w.bind(local, imported, module, false)
			}
		}
	}
}

func (w *tsWalker) bind(local, imported, module string, namespace bool) {
	local = strings.TrimSpace(local)
	if local == "" {
		return
	}
	w.ctx.File.Bindings = append(w.ctx.File.Bindings, ImportBinding{
		Local:     local,
		Imported:  imported,
		Module:    module,
		Namespace: namespace,
	})
}

// applyLocalExports marks declarations exported through an export clause or
// an `export default name` statement elsewhere in the same file.
func (w *tsWalker) applyLocalExports() {
	if len(w.localExports) == 0 {
		return
	}
	file := w.ctx.File
	for i := range file.Functions {
		if file.Functions[i].Name != "" && w.localExports[file.Functions[i].Name] {
			file.Functions[i].Exported = true
		}
	}
	for i := range file.Types {
		if w.localExports[file.Types[i].Name] {
			file.Types[i].Exported = true
		}
	}
}

// foldOverloads drops overload signatures of functions that have an
// implementation in the same file. Signatures without an implementation
// (ambient declarations) are kept.
func foldOverloads(functions []Function) []Function {
	implemented := make(map[string]bool)
	for _, fn := range functions {
		if !fn.Signature && fn.Name != "" {
			implemented[fn.Name] = true
		}
	}
	out := functions[:0]
	for _, fn := range functions {
		if fn.Signature && implemented[fn.Name] {
			continue
		}
		out = append(out, fn)
	}
	return out
}

// firstNamedChild skips comments, which tree-sitter reports as named nodes.
func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}
