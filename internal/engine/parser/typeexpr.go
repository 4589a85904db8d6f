package parser

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// convertType builds the structural view of a type node.
func convertType(ctx *ExtractionContext, node *sitter.Node) TypeExpr {
	expr := TypeExpr{Text: collapseSpace(ctx.Text(node))}
	if node == nil {
		return expr
	}

	switch node.Kind() {
	case "predefined_type":
		expr.Kind = TypePredefined
	case "type_identifier", "nested_type_identifier":
		expr.Kind = TypeReference
		expr.Name = expr.Text
	case "generic_type":
		expr.Kind = TypeReference
		expr.Name = collapseSpace(ctx.Text(node.ChildByFieldName("name")))
		if args := node.ChildByFieldName("type_arguments"); args != nil {
			expr.Args = convertNamedChildren(ctx, args)
		} else if args := ctx.FirstChildOfKind(node, "type_arguments"); args != nil {
			expr.Args = convertNamedChildren(ctx, args)
		}
	case "array_type":
		expr.Kind = TypeArray
		expr.Args = convertNamedChildren(ctx, node)
	case "union_type":
		expr.Kind = TypeUnion
		expr.Args = flattenOperands(ctx, node, "union_type")
	case "intersection_type":
		expr.Kind = TypeIntersection
		expr.Args = flattenOperands(ctx, node, "intersection_type")
	case "parenthesized_type":
		expr.Kind = TypeParenthesized
		expr.Args = convertNamedChildren(ctx, node)
	case "literal_type":
		expr.Kind = TypeLiteral
		expr.Text = normalizeQuotes(expr.Text)
	case "object_type":
		expr.Kind = TypeObject
		expr.Members = convertMembers(ctx, node)
	case "tuple_type":
		expr.Kind = TypeTuple
		expr.Args = convertNamedChildren(ctx, node)
	case "function_type", "constructor_type":
		expr.Kind = TypeFunction
	case "readonly_type":
		expr.Kind = TypeReadonly
		expr.Args = convertNamedChildren(ctx, node)
	default:
		expr.Kind = TypeOther
	}
	return expr
}

func convertNamedChildren(ctx *ExtractionContext, node *sitter.Node) []TypeExpr {
	out := make([]TypeExpr, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, convertType(ctx, child))
	}
	return out
}

// flattenOperands returns the operands of a left-nested union or
// intersection as one flat list.
func flattenOperands(ctx *ExtractionContext, node *sitter.Node, kind string) []TypeExpr {
	var out []TypeExpr
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if child.Kind() == kind {
			out = append(out, flattenOperands(ctx, child, kind)...)
			continue
		}
		out = append(out, convertType(ctx, child))
	}
	return out
}

func convertMembers(ctx *ExtractionContext, node *sitter.Node) []TypeMember {
	members := make([]TypeMember, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if child.Kind() != "property_signature" {
			members = append(members, TypeMember{Text: collapseSpace(strings.TrimRight(ctx.Text(child), ";,"))})
			continue
		}
		member := TypeMember{
			Name:     normalizeQuotes(ctx.Text(child.ChildByFieldName("name"))),
			Optional: ctx.HasChildToken(child, "?"),
			Readonly: ctx.HasChildToken(child, "readonly"),
		}
		if annotation := child.ChildByFieldName("type"); annotation != nil {
			if typeNode := firstNamedChild(annotation); typeNode != nil {
				expr := convertType(ctx, typeNode)
				member.Type = &expr
			}
		}
		members = append(members, member)
	}
	return members
}

// intrinsicOrder approximates the order in which the type printer lists
// primitive members of a union.
var intrinsicOrder = map[string]int{
	"any":       0,
	"unknown":   1,
	"undefined": 2,
	"null":      3,
	"string":    4,
	"number":    5,
	"bigint":    6,
	"boolean":   7,
	"symbol":    8,
	"void":      9,
	"never":     10,
	"object":    11,
}

// widenedLiteralType returns the type implied by a parameter initializer
// after literal widening, or "" when it cannot be determined syntactically.
func widenedLiteralType(ctx *ExtractionContext, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "number":
		if strings.HasSuffix(ctx.Text(node), "n") {
			return "bigint"
		}
		return "number"
	case "string", "template_string":
		return "string"
	case "true", "false":
		return "boolean"
	case "regex":
		return "RegExp"
	case "null", "undefined":
		return "any"
	case "unary_expression":
		switch op := ctx.Text(node.ChildByFieldName("operator")); op {
		case "!":
			return "boolean"
		case "-", "+", "~":
			return widenedLiteralType(ctx, node.ChildByFieldName("argument"))
		case "typeof":
			return "string"
		case "void":
			return "any"
		}
		return ""
	case "parenthesized_expression":
		return widenedLiteralType(ctx, firstNamedChild(node))
	case "as_expression", "satisfies_expression":
		if node.NamedChildCount() < 2 {
			return ""
		}
		if node.Kind() == "satisfies_expression" {
			return widenedLiteralType(ctx, node.NamedChild(0))
		}
		return collapseSpace(ctx.Text(node.NamedChild(node.NamedChildCount() - 1)))
	case "new_expression":
		return collapseSpace(ctx.Text(node.ChildByFieldName("constructor")))
	case "array":
		return arrayLiteralType(ctx, node)
	case "object":
		return objectLiteralType(ctx, node)
	}
	return ""
}

func arrayLiteralType(ctx *ExtractionContext, node *sitter.Node) string {
	seen := make(map[string]bool)
	var elements []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		elem := widenedLiteralType(ctx, child)
		if elem == "" {
			return ""
		}
		elements = appendUnique(elements, seen, elem)
	}
	switch len(elements) {
	case 0:
		return "any[]"
	case 1:
		if strings.ContainsAny(elements[0], " |&") {
			return "(" + elements[0] + ")[]"
		}
		return elements[0] + "[]"
	}
	sortIntrinsics(elements)
	return "(" + strings.Join(elements, " | ") + ")[]"
}

func objectLiteralType(ctx *ExtractionContext, node *sitter.Node) string {
	var members []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		switch child.Kind() {
		case "pair":
			value := widenedLiteralType(ctx, child.ChildByFieldName("value"))
			if value == "" {
				return ""
			}
			members = append(members, normalizeQuotes(ctx.Text(child.ChildByFieldName("key")))+": "+value+";")
		case "shorthand_property_identifier":
			members = append(members, ctx.Text(child)+": any;")
		default:
			return ""
		}
	}
	if len(members) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(members, " ") + " }"
}

// bindingPatternType returns the type implied by an unannotated destructuring
// parameter, or "" for plain identifiers.
func bindingPatternType(ctx *ExtractionContext, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "object_pattern":
		var members []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "shorthand_property_identifier_pattern":
				members = append(members, ctx.Text(child)+": any;")
			case "object_assignment_pattern":
				name := ctx.Text(child.ChildByFieldName("left"))
				members = append(members, name+"?: "+orAny(widenedLiteralType(ctx, child.ChildByFieldName("right")))+";")
			case "pair_pattern":
				key := normalizeQuotes(ctx.Text(child.ChildByFieldName("key")))
				value := child.ChildByFieldName("value")
				if value != nil && value.Kind() == "assignment_pattern" {
					members = append(members, key+"?: "+orAny(widenedLiteralType(ctx, value.ChildByFieldName("right")))+";")
					continue
				}
				members = append(members, key+": "+orAny(bindingPatternType(ctx, value))+";")
			}
		}
		if len(members) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(members, " ") + " }"
	case "array_pattern":
		var elements []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "assignment_pattern":
				elements = append(elements, orAny(widenedLiteralType(ctx, child.ChildByFieldName("right")))+"?")
			case "rest_pattern":
				elements = append(elements, "...any[]")
			default:
				elements = append(elements, orAny(bindingPatternType(ctx, child)))
			}
		}
		return "[" + strings.Join(elements, ", ") + "]"
	}
	return ""
}

func orAny(value string) string {
	if value == "" {
		return "any"
	}
	return value
}

func sortIntrinsics(values []string) {
	rank := func(v string) int {
		if r, ok := intrinsicOrder[v]; ok {
			return r
		}
		return len(intrinsicOrder)
	}
	sort.SliceStable(values, func(i, j int) bool {
		return rank(values[i]) < rank(values[j])
	})
}
