package checker

import (
	"strings"

	"tsurface/internal/engine/parser"
)

func (c *Checker) print(s *scope, expr parser.TypeExpr) string {
	switch expr.Kind {
	case parser.TypePredefined, parser.TypeLiteral:
		return expr.Text
	case parser.TypeReference:
		return c.printReference(s, expr)
	case parser.TypeArray:
		if len(expr.Args) != 1 {
			return expr.Text
		}
		return c.printElement(s, expr.Args[0]) + "[]"
	case parser.TypeUnion:
		return c.printUnion(s, expr.Args)
	case parser.TypeIntersection:
		parts := make([]string, 0, len(expr.Args))
		for _, arg := range expr.Args {
			parts = append(parts, c.printOperand(s, arg))
		}
		return strings.Join(parts, " & ")
	case parser.TypeParenthesized:
		if len(expr.Args) != 1 {
			return expr.Text
		}
		return c.print(s, expr.Args[0])
	case parser.TypeObject:
		return c.printObject(s, expr.Members)
	case parser.TypeTuple:
		parts := make([]string, 0, len(expr.Args))
		for _, arg := range expr.Args {
			parts = append(parts, c.print(s, arg))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case parser.TypeReadonly:
		if len(expr.Args) != 1 {
			return expr.Text
		}
		return "readonly " + c.print(s, expr.Args[0])
	}
	return expr.Text
}

func (c *Checker) printReference(s *scope, expr parser.TypeExpr) string {
	switch {
	case expr.Name == "Array" && len(expr.Args) == 1:
		return c.printElement(s, expr.Args[0]) + "[]"
	case expr.Name == "ReadonlyArray" && len(expr.Args) == 1:
		return "readonly " + c.printElement(s, expr.Args[0]) + "[]"
	}

	name := c.resolveName(s, expr.Name)
	if len(expr.Args) == 0 {
		return name
	}
	args := make([]string, 0, len(expr.Args))
	for _, arg := range expr.Args {
		args = append(args, c.print(s, arg))
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

// printElement prints an array element type, parenthesized when the element
// would otherwise bind looser than [].
func (c *Checker) printElement(s *scope, expr parser.TypeExpr) string {
	for expr.Kind == parser.TypeParenthesized && len(expr.Args) == 1 {
		expr = expr.Args[0]
	}
	text := c.print(s, expr)
	switch expr.Kind {
	case parser.TypeUnion, parser.TypeIntersection, parser.TypeFunction, parser.TypeReadonly:
		return "(" + text + ")"
	}
	return text
}

func (c *Checker) printOperand(s *scope, expr parser.TypeExpr) string {
	for expr.Kind == parser.TypeParenthesized && len(expr.Args) == 1 {
		expr = expr.Args[0]
	}
	text := c.print(s, expr)
	if expr.Kind == parser.TypeFunction || expr.Kind == parser.TypeUnion {
		return "(" + text + ")"
	}
	return text
}

// printUnion flattens nested unions, folds true|false into boolean and moves
// null and undefined to the end.
func (c *Checker) printUnion(s *scope, args []parser.TypeExpr) string {
	var members []string
	seen := make(map[string]bool)
	var flatten func(args []parser.TypeExpr)
	flatten = func(args []parser.TypeExpr) {
		for _, arg := range args {
			for arg.Kind == parser.TypeParenthesized && len(arg.Args) == 1 && arg.Args[0].Kind == parser.TypeUnion {
				arg = arg.Args[0]
			}
			if arg.Kind == parser.TypeUnion {
				flatten(arg.Args)
				continue
			}
			text := c.printOperand(s, arg)
			if !seen[text] {
				seen[text] = true
				members = append(members, text)
			}
		}
	}
	flatten(args)

	if seen["true"] && seen["false"] {
		folded := members[:0]
		inserted := false
		for _, m := range members {
			if m == "true" || m == "false" {
				if !inserted {
					folded = append(folded, "boolean")
					inserted = true
				}
				continue
			}
			folded = append(folded, m)
		}
		members = folded
	}

	var head, tail []string
	for _, m := range members {
		if m == "null" || m == "undefined" {
			continue
		}
		head = append(head, m)
	}
	if seen["null"] {
		tail = append(tail, "null")
	}
	if seen["undefined"] {
		tail = append(tail, "undefined")
	}
	return strings.Join(append(head, tail...), " | ")
}

func (c *Checker) printObject(s *scope, members []parser.TypeMember) string {
	if len(members) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if m.Name == "" {
			parts = append(parts, m.Text+";")
			continue
		}
		var b strings.Builder
		if m.Readonly {
			b.WriteString("readonly ")
		}
		b.WriteString(m.Name)
		if m.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		if m.Type == nil {
			b.WriteString("any")
		} else {
			text := c.print(s, *m.Type)
			if m.Optional && c.opts.StrictNullChecks {
				text = addUndefined(text, *m.Type)
			}
			b.WriteString(text)
		}
		b.WriteString(";")
		parts = append(parts, b.String())
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
