package parser

import (
	"strings"
)

// trimQuoted strips the quote characters around a string literal.
func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

// normalizeQuotes rewrites a single-quoted or template literal without
// substitutions to the double-quoted form the type printer uses.
func normalizeQuotes(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first == '\'' && last == '\'') || (first == '`' && last == '`' && !strings.Contains(value, "${")) {
		inner := value[1 : len(value)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		return `"` + inner + `"`
	}
	return value
}

// collapseSpace folds runs of whitespace, including newlines, into a single
// space.
func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func appendUnique(values []string, seen map[string]bool, value string) []string {
	if value == "" || seen[value] {
		return values
	}
	seen[value] = true
	return append(values, value)
}
