package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes one top-level statement for an extractor.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node)

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// ExtractorEngine dispatches the direct children of a program node to
// handlers by node kind. Nested statements are never visited: only
// declarations at module scope take part in extraction.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, root *sitter.Node) {
	if root == nil {
		return
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if handler, ok := e.handlers[child.Kind()]; ok {
			handler(ctx, child)
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

// FirstChildOfKind returns the first direct child with one of the given kinds.
func (c *ExtractionContext) FirstChildOfKind(node *sitter.Node, kinds ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

// HasChildToken reports whether node has a direct (possibly anonymous) child
// of the given kind, e.g. the "default" keyword of an export statement.
func (c *ExtractionContext) HasChildToken(node *sitter.Node, kind string) bool {
	return c.FirstChildOfKind(node, kind) != nil
}
