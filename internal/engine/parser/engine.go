// # internal/engine/parser/engine.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler turns one item node into an Item. attrs are the outer
// attribute siblings that precede the node. Returning false drops the node.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool)

// ExtractionContext carries shared state/helpers used by all handlers.
type ExtractionContext struct {
	Source []byte
	Path   string
}

// ExtractorEngine dispatches the direct children of an item list
// (source_file, declaration_list, block) to handlers by node kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

// Collect extracts the items directly under list. Attribute siblings are
// buffered and handed to the next item; anything that is neither an item,
// an attribute nor a comment clears the buffer.
func (e *ExtractorEngine) Collect(ctx *ExtractionContext, list *sitter.Node) []Item {
	if list == nil {
		return nil
	}
	var items []Item
	var attrs []*sitter.Node
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "attribute_item":
			attrs = append(attrs, child)
			continue
		case "line_comment", "block_comment", "inner_attribute_item":
			continue
		}
		handler, ok := e.handlers[child.Kind()]
		if !ok {
			attrs = nil
			continue
		}
		if item, keep := handler(ctx, child, attrs); keep {
			items = append(items, item)
		}
		attrs = nil
	}
	return items
}

// Walk visits node and its descendants depth first. visit returns false to
// skip a node's children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
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
		File:   c.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if child := childOfKind(node, kind); child != nil {
		return c.Text(child)
	}
	return ""
}

func (c *ExtractionContext) FieldText(node *sitter.Node, field string) string {
	if node == nil {
		return ""
	}
	return c.Text(node.ChildByFieldName(field))
}

func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}
