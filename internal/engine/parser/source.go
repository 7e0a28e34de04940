// # internal/engine/parser/source.go
package parser

import (
	"sort"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type byteRange struct {
	start, end uint
}

// isDocComment matches ///, //!, /** and /*! comments. Four slashes and
// empty /**/ blocks are ordinary comments.
func isDocComment(text string) bool {
	switch {
	case strings.HasPrefix(text, "////"):
		return false
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
		return true
	case strings.HasPrefix(text, "/**/"), strings.HasPrefix(text, "/***"):
		return false
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		return true
	}
	return false
}

func (c *ExtractionContext) attributeOf(node *sitter.Node) Attribute {
	attr := Attribute{Text: c.Text(node)}
	inner := childOfKind(node, "attribute")
	if inner == nil {
		return attr
	}
	if inner.NamedChildCount() > 0 {
		attr.Name = strings.TrimSpace(c.Text(inner.NamedChild(0)))
	}
	if value := inner.ChildByFieldName("value"); value != nil {
		attr.Value = unquote(c.Text(value))
	}
	return attr
}

func (c *ExtractionContext) isDocNode(node *sitter.Node) bool {
	switch node.Kind() {
	case "line_comment", "block_comment":
		return isDocComment(c.Text(node))
	case "attribute_item", "inner_attribute_item":
		return c.attributeOf(node).Name == "doc"
	}
	return false
}

// docRanges collects doc comment and #[doc] ranges inside [start, end).
func (c *ExtractionContext) docRanges(node *sitter.Node, start, end uint) []byteRange {
	var out []byteRange
	Walk(node, func(n *sitter.Node) bool {
		if n.EndByte() <= start || n.StartByte() >= end {
			return false
		}
		if c.isDocNode(n) {
			out = append(out, byteRange{n.StartByte(), n.EndByte()})
			return false
		}
		return true
	})
	return out
}

// clean returns src[start:end) with doc ranges removed and every line after
// the first shifted left by the column node starts at.
func (c *ExtractionContext) clean(node *sitter.Node, start, end uint) string {
	cuts := c.docRanges(node, start, end)
	text := cutRanges(c.Source, start, end, cuts)
	return strings.TrimRight(dedent(text, int(node.StartPosition().Column)), " \t\r\n")
}

// render builds an item's Source: its non-doc outer attributes then the item
// text up to end.
func (c *ExtractionContext) render(node *sitter.Node, attrs []*sitter.Node, end uint) string {
	var parts []string
	for _, a := range attrs {
		if c.isDocNode(a) {
			continue
		}
		parts = append(parts, c.clean(a, a.StartByte(), a.EndByte()))
	}
	parts = append(parts, c.clean(node, node.StartByte(), end))
	return strings.Join(parts, "\n")
}

// cutRanges removes cuts from src[start:end). A cut that is alone on its
// line takes the whole line with it.
func cutRanges(src []byte, start, end uint, cuts []byteRange) string {
	if len(cuts) == 0 {
		return string(src[start:end])
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var b strings.Builder
	pos := start
	for _, cut := range cuts {
		cs, ce := cut.start, cut.end
		if cs < pos {
			continue
		}
		ls := cs
		for ls > pos && (src[ls-1] == ' ' || src[ls-1] == '\t') {
			ls--
		}
		if ls == pos || src[ls-1] == '\n' {
			le := ce
			for le < end && (src[le] == ' ' || src[le] == '\t' || src[le] == '\r') {
				le++
			}
			if le < end && src[le] == '\n' {
				cs, ce = ls, le+1
			} else if ce > cs && src[ce-1] == '\n' {
				cs = ls
			}
		}
		b.Write(src[pos:cs])
		pos = ce
		if pos > end {
			pos = end
		}
	}
	b.Write(src[pos:end])
	return b.String()
}

func dedent(text string, col int) string {
	if col <= 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		n := 0
		for n < col && n < len(line) && (line[n] == ' ' || line[n] == '\t') {
			n++
		}
		lines[i] = line[n:]
	}
	return strings.Join(lines, "\n")
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	s = strings.TrimPrefix(s, "r")
	return strings.Trim(s, "#\"")
}
