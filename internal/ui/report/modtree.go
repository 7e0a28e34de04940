// # internal/ui/report/modtree.go
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/shared/util"
)

// ModTreeFile is written next to the index and lists every resolved scope
// with the functions it declares.
const ModTreeFile = "mod_trees.txt"

type ModTreeGenerator struct {
	crate *modtree.Crate
	root  string
}

// NewModTreeGenerator renders crate with file paths relative to root.
func NewModTreeGenerator(crate *modtree.Crate, root string) *ModTreeGenerator {
	return &ModTreeGenerator{crate: crate, root: root}
}

// Generate writes one line per scope in pre-order, indented by depth, each
// followed by the canonical names of the functions declared there.
func (g *ModTreeGenerator) Generate() (string, error) {
	if g.crate == nil {
		return "", fmt.Errorf("no module tree")
	}
	var buf strings.Builder
	depth := make(map[modtree.NodeID]int, len(g.crate.Nodes))
	g.crate.Walk(func(n *modtree.Node) {
		if n.Parent != modtree.NoNode {
			depth[n.ID] = depth[n.Parent] + 1
		}
		indent := strings.Repeat("  ", depth[n.ID])
		buf.WriteString(fmt.Sprintf("%s%s [%s] %s\n", indent, n.Path, scopeLabel(n.Kind), g.rel(n.File)))
		if n.Context == nil {
			return
		}
		for _, fn := range n.Context.AllFunctions() {
			buf.WriteString(fmt.Sprintf("%s  fn %s\n", indent, fn.Canonical))
		}
	})
	return buf.String(), nil
}

func (g *ModTreeGenerator) rel(file string) string {
	if file == "" || g.root == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(g.root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func scopeLabel(kind modtree.ScopeKind) string {
	if kind == modtree.ScopeFunction {
		return "fn"
	}
	return "mod"
}

// WriteModTrees renders crate to <outputDir>/mod_trees.txt and returns the
// path.
func WriteModTrees(outputDir, projectRoot string, crate *modtree.Crate) (string, error) {
	path := filepath.Join(outputDir, ModTreeFile)
	content, err := NewModTreeGenerator(crate, projectRoot).Generate()
	if err != nil {
		return path, err
	}
	if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
		return path, err
	}
	return path, nil
}
