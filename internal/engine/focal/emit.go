package focal

import (
	"sort"
	"strings"

	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/symbols"
	"rfocxt/internal/engine/syntax"
	"rfocxt/internal/shared/util"
)

const memberIndent = "    "

type implGroup struct {
	scope   string
	impl    *syntax.ImplBlock
	members []*symbols.FunctionEntry
}

type traitGroup struct {
	trait   *syntax.TraitDecl
	members []*symbols.FunctionEntry
}

// Emit renders a closure as one source fragment: type declarations, then
// traits, then impl blocks holding only the members that were reached, then
// free functions. Every section is sorted, so equal closures render to equal
// bytes.
func (e *Engine) Emit(c *Closure) string {
	var blocks []string
	add := func(canonical, text string) {
		if text == "" {
			return
		}
		if e.opts.Annotate {
			text = "// " + canonical + "\n" + text
		}
		blocks = append(blocks, text)
	}

	var traits []string
	for _, name := range util.SortedStringKeys(c.Types) {
		entry := c.Types[name]
		if entry.Trait != nil {
			traits = append(traits, name)
			continue
		}
		add(name, entry.Source())
	}
	for _, name := range traits {
		add(name, c.Types[name].Source())
	}

	impls := make(map[string]*implGroup)
	orphans := make(map[string]*traitGroup)
	var free []*symbols.FunctionEntry
	for _, name := range util.SortedStringKeys(c.Functions) {
		fn := c.Functions[name]
		switch {
		case fn.Impl != nil:
			g, ok := impls[fn.Impl.Key]
			if !ok {
				g = &implGroup{scope: implScope(fn.Impl), impl: fn.Impl}
				impls[fn.Impl.Key] = g
			}
			g.members = append(g.members, fn)
		case fn.Trait != nil:
			if _, ok := c.Types[fn.Trait.Canonical]; ok {
				continue
			}
			g, ok := orphans[fn.Trait.Canonical]
			if !ok {
				g = &traitGroup{trait: fn.Trait}
				orphans[fn.Trait.Canonical] = g
			}
			g.members = append(g.members, fn)
		default:
			free = append(free, fn)
		}
	}

	for _, name := range util.SortedStringKeys(orphans) {
		g := orphans[name]
		add(name, e.group(c, g.trait.Header, g.members))
	}

	groups := make([]*implGroup, 0, len(impls))
	for _, g := range impls {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].scope != groups[j].scope {
			return groups[i].scope < groups[j].scope
		}
		return groups[i].impl.Ordinal < groups[j].impl.Ordinal
	})
	for _, g := range groups {
		add(g.impl.Key, e.group(c, g.impl.Header, g.members))
	}

	for _, fn := range free {
		add(fn.Canonical, e.body(c, fn))
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// group renders a container header around members in declaration order.
func (e *Engine) group(c *Closure, header string, members []*symbols.FunctionEntry) string {
	sort.SliceStable(members, func(i, j int) bool { return members[i].Index < members[j].Index })
	parts := make([]string, 0, len(members))
	for _, fn := range members {
		parts = append(parts, indent(e.body(c, fn)))
	}
	return strings.TrimSpace(header) + " {\n" + strings.Join(parts, "\n\n") + "\n}"
}

// body returns the function text, or its signature with an empty block when
// only the target keeps its body.
func (e *Engine) body(c *Closure, fn *symbols.FunctionEntry) string {
	decl := fn.Decl
	if e.opts.Bodies == BodiesFocal && fn.Canonical != c.Target && decl.HasBody {
		return strings.TrimSpace(decl.Signature) + " {}"
	}
	return decl.Source
}

func implScope(b *syntax.ImplBlock) string {
	return strings.TrimSuffix(b.Key, names.Sep+names.ParsePath(b.Key).Last())
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = memberIndent + line
		}
	}
	return strings.Join(lines, "\n")
}
