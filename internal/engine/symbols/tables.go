// Package symbols holds the crate-wide lookup tables built once the module
// tree is complete. Tables are read-only after Build and safe to share
// between goroutines.
package symbols

import (
	"log/slog"
	"sort"
	"time"

	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/syntax"
	"rfocxt/internal/shared/observability"
)

type FunctionEntry struct {
	Canonical string
	Decl      *syntax.FunctionDecl
	// Impl and Trait are member-less copies of the owning container.
	Impl  *syntax.ImplBlock
	Trait *syntax.TraitDecl
	// Index is the position inside the container, used to keep source order
	// when members are regrouped.
	Index int
	Scope modtree.NodeID
}

// ContainerKey identifies the impl or trait a member belongs to, or "" for
// free functions.
func (e *FunctionEntry) ContainerKey() string {
	switch {
	case e.Impl != nil:
		return e.Impl.Key
	case e.Trait != nil:
		return e.Trait.Canonical
	}
	return ""
}

// TypeRefs returns the resolved parameter and return types of the function.
func (e *FunctionEntry) TypeRefs() []string {
	if e.Decl == nil {
		return nil
	}
	var out []string
	for _, ref := range e.Decl.SignatureRefs {
		if ref.IsResolved() {
			out = append(out, ref.Canonical())
		}
	}
	return out
}

// TypeParams returns the generic parameter names in scope inside the
// function: its own and those of an enclosing impl.
func (e *FunctionEntry) TypeParams() []string {
	var out []string
	if e.Impl != nil {
		out = append(out, e.Impl.TypeParams...)
	}
	if e.Decl != nil {
		out = append(out, e.Decl.TypeParams...)
	}
	return out
}

// ScopePath is the module (or enclosing function) the function is declared
// in, without the impl or trait segment of members.
func (e *FunctionEntry) ScopePath() names.Path {
	p := names.ParsePath(e.Canonical).Parent()
	if e.Impl != nil || e.Trait != nil {
		p = p.Parent()
	}
	return p
}

type TypeEntry struct {
	Canonical string
	// Exactly one of Type, Trait and Leaf is set.
	Type  *syntax.TypeDecl
	Trait *syntax.TraitDecl
	Leaf  *syntax.Leaf
	Scope modtree.NodeID
	// Traits are the crate traits implemented for this type, sorted.
	Traits []string
}

func (e *TypeEntry) Source() string {
	switch {
	case e.Type != nil:
		return e.Type.Source
	case e.Trait != nil:
		return e.Trait.Source
	case e.Leaf != nil:
		return e.Leaf.Source
	}
	return ""
}

// FieldRefs returns the resolved field types of a struct, enum or union.
func (e *TypeEntry) FieldRefs() []string {
	if e.Type == nil {
		return nil
	}
	var out []string
	for _, ref := range e.Type.FieldRefs {
		if ref.IsResolved() {
			out = append(out, ref.Canonical())
		}
	}
	return out
}

type Tables struct {
	CrateName string
	Functions map[string]*FunctionEntry
	Types     map[string]*TypeEntry
	// Collisions counts canonical names declared more than once.
	Collisions int

	aliases    map[string][]string
	traitsOf   map[string]map[string]bool
	scopePaths []string
	logger     *slog.Logger
}

// Build walks the finished module tree once, children before parents.
func Build(c *modtree.Crate, logger *slog.Logger) *Tables {
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("tables").Observe(time.Since(start).Seconds())
	}()
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tables{
		CrateName:  c.Name,
		Functions:  make(map[string]*FunctionEntry),
		Types:      make(map[string]*TypeEntry),
		aliases:    make(map[string][]string),
		traitsOf:   make(map[string]map[string]bool),
		scopePaths: c.ScopePaths(),
		logger:     logger,
	}

	c.PostOrder(func(n *modtree.Node) {
		t.index(n)
	})
	for canonical, traits := range t.traitsOf {
		if entry, ok := t.Types[canonical]; ok {
			entry.Traits = sortedKeys(traits)
		}
	}
	t.buildReexports(c)
	return t
}

func (t *Tables) index(n *modtree.Node) {
	ctx := n.Context
	for _, fn := range ctx.Functions {
		t.putFunction(&FunctionEntry{Canonical: fn.Canonical, Decl: fn, Scope: n.ID})
	}
	for _, impl := range ctx.Impls {
		stripped := impl.Stripped()
		for i, fn := range impl.Functions {
			t.putFunction(&FunctionEntry{Canonical: fn.Canonical, Decl: fn, Impl: stripped, Index: i, Scope: n.ID})
			if impl.Target.IsResolved() {
				t.addAlias(impl.Target.Resolved.Append(fn.Name).String(), fn.Canonical)
			}
		}
		if impl.Target.IsResolved() && impl.Trait.IsResolved() {
			target := impl.Target.Canonical()
			if t.traitsOf[target] == nil {
				t.traitsOf[target] = make(map[string]bool)
			}
			t.traitsOf[target][impl.Trait.Canonical()] = true
		}
	}
	for _, trait := range ctx.Traits {
		stripped := trait.Stripped()
		for i, fn := range trait.Functions {
			t.putFunction(&FunctionEntry{Canonical: fn.Canonical, Decl: fn, Trait: stripped, Index: i, Scope: n.ID})
		}
		t.putType(&TypeEntry{Canonical: trait.Canonical, Trait: trait, Scope: n.ID})
	}
	for _, decl := range ctx.TypeDecls() {
		t.putType(&TypeEntry{Canonical: decl.Canonical, Type: decl, Scope: n.ID})
	}
	for _, bucket := range [][]*syntax.Leaf{ctx.TypeAliases, ctx.TraitAliases} {
		for _, leaf := range bucket {
			t.putType(&TypeEntry{Canonical: leaf.Canonical, Leaf: leaf, Scope: n.ID})
		}
	}
}

func (t *Tables) putFunction(e *FunctionEntry) {
	if _, exists := t.Functions[e.Canonical]; exists {
		t.collision("function", e.Canonical)
	}
	t.Functions[e.Canonical] = e
}

func (t *Tables) putType(e *TypeEntry) {
	if _, exists := t.Types[e.Canonical]; exists {
		t.collision("type", e.Canonical)
	}
	t.Types[e.Canonical] = e
}

func (t *Tables) collision(kind, canonical string) {
	t.Collisions++
	observability.SymbolCollisionsTotal.Inc()
	t.logger.Warn("canonical name declared twice, keeping the last", "kind", kind, "symbol", canonical)
}

func (t *Tables) addAlias(from, to string) {
	if from == to {
		return
	}
	for _, existing := range t.aliases[from] {
		if existing == to {
			return
		}
	}
	t.aliases[from] = append(t.aliases[from], to)
}

// buildReexports maps paths created by non-private `pub use` to their
// targets. Glob re-exports are propagated to a fixed point so chains of
// `pub use x::*` expose everything their sources expose.
func (t *Tables) buildReexports(c *modtree.Crate) {
	exports := make(map[modtree.NodeID]map[string]bool, len(c.Nodes))
	c.Walk(func(n *modtree.Node) {
		set := make(map[string]bool)
		ctx := n.Context
		for _, fn := range ctx.Functions {
			set[fn.Name] = true
		}
		for _, decl := range ctx.TypeDecls() {
			set[decl.Name] = true
		}
		for _, trait := range ctx.Traits {
			set[trait.Name] = true
		}
		for _, bucket := range [][]*syntax.Leaf{ctx.TypeAliases, ctx.TraitAliases} {
			for _, leaf := range bucket {
				set[leaf.Name] = true
			}
		}
		for _, u := range ctx.Uses {
			if u.Glob || u.Visibility.IsPrivate() {
				continue
			}
			set[u.Local] = true
			t.addAlias(n.Path.Append(u.Local).String(), u.Canonical.String())
		}
		exports[n.ID] = set
	})

	for changed := true; changed; {
		changed = false
		c.Walk(func(n *modtree.Node) {
			for _, u := range n.Context.Uses {
				if !u.Glob || u.Visibility.IsPrivate() {
					continue
				}
				src, ok := c.Lookup(u.Canonical, n.Root)
				if !ok || src == n.ID {
					continue
				}
				for _, name := range sortedKeys(exports[src]) {
					t.addAlias(n.Path.Append(name).String(), u.Canonical.Append(name).String())
					if !exports[n.ID][name] {
						exports[n.ID][name] = true
						changed = true
					}
				}
			}
		})
	}
}

// Function looks up a canonical function name.
func (t *Tables) Function(name string) (*FunctionEntry, bool) {
	e, ok := t.Functions[name]
	return e, ok
}

// Type looks up a canonical struct, enum, union, trait or alias name.
func (t *Tables) Type(name string) (*TypeEntry, bool) {
	e, ok := t.Types[name]
	return e, ok
}

// Aliases returns the names a secondary path stands for: `Type::method`
// spellings of impl members and re-exported paths. Targets may themselves
// be aliases.
func (t *Tables) Aliases(name string) []string {
	return t.aliases[name]
}

// ScopePaths returns every module and function scope path, sorted.
func (t *Tables) ScopePaths() []string {
	return t.scopePaths
}

// Targets returns every function of the crate ordered by canonical name.
func (t *Tables) Targets() []*FunctionEntry {
	out := make([]*FunctionEntry, 0, len(t.Functions))
	for _, e := range t.Functions {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
