package modtree

import (
	"rfocxt/internal/engine/names"
)

// maxResolveDepth bounds re-export chains and scope walks.
const maxResolveDepth = 32

// stampNames qualifies every declaration with its scope's path.
func (c *Crate) stampNames() {
	c.Walk(func(n *Node) {
		n.Context.Stamp(n.Path)
	})
}

// resolveAll qualifies use targets, then impl targets, impl traits, field
// references and signature types, now that every scope exists.
func (c *Crate) resolveAll() {
	c.Walk(func(n *Node) {
		for i := range n.Context.Uses {
			u := &n.Context.Uses[i]
			u.Canonical = c.qualifyUse(n.ID, u.Target)
		}
	})
	c.Walk(func(n *Node) {
		for _, impl := range n.Context.Impls {
			impl.Target = c.ResolveName(n.ID, impl.RawTarget)
			if impl.IsTraitImpl() {
				impl.Trait = c.ResolveName(n.ID, impl.RawTrait)
			}
		}
		for _, t := range n.Context.TypeDecls() {
			t.FieldRefs = t.FieldRefs[:0]
			for _, raw := range t.FieldTypes {
				t.FieldRefs = append(t.FieldRefs, c.ResolveName(n.ID, raw))
			}
		}
		for _, fn := range n.Context.AllFunctions() {
			fn.SignatureRefs = fn.SignatureRefs[:0]
			for _, raw := range fn.SignatureTypes {
				fn.SignatureRefs = append(fn.SignatureRefs, c.ResolveName(n.ID, raw))
			}
		}
	})
}

// ResolveName resolves raw, as written inside scope id, to its canonical
// path. Failure yields an unresolved Name, never an error.
func (c *Crate) ResolveName(id NodeID, raw string) names.Name {
	p := names.ParsePath(names.StripGenerics(raw))
	if p.IsEmpty() || c.Node(id) == nil {
		return names.Unresolved(raw)
	}
	if target, ok := c.resolvePath(id, p, 0); ok {
		return names.Resolved(raw, target)
	}
	return names.Unresolved(raw)
}

func (c *Crate) resolvePath(id NodeID, p names.Path, depth int) (names.Path, bool) {
	if depth > maxResolveDepth || id == NoNode {
		return names.Path{}, false
	}
	switch p.First() {
	case "crate", "self", "super", "Self":
		return c.resolvePrefixed(id, p)
	}

	node := c.Nodes[id]
	ctx := node.Context
	first, rest := p.First(), p.Tail(1)

	if p.Len() == 1 {
		if canonical, ok := ctx.DeclaredType(first); ok {
			return names.ParsePath(canonical), true
		}
	} else if child, ok := c.Child(id, first); ok {
		return names.Concat(c.Nodes[child].Path, rest), true
	}

	for _, u := range ctx.Uses {
		if !u.Glob && u.Rename != "" && u.Rename == first {
			return names.Concat(c.useTarget(id, u), rest), true
		}
	}
	for _, u := range ctx.Uses {
		if !u.Glob && u.Rename == "" && u.Local == first {
			return names.Concat(c.useTarget(id, u), rest), true
		}
	}

	if p.Len() > 1 {
		if canonical, ok := ctx.DeclaredType(first); ok {
			return names.Concat(names.ParsePath(canonical), rest), true
		}
	}

	for _, u := range ctx.Uses {
		if !u.Glob {
			continue
		}
		target := c.useTarget(id, u)
		mod, ok := c.Lookup(target, node.Root)
		if !ok || c.Nodes[mod].Context == nil || !c.Nodes[mod].Context.Declares(first) {
			continue
		}
		return names.Concat(target.Append(first), rest), true
	}

	if node.Kind == ScopeFunction {
		return c.resolvePath(node.Parent, p, depth+1)
	}
	return names.Path{}, false
}

// resolvePrefixed handles paths starting with crate, self, super or Self.
func (c *Crate) resolvePrefixed(id NodeID, p names.Path) (names.Path, bool) {
	switch p.First() {
	case "crate":
		return names.Concat(c.Nodes[c.Nodes[id].Root].Path, p.Tail(1)), true
	case "Self":
		// Self only means something inside an impl; callers resolve the
		// impl target instead.
		return names.Path{}, false
	}
	mod := c.ModuleOf(id)
	if p.First() == "self" {
		return names.Concat(c.Nodes[mod].Path, p.Tail(1)), true
	}
	for p.First() == "super" {
		parent := c.Nodes[mod].Parent
		if parent == NoNode {
			return names.Path{}, false
		}
		mod = c.ModuleOf(parent)
		p = p.Tail(1)
	}
	return names.Concat(c.Nodes[mod].Path, p), true
}

func (c *Crate) useTarget(id NodeID, u names.UseBinding) names.Path {
	if !u.Canonical.IsEmpty() {
		return u.Canonical
	}
	return c.qualifyUse(id, u.Target)
}

// qualifyUse turns a use path into a crate-qualified one. Paths rooted in an
// extern crate are returned as written.
func (c *Crate) qualifyUse(id NodeID, target names.Path) names.Path {
	switch target.First() {
	case "crate", "self", "super":
		if p, ok := c.resolvePrefixed(id, target); ok {
			return p
		}
		return target
	}
	for scope := id; scope != NoNode; scope = c.Nodes[scope].Parent {
		if child, ok := c.Child(scope, target.First()); ok {
			return names.Concat(c.Nodes[child].Path, target.Tail(1))
		}
		if c.Nodes[scope].Kind == ScopeModule {
			break
		}
	}
	return target
}
