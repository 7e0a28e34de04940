// Package modtree builds the module forest of a crate and resolves names
// against it.
package modtree

import (
	"sort"

	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/syntax"
)

type NodeID int

const NoNode NodeID = -1

type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	// ScopeFunction is a synthetic scope for items declared in a function
	// body.
	ScopeFunction
)

// Node is one scope of the module forest. Nodes refer to each other by
// index into Crate.Nodes.
type Node struct {
	ID   NodeID
	Kind ScopeKind
	Name string
	Path names.Path
	// Dir is where file-backed child modules are looked up.
	Dir      string
	File     string
	Context  *syntax.Context
	Function *syntax.FunctionDecl
	Parent   NodeID
	Root     NodeID
	Children []NodeID
}

// Crate owns every node of the forest. One root exists per entry file.
type Crate struct {
	Name  string
	Roots []NodeID
	Nodes []*Node

	byPath map[string][]NodeID
}

func newCrate(name string) *Crate {
	return &Crate{Name: name, byPath: make(map[string][]NodeID)}
}

func (c *Crate) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(c.Nodes) {
		return nil
	}
	return c.Nodes[id]
}

func (c *Crate) addRoot(path names.Path, dir, file string) NodeID {
	id := NodeID(len(c.Nodes))
	n := &Node{ID: id, Kind: ScopeModule, Name: path.String(), Path: path, Dir: dir, File: file, Parent: NoNode, Root: id}
	c.Nodes = append(c.Nodes, n)
	c.Roots = append(c.Roots, id)
	c.index(n)
	return id
}

func (c *Crate) addChild(parent NodeID, kind ScopeKind, name string, path names.Path, dir, file string) NodeID {
	p := c.Nodes[parent]
	id := NodeID(len(c.Nodes))
	n := &Node{ID: id, Kind: kind, Name: name, Path: path, Dir: dir, File: file, Parent: parent, Root: p.Root}
	c.Nodes = append(c.Nodes, n)
	p.Children = append(p.Children, id)
	c.index(n)
	return id
}

func (c *Crate) index(n *Node) {
	key := n.Path.String()
	c.byPath[key] = append(c.byPath[key], n.ID)
}

// Walk visits nodes in pre-order, roots in entry order.
func (c *Crate) Walk(visit func(*Node)) {
	var rec func(NodeID)
	rec = func(id NodeID) {
		n := c.Nodes[id]
		visit(n)
		for _, child := range n.Children {
			rec(child)
		}
	}
	for _, root := range c.Roots {
		rec(root)
	}
}

// PostOrder visits children before their parent.
func (c *Crate) PostOrder(visit func(*Node)) {
	var rec func(NodeID)
	rec = func(id NodeID) {
		n := c.Nodes[id]
		for _, child := range n.Children {
			rec(child)
		}
		visit(n)
	}
	for _, root := range c.Roots {
		rec(root)
	}
}

// Lookup finds a scope by canonical path, preferring one under root when
// several entries declare the same path.
func (c *Crate) Lookup(path names.Path, root NodeID) (NodeID, bool) {
	ids := c.byPath[path.String()]
	if len(ids) == 0 {
		return NoNode, false
	}
	for _, id := range ids {
		if c.Nodes[id].Root == root {
			return id, true
		}
	}
	return ids[0], true
}

// Child returns the child module of id called name.
func (c *Crate) Child(id NodeID, name string) (NodeID, bool) {
	for _, child := range c.Nodes[id].Children {
		n := c.Nodes[child]
		if n.Kind == ScopeModule && n.Name == name {
			return child, true
		}
	}
	return NoNode, false
}

// ModuleOf returns the nearest enclosing module, skipping function scopes.
func (c *Crate) ModuleOf(id NodeID) NodeID {
	for id != NoNode && c.Nodes[id].Kind == ScopeFunction {
		id = c.Nodes[id].Parent
	}
	return id
}

// ScopePaths returns every distinct scope path, sorted.
func (c *Crate) ScopePaths() []string {
	out := make([]string, 0, len(c.byPath))
	for key := range c.byPath {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
