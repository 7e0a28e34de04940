// Package syntax indexes the items of one scope (a file, an inline module or
// a function body) into typed buckets.
package syntax

import (
	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/parser"
)

type TypeKind int

const (
	Struct TypeKind = iota
	Enum
	Union
)

func (k TypeKind) String() string {
	switch k {
	case Enum:
		return "enum"
	case Union:
		return "union"
	}
	return "struct"
}

// Leaf is a const, static, type alias or trait alias. Leaves are carried
// verbatim and never expanded.
type Leaf struct {
	Kind       parser.Kind
	Name       string
	Canonical  string
	Visibility names.Visibility
	Source     string
	Location   parser.Location
}

// TypeDecl is a struct, enum or union.
type TypeDecl struct {
	Kind       TypeKind
	Name       string
	Canonical  string
	Visibility names.Visibility
	Source     string
	// FieldTypes are the type paths named in fields or variants, as written.
	FieldTypes []string
	// FieldRefs are FieldTypes resolved against the declaring scope. Filled
	// by the module tree's resolution pass.
	FieldRefs []names.Name
	Location  parser.Location
}

type ModDecl struct {
	Name       string
	Visibility names.Visibility
	Inline     bool
	PathAttr   string
	Items      []parser.Item
	Location   parser.Location
}

type OwnerKind int

const (
	OwnerFree OwnerKind = iota
	OwnerImpl
	OwnerTrait
)

type FunctionDecl struct {
	Name string
	// Scoped is the name within the declaring scope: `f`, `{impl#N}::f` or
	// `Trait::f`.
	Scoped     string
	Canonical  string
	Visibility names.Visibility
	Source     string
	Signature  string
	HasBody    bool
	Owner      OwnerKind
	Impl       *ImplBlock
	Trait      *TraitDecl

	// SignatureTypes are the type paths named by parameters and the return
	// type. SignatureRefs holds them resolved against the declaring scope.
	SignatureTypes []string
	SignatureRefs  []names.Name
	TypeParams     []string

	// Nested holds the items declared directly inside the body.
	Nested   []parser.Item
	Location parser.Location
}

// Member is an associated const or type of an impl or trait.
type Member struct {
	Kind   parser.Kind
	Name   string
	Source string
}

type ImplBlock struct {
	Ordinal int
	// Key is `<scope>::{impl#N}`, stamped with the scope path.
	Key       string
	RawTarget string
	RawTrait  string
	Target    names.Name
	Trait     names.Name
	Header    string
	Consts    []Member
	Types     []Member
	Functions []*FunctionDecl
	Location  parser.Location

	// TypeParams are the impl's own generics, shared by every member.
	TypeParams []string
}

type TraitDecl struct {
	Name       string
	Canonical  string
	Visibility names.Visibility
	Header     string
	Source     string
	Consts     []Member
	Types      []Member
	// Required are bodiless method signatures.
	Required  []Member
	Functions []*FunctionDecl
	Location  parser.Location
}

// Context is the typed index of one scope.
type Context struct {
	Consts       []*Leaf
	Statics      []*Leaf
	TypeAliases  []*Leaf
	TraitAliases []*Leaf
	Uses         []names.UseBinding
	Mods         []*ModDecl
	Structs      []*TypeDecl
	Enums        []*TypeDecl
	Unions       []*TypeDecl
	Traits       []*TraitDecl
	Impls        []*ImplBlock
	// Functions are the free functions of the scope.
	Functions []*FunctionDecl
}

// Stripped copies the impl header without any members.
func (b *ImplBlock) Stripped() *ImplBlock {
	c := *b
	c.Consts, c.Types, c.Functions = nil, nil, nil
	return &c
}

// IsTraitImpl reports whether the block implements a trait.
func (b *ImplBlock) IsTraitImpl() bool {
	return b.RawTrait != ""
}

// Stripped copies the trait header without any members.
func (t *TraitDecl) Stripped() *TraitDecl {
	c := *t
	c.Consts, c.Types, c.Required, c.Functions = nil, nil, nil, nil
	return &c
}

// TypeDecls returns structs, enums and unions in that order.
func (c *Context) TypeDecls() []*TypeDecl {
	out := make([]*TypeDecl, 0, len(c.Structs)+len(c.Enums)+len(c.Unions))
	out = append(out, c.Structs...)
	out = append(out, c.Enums...)
	return append(out, c.Unions...)
}

// AllFunctions returns free functions, impl members and trait defaults.
func (c *Context) AllFunctions() []*FunctionDecl {
	out := append([]*FunctionDecl(nil), c.Functions...)
	for _, impl := range c.Impls {
		out = append(out, impl.Functions...)
	}
	for _, trait := range c.Traits {
		out = append(out, trait.Functions...)
	}
	return out
}

// FunctionScopes returns every function of the scope that declares items
// inside its body.
func (c *Context) FunctionScopes() []*FunctionDecl {
	var out []*FunctionDecl
	for _, fn := range c.AllFunctions() {
		if len(fn.Nested) > 0 {
			out = append(out, fn)
		}
	}
	return out
}

// DeclaredType returns the canonical name of a struct, enum, union, trait or
// alias called name in this scope.
func (c *Context) DeclaredType(name string) (string, bool) {
	for _, t := range c.TypeDecls() {
		if t.Name == name {
			return t.Canonical, true
		}
	}
	for _, t := range c.Traits {
		if t.Name == name {
			return t.Canonical, true
		}
	}
	for _, bucket := range [][]*Leaf{c.TypeAliases, c.TraitAliases} {
		for _, l := range bucket {
			if l.Name == name {
				return l.Canonical, true
			}
		}
	}
	return "", false
}

// Declares reports whether any item of the scope binds name, functions and
// values included. Glob imports use it to test membership.
func (c *Context) Declares(name string) bool {
	if _, ok := c.DeclaredType(name); ok {
		return true
	}
	for _, fn := range c.Functions {
		if fn.Name == name {
			return true
		}
	}
	for _, m := range c.Mods {
		if m.Name == name {
			return true
		}
	}
	for _, bucket := range [][]*Leaf{c.Consts, c.Statics} {
		for _, l := range bucket {
			if l.Name == name {
				return true
			}
		}
	}
	return false
}
