// # internal/engine/parser/types.go
package parser

import (
	"rfocxt/internal/engine/names"
)

// Kind is the closed set of item kinds produced at the parsing boundary.
// Downstream components switch exhaustively on it.
type Kind int

const (
	KindConst Kind = iota
	KindStatic
	KindTypeAlias
	KindTraitAlias
	KindUse
	KindMod
	KindStruct
	KindEnum
	KindUnion
	KindFunction
	KindImpl
	KindTrait
	KindMacro
	KindExternCrate
	KindForeignMod
)

var kindNames = [...]string{
	KindConst:       "const",
	KindStatic:      "static",
	KindTypeAlias:   "type",
	KindTraitAlias:  "trait_alias",
	KindUse:         "use",
	KindMod:         "mod",
	KindStruct:      "struct",
	KindEnum:        "enum",
	KindUnion:       "union",
	KindFunction:    "fn",
	KindImpl:        "impl",
	KindTrait:       "trait",
	KindMacro:       "macro",
	KindExternCrate: "extern_crate",
	KindForeignMod:  "extern_block",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type File struct {
	Path      string
	Items     []Item
	HasErrors bool
	// ErrorAt is the first ERROR or MISSING node, set when HasErrors.
	ErrorAt Location
}

type Location struct {
	File   string
	Line   int
	Column int
}

type Attribute struct {
	Name  string // path of the attribute, e.g. "derive", "path", "cfg"
	Value string // unquoted `= "..."` value, if any
	Text  string
}

// Item is one Rust item. Exactly one of the payload pointers is set for the
// kinds that carry one.
type Item struct {
	Kind       Kind
	Name       string
	Visibility string
	Attrs      []Attribute
	// Source is the item text with doc comments and #[doc] attributes
	// removed, re-indented to column zero. Outer attributes are included.
	Source   string
	Location Location

	Use      *names.UseTree
	Mod      *ModBody
	Fields   *FieldInfo
	Function *FunctionBody
	Impl     *ImplBody
	Trait    *TraitBody
}

type ModBody struct {
	Inline   bool
	PathAttr string
	Items    []Item
}

// FieldInfo lists the type paths referenced from a struct, enum or union
// body, generic arguments flattened, excluding primitives and the item's own
// type parameters.
type FieldInfo struct {
	TypeParams []string
	TypeRefs   []string
}

type FunctionBody struct {
	// Signature is the source up to the body block, or the whole item for
	// bodiless trait methods.
	Signature string
	HasBody   bool
	// TypeRefs are the type paths named by parameters and the return type,
	// excluding the function's own type parameters.
	TypeRefs []string
	// TypeParams are the names declared in the function's own generics.
	TypeParams []string
	// Items are declared directly inside the body block.
	Items []Item
}

type ImplBody struct {
	SelfType string // generics stripped, e.g. "a::S"
	Trait    string // empty for inherent impls
	Header   string // text up to the opening brace, attributes included
	Members  []Item

	// TypeParams are the names declared by `impl<...>`.
	TypeParams []string
}

type TraitBody struct {
	Header  string
	Members []Item
}

// Attr returns the value of the first attribute named name.
func (it *Item) Attr(name string) (Attribute, bool) {
	for _, a := range it.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// HasNestedItems reports whether a function declares items in its body.
func (it *Item) HasNestedItems() bool {
	return it.Kind == KindFunction && it.Function != nil && len(it.Function.Items) > 0
}
