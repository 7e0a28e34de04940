package syntax

import (
	"fmt"

	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/parser"
)

// Build indexes the items of one scope in a single pass. Canonical names are
// left empty until Stamp is called with the scope's path.
func Build(items []parser.Item) *Context {
	ctx := &Context{}
	for i := range items {
		ctx.add(&items[i])
	}
	return ctx
}

func (c *Context) add(it *parser.Item) {
	vis := names.ParseVisibility(it.Visibility)
	switch it.Kind {
	case parser.KindConst:
		c.Consts = append(c.Consts, newLeaf(it, vis))
	case parser.KindStatic:
		c.Statics = append(c.Statics, newLeaf(it, vis))
	case parser.KindTypeAlias:
		c.TypeAliases = append(c.TypeAliases, newLeaf(it, vis))
	case parser.KindTraitAlias:
		c.TraitAliases = append(c.TraitAliases, newLeaf(it, vis))
	case parser.KindUse:
		if it.Use != nil {
			c.Uses = append(c.Uses, names.ExpandUseTree(*it.Use, vis)...)
		}
	case parser.KindMod:
		mod := &ModDecl{Name: it.Name, Visibility: vis, Location: it.Location}
		if it.Mod != nil {
			mod.Inline = it.Mod.Inline
			mod.PathAttr = it.Mod.PathAttr
			mod.Items = it.Mod.Items
		}
		c.Mods = append(c.Mods, mod)
	case parser.KindStruct:
		c.Structs = append(c.Structs, newTypeDecl(it, Struct, vis))
	case parser.KindEnum:
		c.Enums = append(c.Enums, newTypeDecl(it, Enum, vis))
	case parser.KindUnion:
		c.Unions = append(c.Unions, newTypeDecl(it, Union, vis))
	case parser.KindFunction:
		fn := newFunction(it, vis)
		fn.Scoped = it.Name
		c.Functions = append(c.Functions, fn)
	case parser.KindImpl:
		c.Impls = append(c.Impls, newImpl(it, len(c.Impls)))
	case parser.KindTrait:
		c.Traits = append(c.Traits, newTrait(it, vis))
	case parser.KindMacro, parser.KindExternCrate, parser.KindForeignMod:
		// not indexed
	}
}

func newLeaf(it *parser.Item, vis names.Visibility) *Leaf {
	return &Leaf{Kind: it.Kind, Name: it.Name, Visibility: vis, Source: it.Source, Location: it.Location}
}

func newTypeDecl(it *parser.Item, kind TypeKind, vis names.Visibility) *TypeDecl {
	t := &TypeDecl{Kind: kind, Name: it.Name, Visibility: vis, Source: it.Source, Location: it.Location}
	if it.Fields != nil {
		t.FieldTypes = append(t.FieldTypes, it.Fields.TypeRefs...)
	}
	return t
}

func newFunction(it *parser.Item, vis names.Visibility) *FunctionDecl {
	fn := &FunctionDecl{
		Name:       it.Name,
		Visibility: vis,
		Source:     it.Source,
		Signature:  it.Source,
		HasBody:    true,
		Location:   it.Location,
	}
	if it.Function != nil {
		fn.Signature = it.Function.Signature
		fn.HasBody = it.Function.HasBody
		fn.SignatureTypes = append(fn.SignatureTypes, it.Function.TypeRefs...)
		fn.TypeParams = it.Function.TypeParams
	}
	if it.HasNestedItems() {
		fn.Nested = it.Function.Items
	}
	return fn
}

func implTag(ordinal int) string {
	return fmt.Sprintf("{impl#%d}", ordinal)
}

func newImpl(it *parser.Item, ordinal int) *ImplBlock {
	impl := &ImplBlock{Ordinal: ordinal, Location: it.Location, Header: it.Source}
	if it.Impl == nil {
		return impl
	}
	impl.RawTarget = it.Impl.SelfType
	impl.RawTrait = it.Impl.Trait
	impl.Header = it.Impl.Header
	impl.TypeParams = it.Impl.TypeParams
	impl.Target = names.Unresolved(impl.RawTarget)
	if impl.IsTraitImpl() {
		impl.Trait = names.Unresolved(impl.RawTrait)
	}
	for i := range it.Impl.Members {
		m := &it.Impl.Members[i]
		switch m.Kind {
		case parser.KindFunction:
			fn := newFunction(m, names.ParseVisibility(m.Visibility))
			fn.Owner = OwnerImpl
			fn.Impl = impl
			fn.Scoped = implTag(ordinal) + names.Sep + m.Name
			impl.Functions = append(impl.Functions, fn)
		case parser.KindConst:
			impl.Consts = append(impl.Consts, Member{Kind: m.Kind, Name: m.Name, Source: m.Source})
		case parser.KindTypeAlias:
			impl.Types = append(impl.Types, Member{Kind: m.Kind, Name: m.Name, Source: m.Source})
		}
	}
	return impl
}

func newTrait(it *parser.Item, vis names.Visibility) *TraitDecl {
	trait := &TraitDecl{Name: it.Name, Visibility: vis, Source: it.Source, Header: it.Source, Location: it.Location}
	if it.Trait == nil {
		return trait
	}
	trait.Header = it.Trait.Header
	for i := range it.Trait.Members {
		m := &it.Trait.Members[i]
		switch m.Kind {
		case parser.KindFunction:
			if m.Function != nil && !m.Function.HasBody {
				trait.Required = append(trait.Required, Member{Kind: m.Kind, Name: m.Name, Source: m.Source})
				continue
			}
			fn := newFunction(m, vis)
			fn.Owner = OwnerTrait
			fn.Trait = trait
			fn.Scoped = it.Name + names.Sep + m.Name
			trait.Functions = append(trait.Functions, fn)
		case parser.KindConst:
			trait.Consts = append(trait.Consts, Member{Kind: m.Kind, Name: m.Name, Source: m.Source})
		case parser.KindTypeAlias:
			trait.Types = append(trait.Types, Member{Kind: m.Kind, Name: m.Name, Source: m.Source})
		}
	}
	return trait
}

// Stamp qualifies every declaration of the scope with its path.
func (c *Context) Stamp(scope names.Path) {
	qualify := func(name string) string {
		return scope.Append(name).String()
	}
	for _, bucket := range [][]*Leaf{c.Consts, c.Statics, c.TypeAliases, c.TraitAliases} {
		for _, l := range bucket {
			l.Canonical = qualify(l.Name)
		}
	}
	for _, t := range c.TypeDecls() {
		t.Canonical = qualify(t.Name)
	}
	for _, t := range c.Traits {
		t.Canonical = qualify(t.Name)
	}
	for _, impl := range c.Impls {
		impl.Key = qualify(implTag(impl.Ordinal))
	}
	for _, fn := range c.AllFunctions() {
		fn.Canonical = scope.String() + names.Sep + fn.Scoped
	}
}
