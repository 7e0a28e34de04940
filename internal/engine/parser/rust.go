// # internal/engine/parser/rust.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"rfocxt/internal/engine/names"
)

type rustExtractor struct {
	engine *ExtractorEngine
}

func newRustExtractor() *rustExtractor {
	e := &rustExtractor{}
	e.engine = NewExtractorEngine(map[string]NodeHandler{
		"const_item":               e.leaf(KindConst),
		"static_item":              e.leaf(KindStatic),
		"type_item":                e.leaf(KindTypeAlias),
		"associated_type":          e.leaf(KindTypeAlias),
		"use_declaration":          e.extractUse,
		"mod_item":                 e.extractMod,
		"struct_item":              e.extractFields(KindStruct),
		"enum_item":                e.extractFields(KindEnum),
		"union_item":               e.extractFields(KindUnion),
		"function_item":            e.extractFunction,
		"function_signature_item":  e.extractFunction,
		"impl_item":                e.extractImpl,
		"trait_item":               e.extractTrait,
		"macro_invocation":         e.leaf(KindMacro),
		"macro_definition":         e.leaf(KindMacro),
		"extern_crate_declaration": e.leaf(KindExternCrate),
		"foreign_mod_item":         e.leaf(KindForeignMod),
	})
	return e
}

func (e *rustExtractor) Extract(root *sitter.Node, source []byte, path string) *File {
	ctx := &ExtractionContext{Source: source, Path: path}
	file := &File{Path: path}
	if root.HasError() {
		file.HasErrors = true
		if bad := firstErrorNode(root); bad != nil {
			file.ErrorAt = ctx.Location(bad)
		}
	}
	file.Items = e.engine.Collect(ctx, root)
	return file
}

func firstErrorNode(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// base fills the fields every item carries.
func (e *rustExtractor) base(ctx *ExtractionContext, kind Kind, node *sitter.Node, attrs []*sitter.Node) Item {
	item := Item{
		Kind:       kind,
		Name:       strings.TrimSpace(ctx.FieldText(node, "name")),
		Visibility: strings.TrimSpace(ctx.ChildText(node, "visibility_modifier")),
		Source:     ctx.render(node, attrs, node.EndByte()),
		Location:   ctx.Location(node),
	}
	for _, a := range attrs {
		if attr := ctx.attributeOf(a); attr.Name != "doc" {
			item.Attrs = append(item.Attrs, attr)
		}
	}
	return item
}

func (e *rustExtractor) leaf(kind Kind) NodeHandler {
	return func(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
		return e.base(ctx, kind, node, attrs), true
	}
}

func (e *rustExtractor) extractUse(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
	item := e.base(ctx, KindUse, node, attrs)
	tree, ok := useTree(ctx, node.ChildByFieldName("argument"))
	if !ok {
		return item, false
	}
	item.Use = &tree
	return item, true
}

func (e *rustExtractor) extractMod(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
	item := e.base(ctx, KindMod, node, attrs)
	body := &ModBody{}
	if attr, ok := item.Attr("path"); ok {
		body.PathAttr = attr.Value
	}
	if list := node.ChildByFieldName("body"); list != nil {
		body.Inline = true
		body.Items = e.engine.Collect(ctx, list)
	}
	item.Mod = body
	return item, true
}

func (e *rustExtractor) extractFields(kind Kind) NodeHandler {
	return func(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
		item := e.base(ctx, kind, node, attrs)
		info := &FieldInfo{TypeParams: typeParams(ctx, node.ChildByFieldName("type_parameters"))}
		skip := make(map[string]bool, len(info.TypeParams))
		for _, p := range info.TypeParams {
			skip[p] = true
		}
		collectTypeRefs(ctx, node.ChildByFieldName("body"), skip, &info.TypeRefs)
		item.Fields = info
		return item, true
	}
}

func (e *rustExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
	item := e.base(ctx, KindFunction, node, attrs)
	fn := &FunctionBody{TypeParams: typeParams(ctx, node.ChildByFieldName("type_parameters"))}
	skip := make(map[string]bool, len(fn.TypeParams))
	for _, p := range fn.TypeParams {
		skip[p] = true
	}
	collectTypeRefs(ctx, node.ChildByFieldName("parameters"), skip, &fn.TypeRefs)
	collectTypeRefs(ctx, node.ChildByFieldName("return_type"), skip, &fn.TypeRefs)
	if body := node.ChildByFieldName("body"); body != nil {
		fn.HasBody = true
		fn.Signature = ctx.render(node, attrs, body.StartByte())
		fn.Items = e.engine.Collect(ctx, body)
	} else {
		fn.Signature = item.Source
	}
	item.Function = fn
	return item, true
}

func (e *rustExtractor) extractImpl(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
	item := e.base(ctx, KindImpl, node, attrs)
	impl := &ImplBody{
		SelfType: typePath(ctx, node.ChildByFieldName("type")),
		Trait:    typePath(ctx, node.ChildByFieldName("trait")),
	}
	impl.TypeParams = typeParams(ctx, node.ChildByFieldName("type_parameters"))
	body := node.ChildByFieldName("body")
	if body == nil {
		impl.Header = item.Source
	} else {
		impl.Header = ctx.render(node, attrs, body.StartByte())
		impl.Members = e.engine.Collect(ctx, body)
	}
	item.Impl = impl
	return item, true
}

func (e *rustExtractor) extractTrait(ctx *ExtractionContext, node *sitter.Node, attrs []*sitter.Node) (Item, bool) {
	item := e.base(ctx, KindTrait, node, attrs)
	trait := &TraitBody{}
	body := node.ChildByFieldName("body")
	if body == nil {
		trait.Header = item.Source
	} else {
		trait.Header = ctx.render(node, attrs, body.StartByte())
		trait.Members = e.engine.Collect(ctx, body)
	}
	item.Trait = trait
	return item, true
}

// typePath reduces a type node to its generics-free path. Only path-like
// types (possibly behind references, pointers or dyn) yield a name.
func typePath(ctx *ExtractionContext, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return ctx.Text(node)
	case "scoped_type_identifier", "scoped_identifier", "generic_type":
		return names.StripGenerics(ctx.Text(node))
	case "reference_type", "pointer_type":
		return typePath(ctx, node.ChildByFieldName("type"))
	case "dynamic_type", "abstract_type":
		return typePath(ctx, node.ChildByFieldName("trait"))
	}
	return ""
}

func typeParams(ctx *ExtractionContext, node *sitter.Node) []string {
	if node == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "type_identifier" {
			out = append(out, ctx.Text(child))
			continue
		}
		if name := childOfKind(child, "type_identifier"); name != nil {
			out = append(out, ctx.Text(name))
		}
	}
	return out
}

// collectTypeRefs appends the type paths mentioned under node, in source
// order and without duplicates.
func collectTypeRefs(ctx *ExtractionContext, node *sitter.Node, skip map[string]bool, out *[]string) {
	if node == nil {
		return
	}
	add := func(name string) {
		if name == "" || name == "Self" || skip[name] {
			return
		}
		for _, existing := range *out {
			if existing == name {
				return
			}
		}
		*out = append(*out, name)
	}
	switch node.Kind() {
	case "primitive_type", "lifetime", "attribute_item":
		return
	case "type_identifier":
		add(ctx.Text(node))
		return
	case "scoped_type_identifier":
		add(names.StripGenerics(ctx.Text(node)))
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child != nil && child.Kind() == "generic_type" {
				collectTypeRefs(ctx, child.ChildByFieldName("type_arguments"), skip, out)
			}
		}
		return
	case "generic_type":
		collectTypeRefs(ctx, node.ChildByFieldName("type"), skip, out)
		collectTypeRefs(ctx, node.ChildByFieldName("type_arguments"), skip, out)
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		collectTypeRefs(ctx, node.NamedChild(i), skip, out)
	}
}

// useTree converts a use clause node into the nested UseTree form.
func useTree(ctx *ExtractionContext, node *sitter.Node) (names.UseTree, bool) {
	if node == nil {
		return names.UseTree{}, false
	}
	switch node.Kind() {
	case "identifier", "self", "crate", "super", "metavariable":
		return names.UseTree{Kind: names.UseName, Ident: ctx.Text(node)}, true
	case "scoped_identifier":
		segs := pathSegments(ctx, node)
		if len(segs) == 0 {
			return names.UseTree{}, false
		}
		last := segs[len(segs)-1]
		return chainUse(segs[:len(segs)-1], names.UseTree{Kind: names.UseName, Ident: last}), true
	case "use_as_clause":
		segs := pathSegments(ctx, node.ChildByFieldName("path"))
		alias := ctx.FieldText(node, "alias")
		if len(segs) == 0 || alias == "" {
			return names.UseTree{}, false
		}
		last := segs[len(segs)-1]
		return chainUse(segs[:len(segs)-1], names.UseTree{Kind: names.UseRename, Ident: last, Rename: alias}), true
	case "use_list":
		group := names.UseTree{Kind: names.UseGroup}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if sub, ok := useTree(ctx, node.NamedChild(i)); ok {
				group.Items = append(group.Items, sub)
			}
		}
		return group, true
	case "scoped_use_list":
		list, ok := useTree(ctx, node.ChildByFieldName("list"))
		if !ok {
			return names.UseTree{}, false
		}
		return chainUse(pathSegments(ctx, node.ChildByFieldName("path")), list), true
	case "use_wildcard":
		var segs []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child != nil && child.Kind() != "line_comment" && child.Kind() != "block_comment" {
				segs = pathSegments(ctx, child)
				break
			}
		}
		return chainUse(segs, names.UseTree{Kind: names.UseGlob}), true
	}
	return names.UseTree{}, false
}

func chainUse(segs []string, leaf names.UseTree) names.UseTree {
	tree := leaf
	for i := len(segs) - 1; i >= 0; i-- {
		next := tree
		tree = names.UseTree{Kind: names.UsePath, Ident: segs[i], Next: &next}
	}
	return tree
}

func pathSegments(ctx *ExtractionContext, node *sitter.Node) []string {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier", "self", "crate", "super", "metavariable":
		return []string{ctx.Text(node)}
	case "scoped_identifier":
		segs := pathSegments(ctx, node.ChildByFieldName("path"))
		return append(segs, ctx.FieldText(node, "name"))
	}
	return names.ParsePath(names.StripGenerics(ctx.Text(node))).Segments()
}
