package names

// UseTreeKind mirrors the five shapes of a use tree.
type UseTreeKind int

const (
	UsePath UseTreeKind = iota
	UseName
	UseRename
	UseGlob
	UseGroup
)

// UseTree is the raw nested form of a `use` argument.
//
//	use a::{b, c as d, e::*};
//
// is Path(a, Group(Name(b), Rename(c, d), Path(e, Glob))).
type UseTree struct {
	Kind   UseTreeKind
	Ident  string
	Rename string
	Next   *UseTree
	Items  []UseTree
}

// UseBinding is one flattened import.
type UseBinding struct {
	// Local is the name bound in the importing scope. Globs bind "*".
	Local      string
	Target     Path
	Rename     string
	Visibility Visibility
	Glob       bool
	// Canonical is Target qualified against the crate, set once the whole
	// module tree is known. Extern targets keep their written form.
	Canonical Path
}

// ExpandUseTree flattens tree into bindings, depth first.
func ExpandUseTree(tree UseTree, vis Visibility) []UseBinding {
	var out []UseBinding
	expandUse(Path{}, tree, vis, &out)
	return out
}

func expandUse(prefix Path, tree UseTree, vis Visibility, out *[]UseBinding) {
	switch tree.Kind {
	case UsePath:
		if tree.Next == nil {
			return
		}
		expandUse(prefix.Append(tree.Ident), *tree.Next, vis, out)
	case UseName:
		if tree.Ident == "self" {
			if prefix.IsEmpty() {
				return
			}
			*out = append(*out, UseBinding{Local: prefix.Last(), Target: prefix, Visibility: vis})
			return
		}
		*out = append(*out, UseBinding{Local: tree.Ident, Target: prefix.Append(tree.Ident), Visibility: vis})
	case UseRename:
		target := prefix.Append(tree.Ident)
		if tree.Ident == "self" {
			target = prefix
		}
		if target.IsEmpty() {
			return
		}
		*out = append(*out, UseBinding{Local: tree.Rename, Target: target, Rename: tree.Rename, Visibility: vis})
	case UseGlob:
		*out = append(*out, UseBinding{Local: "*", Target: prefix, Visibility: vis, Glob: true})
	case UseGroup:
		for _, item := range tree.Items {
			expandUse(prefix, item, vis, out)
		}
	}
}
