package names

import "strings"

type VisibilityKind int

const (
	Private VisibilityKind = iota
	Public
	Crate
	InPath
)

type Visibility struct {
	Kind VisibilityKind
	// Path is set for InPath. It is relative as written (`super`, `crate::a`)
	// until the module tree qualifies it.
	Path Path
}

// ParseVisibility reads a visibility_modifier as written in source.
func ParseVisibility(raw string) Visibility {
	s := strings.Join(strings.Fields(raw), "")
	switch {
	case s == "":
		return Visibility{Kind: Private}
	case s == "pub":
		return Visibility{Kind: Public}
	case s == "crate", s == "pub(crate)":
		return Visibility{Kind: Crate}
	case s == "pub(self)":
		return Visibility{Kind: Private}
	case s == "pub(super)":
		return Visibility{Kind: InPath, Path: NewPath("super")}
	case strings.HasPrefix(s, "pub(in") && strings.HasSuffix(s, ")"):
		return Visibility{Kind: InPath, Path: ParsePath(strings.TrimSuffix(strings.TrimPrefix(s, "pub(in"), ")"))}
	}
	return Visibility{Kind: Public}
}

func (v Visibility) IsPrivate() bool {
	return v.Kind == Private
}

func (v Visibility) String() string {
	switch v.Kind {
	case Public:
		return "pub"
	case Crate:
		return "pub(crate)"
	case InPath:
		return "pub(in " + v.Path.String() + ")"
	}
	return ""
}
