package names

// Name is an identifier as written plus the canonical path it resolves to.
type Name struct {
	Raw      string
	Resolved Path
}

func Unresolved(raw string) Name {
	return Name{Raw: raw}
}

func Resolved(raw string, p Path) Name {
	return Name{Raw: raw, Resolved: p}
}

func (n Name) IsResolved() bool {
	return !n.Resolved.IsEmpty()
}

func (n Name) IsZero() bool {
	return n.Raw == "" && n.Resolved.IsEmpty()
}

// SameAs reports whether both names resolve to the same canonical path.
// Unresolved names never match.
func (n Name) SameAs(o Name) bool {
	return n.IsResolved() && n.Resolved.Equal(o.Resolved)
}

// Canonical is the resolved path, or empty when unresolved.
func (n Name) Canonical() string {
	return n.Resolved.String()
}
