// Package names models qualified Rust paths, resolved names, visibility and
// flattened use bindings.
package names

import "strings"

const Sep = "::"

// Path is an immutable sequence of path segments. The zero value is the empty
// path, used for unresolved names.
type Path struct {
	segs []string
}

// ParsePath splits a `::` separated reference. Empty segments are dropped so
// a leading `::` is tolerated.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, Sep)
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segs = append(segs, p)
		}
	}
	return Path{segs: segs}
}

func NewPath(segs ...string) Path {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return Path{segs: out}
}

// Concat prefixes a onto b.
func Concat(a, b Path) Path {
	segs := make([]string, 0, len(a.segs)+len(b.segs))
	segs = append(segs, a.segs...)
	segs = append(segs, b.segs...)
	return Path{segs: segs}
}

func (p Path) String() string {
	return strings.Join(p.segs, Sep)
}

func (p Path) IsEmpty() bool {
	return len(p.segs) == 0
}

func (p Path) Len() int {
	return len(p.segs)
}

// Segments returns a copy of the segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segs))
	copy(out, p.segs)
	return out
}

func (p Path) First() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[0]
}

func (p Path) Last() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Path{}
	}
	n := len(p.segs) - 1
	return Path{segs: p.segs[:n:n]}
}

// Tail drops the first n segments.
func (p Path) Tail(n int) Path {
	if n >= len(p.segs) {
		return Path{}
	}
	end := len(p.segs)
	return Path{segs: p.segs[n:end:end]}
}

func (p Path) Append(segs ...string) Path {
	return Concat(p, NewPath(segs...))
}

func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	for i, s := range prefix.segs {
		if p.segs[i] != s {
			return false
		}
	}
	return true
}

func (p Path) Equal(o Path) bool {
	if len(p.segs) != len(o.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != o.segs[i] {
			return false
		}
	}
	return true
}
