package focal

import (
	"strings"

	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/symbols"
)

const maxNormalizeDepth = 8

// candidates splits what one raw reference may stand for. Own are the paths
// the reference itself names; Args are reached only through its generic
// arguments and never make the reference count as resolved.
type candidateSet struct {
	Own  []string
	Args []string
}

func (c candidateSet) all() []string {
	return append(append([]string(nil), c.Own...), c.Args...)
}

// Normalize rewrites one raw reference from the extractor into plain
// candidate names. Decorations such as `<A as B>::f`, `a::<impl S>::f`,
// generic argument lists and reference sigils are removed, `crate::` is
// replaced by the crate name, and every candidate not already rooted at the
// crate is also tried under each known scope path.
func (e *Engine) Normalize(raw string) []string {
	return e.candidates(raw, nil).all()
}

// candidates normalizes raw as written inside target. With a target, a
// single-segment generic argument naming one of its type parameters is
// dropped, and other single-segment arguments are only looked up in the
// target's own scope.
func (e *Engine) candidates(raw string, target *symbols.FunctionEntry) candidateSet {
	var out candidateSet
	seen := make(map[string]bool)
	add := func(list *[]string, s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		*list = append(*list, s)
	}
	crate := e.tables.CrateName
	fanOut := func(list *[]string, cand string) {
		cand = qualifyCrate(cand, crate)
		add(list, cand)
		if names.ParsePath(cand).First() == crate {
			return
		}
		for _, prefix := range e.tables.ScopePaths() {
			add(list, prefix+names.Sep+cand)
		}
	}

	own, args := plainForms(raw, 0)
	for _, cand := range own {
		fanOut(&out.Own, cand)
	}
	var params map[string]bool
	var scope string
	if target != nil {
		params = make(map[string]bool)
		for _, p := range target.TypeParams() {
			params[p] = true
		}
		scope = target.ScopePath().String()
	}
	for _, cand := range args {
		if target == nil || strings.Contains(cand, names.Sep) {
			fanOut(&out.Args, cand)
			continue
		}
		if params[cand] {
			continue
		}
		add(&out.Args, cand)
		if scope != "" {
			add(&out.Args, scope+names.Sep+cand)
		}
	}
	return out
}

func qualifyCrate(s, crate string) string {
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "self::"), "super::")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if s == "crate" {
		return crate
	}
	if rest, ok := strings.CutPrefix(s, "crate::"); ok {
		return crate + names.Sep + rest
	}
	return s
}

// plainForms returns the undecorated paths a raw reference stands for,
// split into the reference's own paths and those of its generic arguments.
func plainForms(raw string, depth int) (own, args []string) {
	s := trimSigils(raw)
	if s == "" || depth > maxNormalizeDepth {
		return nil, nil
	}
	if parts := splitTopLevel(s, '+'); len(parts) > 1 {
		return flatForms(parts, depth)
	}
	if strings.HasPrefix(s, "fn(") || strings.HasPrefix(s, "fn (") {
		return fnPointerForms(s, depth)
	}
	if s[0] == '(' || s[0] == '[' {
		inner := s[1:]
		if end := matching(s, 0); end > 0 {
			inner = s[1:end]
		}
		return flatForms(splitTopLevel(inner, ',', ';'), depth)
	}

	open := topLevelIndex(s, '<')
	if open < 0 {
		return []string{strings.Join(strings.Fields(s), "")}, nil
	}
	end := matching(s, open)
	if end < 0 {
		return []string{names.StripGenerics(s)}, nil
	}
	inner := strings.TrimSpace(s[open+1 : end])
	prefix := strings.TrimSuffix(s[:open], names.Sep)
	rest := strings.TrimPrefix(s[end+1:], names.Sep)

	if heads := qualifiedHeads(inner, open == 0); heads != nil {
		for _, head := range heads {
			headOwn, headArgs := plainForms(head, depth+1)
			args = append(args, headArgs...)
			for _, h := range headOwn {
				o, a := plainForms(joinPath(h, rest), depth+1)
				own, args = append(own, o...), append(args, a...)
			}
		}
		if prefix != "" && rest != "" {
			o, a := plainForms(joinPath(prefix, rest), depth+1)
			own, args = append(own, o...), append(args, a...)
		}
		return own, args
	}

	// Generic arguments: the bare path is the reference, each argument is
	// collected on its own.
	own, args = plainForms(prefix+s[end+1:], depth+1)
	for _, arg := range splitTopLevel(inner, ',') {
		if _, rhs, ok := cutTopLevel(arg, '='); ok {
			arg = rhs
		}
		o, a := plainForms(arg, depth+1)
		args = append(append(args, o...), a...)
	}
	return own, args
}

func flatForms(parts []string, depth int) (own, args []string) {
	for _, p := range parts {
		o, a := plainForms(p, depth+1)
		own, args = append(own, o...), append(args, a...)
	}
	return own, args
}

// fnPointerForms handles `fn(A, B) -> C`.
func fnPointerForms(s string, depth int) (own, args []string) {
	open := strings.IndexByte(s, '(')
	end := matching(s, open)
	if end < 0 {
		return nil, nil
	}
	own, args = flatForms(splitTopLevel(s[open+1:end], ','), depth)
	if _, ret, ok := strings.Cut(s[end+1:], "->"); ok {
		o, a := plainForms(ret, depth+1)
		own, args = append(own, o...), append(args, a...)
	}
	return own, args
}

// qualifiedHeads reports the type and trait named by a qualified segment:
// `impl T for S` gives [S, T], `A as B` gives [A, B]. A leading `<A>` is a
// qualified self type. Anything else is a generic argument list and yields
// nil.
func qualifiedHeads(inner string, leading bool) []string {
	if rest, ok := strings.CutPrefix(inner, "impl"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '<') {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "<") {
			if end := matching(rest, 0); end > 0 {
				rest = strings.TrimSpace(rest[end+1:])
			}
		}
		if trait, self, ok := cutTopLevelWord(rest, " for "); ok {
			return []string{self, trait}
		}
		return []string{rest}
	}
	if self, trait, ok := cutTopLevelWord(inner, " as "); ok {
		return []string{self, trait}
	}
	if leading {
		return []string{inner}
	}
	return nil
}

// trimSigils drops reference, pointer, lifetime and trait-object markers.
func trimSigils(s string) string {
	s = strings.TrimSpace(s)
	for {
		prev := s
		switch {
		case strings.HasPrefix(s, "&"):
			s = s[1:]
		case strings.HasPrefix(s, "'"):
			if i := strings.IndexAny(s, " ,>"); i >= 0 {
				s = s[i:]
			} else {
				s = ""
			}
		case strings.HasPrefix(s, "*const "):
			s = s[len("*const "):]
		case strings.HasPrefix(s, "*mut "):
			s = s[len("*mut "):]
		case strings.HasPrefix(s, "mut "):
			s = s[len("mut "):]
		case strings.HasPrefix(s, "dyn "):
			s = s[len("dyn "):]
		case strings.HasPrefix(s, "impl "):
			s = s[len("impl "):]
		}
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

func joinPath(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + names.Sep + b
}

// matching returns the index closing the bracket at open, or -1. The `>` of
// `->` never closes anything.
func matching(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']':
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return -1
}

// scan calls visit for every byte at bracket depth zero until visit returns
// false.
func scan(s string, visit func(i int) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			if depth == 0 && !visit(i) {
				return
			}
			depth++
			continue
		case '>':
			if i > 0 && s[i-1] == '-' {
				break
			}
			depth--
			continue
		case ')', ']':
			depth--
			continue
		}
		if depth == 0 && !visit(i) {
			return
		}
	}
}

func topLevelIndex(s string, ch byte) int {
	at := -1
	scan(s, func(i int) bool {
		if s[i] == ch {
			at = i
			return false
		}
		return true
	})
	return at
}

func splitTopLevel(s string, seps ...byte) []string {
	var parts []string
	last := 0
	scan(s, func(i int) bool {
		for _, sep := range seps {
			if s[i] == sep {
				parts = append(parts, s[last:i])
				last = i + 1
				break
			}
		}
		return true
	})
	return append(parts, s[last:])
}

func cutTopLevel(s string, sep byte) (string, string, bool) {
	i := topLevelIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func cutTopLevelWord(s, word string) (string, string, bool) {
	at := -1
	scan(s, func(i int) bool {
		if strings.HasPrefix(s[i:], word) {
			at = i
			return false
		}
		return true
	})
	if at < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:at]), strings.TrimSpace(s[at+len(word):]), true
}
