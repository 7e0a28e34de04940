package names

// StripGenerics removes every balanced <...> group and a turbofish `::`
// before it, plus whitespace: `a::Vec::<T>` and `a::Vec<T>` become `a::Vec`.
func StripGenerics(s string) string {
	out := make([]byte, 0, len(s))
	depth := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '<':
			if depth == 0 {
				out = trimTurbofish(out)
			}
			depth++
		case ch == '>' && depth > 0:
			depth--
		case depth > 0:
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(trimTurbofish(out))
}

func trimTurbofish(b []byte) []byte {
	if n := len(b); n >= 2 && b[n-1] == ':' && b[n-2] == ':' {
		return b[:n-2]
	}
	return b
}
