package caseparse

import "strings"

// scanState tracks nesting while walking SQL text byte-by-byte: parenthesis
// and bracket depth plus whether the cursor sits inside a quoted region.
// Chained regular expressions cannot express this reliably, so splitting and
// keyword search run on top of this explicit state.
type scanState struct {
	depth    int  // ( and [ nesting
	inSingle bool // inside '...' with '' escapes
	inDouble bool // inside "..." with "" escapes
	inTick   bool // inside `...`
}

// step consumes s[i] and returns the index of the next byte to examine.
// Doubled quote escapes consume two bytes.
func (st *scanState) step(s string, i int) int {
	ch := s[i]
	switch {
	case st.inSingle:
		if ch == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				return i + 2
			}
			st.inSingle = false
		}
	case st.inDouble:
		if ch == '"' {
			if i+1 < len(s) && s[i+1] == '"' {
				return i + 2
			}
			st.inDouble = false
		}
	case st.inTick:
		if ch == '`' {
			st.inTick = false
		}
	default:
		switch ch {
		case '\'':
			st.inSingle = true
		case '"':
			st.inDouble = true
		case '`':
			st.inTick = true
		case '(', '[':
			st.depth++
		case ')', ']':
			st.depth--
		}
	}
	return i + 1
}

// top reports whether the cursor is at depth 0 outside every quoted region.
func (st *scanState) top() bool {
	return st.depth == 0 && !st.inSingle && !st.inDouble && !st.inTick
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// keywordAt reports whether word appears at s[i:] case-insensitively with
// identifier boundaries on both sides.
func keywordAt(s string, i int, word string) bool {
	if i+len(word) > len(s) {
		return false
	}
	if !strings.EqualFold(s[i:i+len(word)], word) {
		return false
	}
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	if j := i + len(word); j < len(s) && isIdentByte(s[j]) {
		return false
	}
	return true
}

// findKeyword returns the position of the first top-level occurrence of any
// of the given keywords at or after from, together with the matched keyword.
// Returns -1 when none occurs.
func findKeyword(s string, from int, words ...string) (int, string) {
	var st scanState
	i := 0
	for i < len(s) {
		if i >= from && st.top() {
			for _, w := range words {
				if keywordAt(s, i, w) {
					return i, w
				}
			}
		}
		i = st.step(s, i)
	}
	return -1, ""
}

// findSymbol returns the position of the first top-level occurrence of any
// of the given symbol operators (longest match wins at a given position).
func findSymbol(s string, symbols ...string) (int, string) {
	var st scanState
	i := 0
	for i < len(s) {
		if st.top() {
			match := ""
			for _, sym := range symbols {
				if strings.HasPrefix(s[i:], sym) && len(sym) > len(match) {
					match = sym
				}
			}
			if match != "" {
				return i, match
			}
		}
		i = st.step(s, i)
	}
	return -1, ""
}

// splitPart is one fragment of a top-level AND/OR split, tagged with the
// joiner that preceded it. The first part carries joiner "".
type splitPart struct {
	text   string
	joiner string
}

// splitJoined splits s into predicates on AND/OR occurring at depth 0 and
// outside string literals. Literals containing the keywords are never
// mis-split because the scanner skips quoted regions entirely.
func splitJoined(s string) []splitPart {
	var parts []splitPart
	var st scanState
	start, i := 0, 0
	joiner := ""
	for i < len(s) {
		if st.top() {
			matched := ""
			for _, w := range []string{"AND", "OR"} {
				if keywordAt(s, i, w) {
					matched = w
					break
				}
			}
			if matched != "" {
				parts = append(parts, splitPart{text: strings.TrimSpace(s[start:i]), joiner: joiner})
				joiner = matched
				i += len(matched)
				start = i
				continue
			}
		}
		i = st.step(s, i)
	}
	parts = append(parts, splitPart{text: strings.TrimSpace(s[start:]), joiner: joiner})
	return parts
}

// splitTopCommas splits s on commas at depth 0 outside string literals.
func splitTopCommas(s string) []string {
	var out []string
	var st scanState
	start, i := 0, 0
	for i < len(s) {
		if st.top() && s[i] == ',' {
			out = append(out, strings.TrimSpace(s[start:i]))
			i++
			start = i
			continue
		}
		i = st.step(s, i)
	}
	return append(out, strings.TrimSpace(s[start:]))
}

// stripOuterParens removes balanced outer parentheses that wrap the entire
// string, repeatedly, tracking depth rather than trusting first/last bytes.
func stripOuterParens(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && parenWrapsWhole(s) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// parenWrapsWhole reports whether the opening paren at s[0] matches the very
// last byte of s.
func parenWrapsWhole(s string) bool {
	var st scanState
	i := st.step(s, 0) // consume the opening paren
	for i < len(s) {
		i = st.step(s, i)
		if st.top() {
			// Depth just returned to zero: the matching close was the
			// byte before i.
			return i == len(s)
		}
	}
	return false
}
