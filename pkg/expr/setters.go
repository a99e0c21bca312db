package expr

import (
	"strings"
)

// UpdateStateSetters rewrites assignments to state members into setter
// calls:
//
//	state.count = event.target.value  ->  setCount(event.target.value)
//
// The right-hand side runs to the first top-level ';', ',', newline or
// unbalanced closing bracket. Comparisons, compound assignments and
// assignments to nested members (state.a.b = 1) are left untouched, as is
// anything inside string literals.
var UpdateStateSetters Rewriter = RewriteFunc(updateStateSetters)

func updateStateSetters(code string) string {
	var b strings.Builder
	i := 0
	for i < len(code) {
		c := code[i]
		if c == '\'' || c == '"' || c == '`' {
			end := skipString(code, i)
			b.WriteString(code[i:end])
			i = end
			continue
		}
		if c == 's' && (i == 0 || !isIdentByte(code[i-1]) && code[i-1] != '.') {
			if name, rhsStart, ok := matchAssignment(code, i); ok {
				rhsEnd := scanExpression(code, rhsStart)
				raw := code[rhsStart:rhsEnd]
				body := strings.TrimRight(raw, " \t\r")
				b.WriteString(SetterName(name))
				b.WriteByte('(')
				b.WriteString(updateStateSetters(strings.TrimSpace(body)))
				b.WriteByte(')')
				b.WriteString(raw[len(body):])
				i = rhsEnd
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// matchAssignment recognizes `state.<name> =` at i and returns the member
// name and the offset just past the '='.
func matchAssignment(code string, i int) (string, int, bool) {
	const prefix = "state"
	if !strings.HasPrefix(code[i:], prefix) {
		return "", 0, false
	}
	j := skipSpace(code, i+len(prefix))
	if j >= len(code) || code[j] != '.' {
		return "", 0, false
	}
	j = skipSpace(code, j+1)
	start := j
	for j < len(code) && isIdentByte(code[j]) {
		j++
	}
	if j == start {
		return "", 0, false
	}
	name := code[start:j]
	j = skipSpace(code, j)
	if j >= len(code) || code[j] != '=' {
		return "", 0, false
	}
	if j+1 < len(code) && (code[j+1] == '=' || code[j+1] == '>') {
		return "", 0, false
	}
	return name, j + 1, true
}

// scanExpression returns the end offset of the expression starting at i.
func scanExpression(code string, i int) int {
	depth := 0
	for i < len(code) {
		switch c := code[i]; c {
		case '\'', '"', '`':
			i = skipString(code, i)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return i
			}
			depth--
		case ';', ',', '\n':
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return i
}

// skipString returns the offset just past the string literal opening at i.
func skipString(code string, i int) int {
	quote := code[i]
	for j := i + 1; j < len(code); j++ {
		switch code[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(code)
}

func skipSpace(code string, i int) int {
	for i < len(code) && (code[i] == ' ' || code[i] == '\t') {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c >= 0x80
}
