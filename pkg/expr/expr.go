// Package expr holds the text-level rewrites the compiler applies to
// expression source.
//
// The rewrites match patterns on unparsed code. They are approximations:
// member chains such as a.state.b, or the words "state" and "props" inside
// string literals, are not understood. Callers depend on the Rewriter
// interface so a parser-backed implementation can replace them.
package expr

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rewriter transforms one expression.
type Rewriter interface {
	Rewrite(code string) string
}

// RewriteFunc adapts a plain function to Rewriter.
type RewriteFunc func(code string) string

// Rewrite calls f.
func (f RewriteFunc) Rewrite(code string) string { return f(code) }

type chain []Rewriter

func (c chain) Rewrite(code string) string {
	for _, r := range c {
		code = r.Rewrite(code)
	}
	return code
}

// Chain applies rewriters left to right.
func Chain(rs ...Rewriter) Rewriter {
	return chain(rs)
}

var (
	qualifierRe = regexp.MustCompile(`(^|[^\w$.])(?:state|props)\s*\.\s*`)
	thisRe      = regexp.MustCompile(`this\.([a-zA-Z_$0-9]+)`)
	attrNameRe  = regexp.MustCompile(`(?i)^[$a-z0-9\-_:]+$`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// StripStateAndProps removes the internal "state." and "props." qualifiers.
var StripStateAndProps Rewriter = RewriteFunc(func(code string) string {
	return qualifierRe.ReplaceAllString(code, "$1")
})

// StripThisRefs turns this.name into name.
var StripThisRefs Rewriter = RewriteFunc(func(code string) string {
	return thisRe.ReplaceAllString(code, "$1")
})

const slotPrefix = "slot"

// IsSlotProperty reports whether name follows the slot naming convention.
func IsSlotProperty(name string) bool {
	return strings.HasPrefix(name, slotPrefix)
}

// StripSlotPrefix removes the slot convention prefix.
func StripSlotPrefix(name string) string {
	if IsSlotProperty(name) {
		return name[len(slotPrefix):]
	}
	return name
}

// IsChildrenExpr reports whether code refers to the children placeholder.
func IsChildrenExpr(code string) bool {
	return spaceRe.ReplaceAllString(code, "") == "props.children"
}

// IsValidAttributeName reports whether key can be emitted as an attribute.
func IsValidAttributeName(key string) bool {
	return attrNameRe.MatchString(key)
}

// CollapseSpace replaces every whitespace run with a single space.
func CollapseSpace(code string) string {
	return spaceRe.ReplaceAllString(code, " ")
}

// SetterName returns the setter name for a state member: count -> setCount.
func SetterName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "set"
	}
	return "set" + string(unicode.ToUpper(r)) + name[size:]
}
