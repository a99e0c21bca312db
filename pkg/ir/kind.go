package ir

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Kind is the closed set of node variants the compiler dispatches on.
type Kind int

const (
	KindGeneric Kind = iota
	KindFragment
	KindFor
	KindShow
	KindSlot
)

func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "Fragment"
	case KindFor:
		return "For"
	case KindShow:
		return "Show"
	case KindSlot:
		return "Slot"
	default:
		return "Generic"
	}
}

// KindOf resolves the variant of a node from its name.
func KindOf(n *Node) Kind {
	switch n.Name {
	case "Fragment":
		return KindFragment
	case "For":
		return KindFor
	case "Show":
		return KindShow
	case "Slot":
		return KindSlot
	default:
		return KindGeneric
	}
}

// IsComponentTag reports whether name refers to a custom component, which
// by convention starts with an uppercase letter.
func IsComponentTag(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// Arguments returns the loop parameter names of a For node: the item name
// (defaulting to "_"), the index name when present and, unless excluded,
// the collection name.
func (s Scope) Arguments(excludeCollection bool) []string {
	item := s.ForName
	if item == "" {
		item = "_"
	}
	args := []string{item}
	if s.IndexName != "" {
		args = append(args, s.IndexName)
	}
	if !excludeCollection && s.CollectionName != "" {
		args = append(args, s.CollectionName)
	}
	return args
}

// ConflictError reports a key governed by both a static property and a
// binding.
type ConflictError struct {
	Node string
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("<%s> has both a static property and a binding for %q", e.Node, e.Key)
}

// Validate checks the node-local invariants of the canonical form.
func (n *Node) Validate() error {
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := n.Bindings.Get(pair.Key); ok {
			return &ConflictError{Node: n.Name, Key: pair.Key}
		}
	}
	return nil
}
