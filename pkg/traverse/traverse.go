// Package traverse walks the canonical component tree.
//
// Nodes may sit inside containers that are not nodes themselves (an else
// branch stored in a node's meta, a list of nodes inside a meta map), so the
// walker descends through components, nodes, node slices, maps and slices.
// Order is depth first with parents before children; a node reachable through
// two paths is visited once.
package traverse

import (
	"sort"

	"github.com/recera/lwcgen/pkg/ir"
)

// Action tells the walker how to continue after visiting a node.
type Action int

const (
	// Continue descends into the node's children and meta.
	Continue Action = iota
	// SkipChildren moves on to the next sibling.
	SkipChildren
	// Stop ends the walk.
	Stop
)

// Walk calls fn for every node reachable from root.
func Walk(root any, fn func(*ir.Node) Action) {
	w := &walker{fn: fn, seen: make(map[*ir.Node]struct{})}
	w.walk(root)
}

// Has reports whether any node reachable from root satisfies test. It stops
// at the first match.
func Has(root any, test func(*ir.Node) bool) bool {
	found := false
	Walk(root, func(n *ir.Node) Action {
		if test(n) {
			found = true
			return Stop
		}
		return Continue
	})
	return found
}

// Nodes returns every node reachable from root in visit order.
func Nodes(root any) []*ir.Node {
	var nodes []*ir.Node
	Walk(root, func(n *ir.Node) Action {
		nodes = append(nodes, n)
		return Continue
	})
	return nodes
}

type walker struct {
	fn   func(*ir.Node) Action
	seen map[*ir.Node]struct{}
}

// walk returns false once the visitor asked to stop.
func (w *walker) walk(v any) bool {
	switch t := v.(type) {
	case *ir.Component:
		if t == nil {
			return true
		}
		if !w.walk(t.Children) {
			return false
		}
		return w.walkMap(t.Meta)
	case *ir.Node:
		if t == nil {
			return true
		}
		if _, ok := w.seen[t]; ok {
			return true
		}
		w.seen[t] = struct{}{}
		switch w.fn(t) {
		case Stop:
			return false
		case SkipChildren:
			return true
		}
		if !w.walk(t.Children) {
			return false
		}
		return w.walkMap(t.Meta)
	case []*ir.Node:
		for _, n := range t {
			if !w.walk(n) {
				return false
			}
		}
	case []any:
		for _, item := range t {
			if !w.walk(item) {
				return false
			}
		}
	case map[string]any:
		return w.walkMap(t)
	}
	return true
}

func (w *walker) walkMap(m map[string]any) bool {
	if len(m) == 0 {
		return true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !w.walk(m[k]) {
			return false
		}
	}
	return true
}
