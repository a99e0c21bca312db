package traverse

import (
	"sort"

	"github.com/recera/lwcgen/pkg/ir"
)

// EachCode calls fn with every expression string held by the component:
// state code, hook bodies and deps, provided context values, and the code of
// every binding in the tree.
func EachCode(c *ir.Component, fn func(code string)) {
	visitCode(c, func(code *string) {
		fn(*code)
	})
}

// MapCode replaces every expression string of the component in place with
// fn's result. Static properties are left alone.
func MapCode(c *ir.Component, fn func(code string) string) {
	visitCode(c, func(code *string) {
		*code = fn(*code)
	})
}

func visitCode(c *ir.Component, fn func(*string)) {
	for pair := c.State.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != nil {
			fn(&pair.Value.Code)
		}
	}

	hooks := []*ir.Hook{c.Hooks.OnInit, c.Hooks.OnMount}
	for i := range c.Hooks.OnUpdate {
		hooks = append(hooks, &c.Hooks.OnUpdate[i])
	}
	hooks = append(hooks, c.Hooks.OnUnmount)
	for _, h := range hooks {
		if h == nil {
			continue
		}
		fn(&h.Code)
		if h.Deps != "" {
			fn(&h.Deps)
		}
	}

	keys := make([]string, 0, len(c.Context.Set))
	for k := range c.Context.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set := c.Context.Set[k]
		if set.Value == "" {
			continue
		}
		fn(&set.Value)
		c.Context.Set[k] = set
	}

	Walk(c, func(n *ir.Node) Action {
		for pair := n.Bindings.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value != nil {
				fn(&pair.Value.Code)
			}
		}
		return Continue
	})
}
