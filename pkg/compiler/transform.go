package compiler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/recera/lwcgen/pkg/expr"
	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/traverse"
)

// The passes in this file rewrite the private clone in place, except
// collectRefs and collectProps which only read it.

// collectRefs returns the names bound to ref attributes in visit order.
func collectRefs(c *ir.Component) []string {
	var refs []string
	seen := map[string]bool{}
	traverse.Walk(c, func(n *ir.Node) traverse.Action {
		code := strings.TrimSpace(n.BindingCode("ref"))
		if code != "" && !seen[code] {
			seen[code] = true
			refs = append(refs, code)
		}
		return traverse.Continue
	})
	return refs
}

var blankRe = regexp.MustCompile(`\s+`)

func normalizeStatement(s string) string {
	s = blankRe.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return strings.TrimSuffix(s, ";")
}

// bindValues recognizes the two-way binding idiom
//
//	value={state.name} onChange={event => state.name = event.target.value}
//
// and drops the state qualifier from both sides.
func bindValues(c *ir.Component) {
	traverse.Walk(c, func(n *ir.Node) traverse.Action {
		value, change := n.Binding("value"), n.Binding("onChange")
		if value == nil || change == nil {
			return traverse.Continue
		}
		arg := "event"
		if len(change.Arguments) > 0 {
			arg = change.Arguments[0]
		}
		if normalizeStatement(change.Code) == normalizeStatement(value.Code)+"="+arg+".target.value" {
			value.Code = strings.Replace(value.Code, "state.", "", 1)
			change.Code = strings.Replace(change.Code, "state.", "", 1)
		}
		return traverse.Continue
	})
}

// gettersToFunctions turns reads of getters into calls, state.total into
// state.total(), because getters are emitted as arrow functions.
func gettersToFunctions(c *ir.Component) {
	var getters []*regexp.Regexp
	for pair := c.State.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != nil && pair.Value.Type == ir.StateGetter {
			getters = append(getters, regexp.MustCompile(`(^|[^\w$.])(state\s*\.\s*`+regexp.QuoteMeta(pair.Key)+`)\b`))
		}
	}
	if len(getters) == 0 {
		return
	}
	traverse.MapCode(c, func(code string) string {
		for _, re := range getters {
			code = callMatches(code, re)
		}
		return code
	})
}

func callMatches(code string, re *regexp.Regexp) string {
	var sb strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(code, -1) {
		end := m[5]
		rest := strings.TrimLeft(code[end:], " \t")
		if strings.HasPrefix(rest, "(") || end < len(code) && (code[end] == '$' || code[end] == '_') {
			continue
		}
		sb.WriteString(code[last:end])
		sb.WriteString("()")
		last = end
	}
	sb.WriteString(code[last:])
	return sb.String()
}

// stripMetaProperties removes the $-prefixed properties the parser uses to
// carry information for generators.
func stripMetaProperties(c *ir.Component) {
	traverse.Walk(c, func(n *ir.Node) traverse.Action {
		var keys []string
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if strings.HasPrefix(pair.Key, "$") {
				keys = append(keys, pair.Key)
			}
		}
		for _, k := range keys {
			n.Properties.Delete(k)
		}
		return traverse.Continue
	})
}

var propRefRe = regexp.MustCompile(`props\s*\.\s*([a-zA-Z0-9_$]+)`)

// collectProps returns the component's props: declared ones in order, then
// props with defaults, then every other props.<name> reference in the code.
// Slot props and children are left out.
func collectProps(c *ir.Component) []string {
	var props []string
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] || name == "children" || expr.IsSlotProperty(name) {
			return
		}
		seen[name] = true
		props = append(props, name)
	}

	for pair := c.Props.Oldest(); pair != nil; pair = pair.Next() {
		add(pair.Key)
	}
	defaults := make([]string, 0, len(c.DefaultProps))
	for name := range c.DefaultProps {
		defaults = append(defaults, name)
	}
	sort.Strings(defaults)
	for _, name := range defaults {
		add(name)
	}

	scan := func(code string) {
		for _, m := range propRefRe.FindAllStringSubmatch(code, -1) {
			add(m[1])
		}
	}
	traverse.EachCode(c, scan)
	for _, n := range traverse.Nodes(c) {
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			scan(pair.Value)
		}
	}
	return props
}
