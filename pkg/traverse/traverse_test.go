package traverse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/lwcgen/pkg/ir"
)

func sampleComponent() *ir.Component {
	alt := ir.NewNode("p").SetBinding("_text", "state.fallback")
	show := ir.NewNode("Show").SetBinding("when", "state.open").
		Append(ir.NewNode("span").Append(ir.BoundText("props.label"))).
		SetElse(alt)
	list := ir.NewNode("ul").Append(
		ir.NewNode("For").SetBinding("each", "state.items").Append(
			ir.NewNode("li").SetBinding("key", "item.id"),
		),
	)
	c := ir.NewComponent("Sample").Append(show, list)
	c.SetState("open", "true", ir.StateProperty)
	c.Hooks.OnMount = &ir.Hook{Code: "console.log(state.open)"}
	c.Hooks.OnUpdate = []ir.Hook{{Code: "track(state.items)", Deps: "[state.items]"}}
	c.Context.Set["theme"] = ir.ContextSet{Name: "ThemeContext", Value: "state.theme"}
	return c
}

func names(nodes []*ir.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestNodesOrder(t *testing.T) {
	got := names(Nodes(sampleComponent()))
	want := []string{"Show", "span", "div", "p", "ul", "For", "li"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Nodes() mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkSkipAndStop(t *testing.T) {
	c := sampleComponent()

	var visited []string
	Walk(c, func(n *ir.Node) Action {
		visited = append(visited, n.Name)
		if n.Name == "Show" {
			return SkipChildren
		}
		return Continue
	})
	if diff := cmp.Diff([]string{"Show", "ul", "For", "li"}, visited); diff != "" {
		t.Errorf("SkipChildren mismatch (-want +got):\n%s", diff)
	}

	visited = nil
	Walk(c, func(n *ir.Node) Action {
		visited = append(visited, n.Name)
		if n.Name == "span" {
			return Stop
		}
		return Continue
	})
	if diff := cmp.Diff([]string{"Show", "span"}, visited); diff != "" {
		t.Errorf("Stop mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkVisitsSharedNodeOnce(t *testing.T) {
	shared := ir.NewNode("b")
	root := ir.NewNode("div").Append(shared)
	root.Meta["extra"] = []any{shared, map[string]any{"again": shared}}

	count := 0
	Walk(root, func(n *ir.Node) Action {
		if n == shared {
			count++
		}
		return Continue
	})
	if count != 1 {
		t.Errorf("shared node visited %d times, want 1", count)
	}
}

func TestHas(t *testing.T) {
	c := sampleComponent()
	tests := []struct {
		name string
		test func(*ir.Node) bool
		want bool
	}{
		{"node in else branch", func(n *ir.Node) bool { return n.Name == "p" }, true},
		{"binding inside loop", func(n *ir.Node) bool { return n.Binding("key") != nil }, true},
		{"spread", func(n *ir.Node) bool { return n.Binding("_spread") != nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Has(c, tt.test); got != tt.want {
				t.Errorf("Has() = %v, want %v", got, tt.want)
			}
		})
	}

	calls := 0
	Has(c, func(n *ir.Node) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("Has() kept walking after a match: %d calls", calls)
	}
}

func TestMapCode(t *testing.T) {
	c := sampleComponent()
	MapCode(c, func(code string) string { return "<" + code + ">" })

	if got := c.Children[0].BindingCode("when"); got != "<state.open>" {
		t.Errorf("when = %q", got)
	}
	if got := c.Children[0].Else().BindingCode("_text"); got != "<state.fallback>" {
		t.Errorf("else text = %q", got)
	}
	if got := c.Hooks.OnUpdate[0].Deps; got != "<[state.items]>" {
		t.Errorf("deps = %q", got)
	}
	if got := c.Context.Set["theme"].Value; got != "<state.theme>" {
		t.Errorf("context value = %q", got)
	}
	if got, _ := c.State.Get("open"); got.Code != "<true>" {
		t.Errorf("state code = %q", got.Code)
	}

	var all []string
	EachCode(c, func(code string) { all = append(all, code) })
	if len(all) != 10 {
		t.Errorf("EachCode() visited %d strings, want 10: %v", len(all), all)
	}
}
