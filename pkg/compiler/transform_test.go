package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/lwcgen/pkg/ir"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"integer", float64(42), "42"},
		{"large integer", float64(1000000), "1000000"},
		{"fraction", 0.5, "0.5"},
		{"string", "hi", "'hi'"},
		{"string with apostrophe", "it's", `"it's"`},
		{"escapes", "a\nb\\c", `'a\nb\\c'`},
		{"array", []any{float64(1), "x", nil}, "[1,'x',null]"},
		{"object", map[string]any{"b": float64(1), "a-b": "x", "$ok": false}, "{$ok:false,'a-b':'x',b:1}"},
		{"nested", map[string]any{"list": []any{map[string]any{"k": "v"}}}, "{list:[{k:'v'}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Literal(tt.in); got != tt.want {
				t.Errorf("Literal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCollectProps(t *testing.T) {
	c := ir.NewComponent("P").Append(
		ir.NewNode("div").SetBinding("title", "props.title").Append(
			ir.BoundText("props.children"),
			ir.BoundText("props.slotHeader"),
		),
	)
	c.Props.Set("size", &ir.Prop{})
	c.DefaultProps = map[string]any{"color": "red", "size": float64(1)}
	c.Hooks.OnMount = &ir.Hook{Code: "track(props.id, props . title)"}

	want := []string{"size", "color", "id", "title"}
	if diff := cmp.Diff(want, collectProps(c)); diff != "" {
		t.Errorf("collectProps() mismatch (-want +got):\n%s", diff)
	}
}

func TestGettersToFunctions(t *testing.T) {
	c := ir.NewComponent("G").Append(
		ir.BoundText("state.total + state.totalCount"),
		ir.NewNode("div").SetBinding("title", "state.total()").SetBinding("data-x", "other.state.total"),
	)
	c.SetState("total", "get total() { return 1 }", ir.StateGetter)
	c.SetState("totalCount", "2", ir.StateProperty)
	c.Hooks.OnMount = &ir.Hook{Code: "log(state.total)"}

	gettersToFunctions(c)

	if got := c.Children[0].BindingCode("_text"); got != "state.total() + state.totalCount" {
		t.Errorf("text = %q", got)
	}
	if got := c.Children[1].BindingCode("title"); got != "state.total()" {
		t.Errorf("existing call rewritten: %q", got)
	}
	if got := c.Children[1].BindingCode("data-x"); got != "other.state.total" {
		t.Errorf("nested member rewritten: %q", got)
	}
	if got := c.Hooks.OnMount.Code; got != "log(state.total())" {
		t.Errorf("hook = %q", got)
	}
}

func TestBindValues(t *testing.T) {
	matching := ir.NewNode("input").
		SetBinding("value", "state.name").
		SetBinding("onChange", "state.name = e.target.value", "e")
	other := ir.NewNode("input").
		SetBinding("value", "state.name").
		SetBinding("onChange", "state.other = event.target.value")
	c := ir.NewComponent("B").Append(matching, other)

	bindValues(c)

	if got := matching.BindingCode("value"); got != "name" {
		t.Errorf("value = %q", got)
	}
	if got := matching.BindingCode("onChange"); got != "name = e.target.value" {
		t.Errorf("onChange = %q", got)
	}
	if got := other.BindingCode("value"); got != "state.name" {
		t.Errorf("unrelated handler changed value to %q", got)
	}
}

func TestCollectRefsAndStripMeta(t *testing.T) {
	c := ir.NewComponent("R").Append(
		ir.NewNode("input").SetBinding("ref", "inputRef").SetProperty("$tagName", "x").SetProperty("id", "a"),
		ir.NewNode("Show").SetBinding("when", "true").SetElse(ir.NewNode("canvas").SetBinding("ref", "canvasRef")),
		ir.NewNode("input").SetBinding("ref", "inputRef"),
	)
	if diff := cmp.Diff([]string{"inputRef", "canvasRef"}, collectRefs(c)); diff != "" {
		t.Errorf("collectRefs() mismatch (-want +got):\n%s", diff)
	}

	stripMetaProperties(c)
	if _, ok := c.Children[0].Property("$tagName"); ok {
		t.Error("meta property kept")
	}
	if _, ok := c.Children[0].Property("id"); !ok {
		t.Error("regular property removed")
	}
}

func TestClassName(t *testing.T) {
	for in, want := range map[string]string{
		"Hello":        "Hello",
		"profile-card": "ProfileCard",
		"my_widget":    "My_widget",
		"":             "MyComponent",
		"2fa-form":     "_2faForm",
	} {
		if got := className(in); got != want {
			t.Errorf("className(%q) = %q, want %q", in, got, want)
		}
	}
}
