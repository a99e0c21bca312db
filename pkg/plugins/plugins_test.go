package plugins

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/lwcgen/pkg/ir"
)

func TestRunCodeOrder(t *testing.T) {
	ps := []Plugin{
		{Name: "a", CodePre: func(s string) (string, error) { return s + "a", nil }},
		{Name: "skip"},
		{Name: "b", CodePre: func(s string) (string, error) { return s + "b", nil }, CodePost: func(s string) (string, error) { return strings.ToUpper(s), nil }},
	}
	got, err := RunPreCode("x", ps)
	if err != nil || got != "xab" {
		t.Errorf("RunPreCode() = %q, %v; want xab", got, err)
	}
	got, err = RunPostCode("xab", ps)
	if err != nil || got != "XAB" {
		t.Errorf("RunPostCode() = %q, %v; want XAB", got, err)
	}
}

func TestRunJSON(t *testing.T) {
	original := ir.NewComponent("Original")
	replacement := ir.NewComponent("Replacement")

	var seen []string
	ps := []Plugin{
		{JSONPre: func(c *ir.Component) (*ir.Component, error) {
			seen = append(seen, c.Name)
			c.Name = "Mutated"
			return nil, nil
		}},
		{JSONPre: func(c *ir.Component) (*ir.Component, error) {
			seen = append(seen, c.Name)
			return replacement, nil
		}},
		{JSONPost: func(c *ir.Component) (*ir.Component, error) {
			t.Error("post hook ran during the pre stage")
			return c, nil
		}},
	}
	got, err := RunPreJSON(original, ps)
	if err != nil {
		t.Fatalf("RunPreJSON() failed: %v", err)
	}
	if got != replacement {
		t.Errorf("RunPreJSON() returned %q, want the replacement", got.Name)
	}
	if diff := cmp.Diff([]string{"Original", "Mutated"}, seen); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunErrorsNamePlugin(t *testing.T) {
	boom := errors.New("boom")
	ps := []Plugin{
		{Name: "ok", JSONPost: func(c *ir.Component) (*ir.Component, error) { return c, nil }},
		{Name: "broken", JSONPost: func(*ir.Component) (*ir.Component, error) { return nil, boom }},
	}
	_, err := RunPostJSON(ir.NewComponent("A"), ps)
	if !errors.Is(err, boom) {
		t.Fatalf("RunPostJSON() error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the plugin", err)
	}

	_, err = RunPreCode("", []Plugin{{CodePre: func(string) (string, error) { return "", boom }}})
	if err == nil || !strings.Contains(err.Error(), "plugin #0") {
		t.Errorf("RunPreCode() error = %v, want positional plugin label", err)
	}
}

func TestFunctionDeclarations(t *testing.T) {
	c := ir.NewComponent("A")
	c.SetState("count", "0", ir.StateProperty)
	c.SetState("inc", "inc() { state.count++ }", ir.StateMethod)
	c.SetState("load", "async load() { await fetch(url) }", ir.StateMethod)
	c.SetState("done", "function done() {}", ir.StateMethod)
	c.SetState("arrow", "() => 1", ir.StateFunction)

	p := FunctionDeclarations()
	if _, err := RunPreJSON(c, []Plugin{p}); err != nil {
		t.Fatalf("RunPreJSON() failed: %v", err)
	}

	want := map[string]string{
		"count": "0",
		"inc":   "function inc() { state.count++ }",
		"load":  "async function load() { await fetch(url) }",
		"done":  "function done() {}",
		"arrow": "() => 1",
	}
	got := map[string]string{}
	for pair := c.State.Oldest(); pair != nil; pair = pair.Next() {
		got[pair.Key] = pair.Value.Code
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}
