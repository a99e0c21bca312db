package jsfmt

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrettyFormat(t *testing.T) {
	src := `<template>  <div  class="a b"  onclick={(event) => a > b}><p>Hello   world</p><img src="x.png"  /><ul><template for:each={items} for:item="item" key={item.id}><li>{item.name}</li></template></ul><slot></slot></div></template>
<script>
import { LightningElement } from 'lwc';
export default class A extends LightningElement {
count = 0;
connectedCallback() {
if (this.count) {
run(() => {
go();
});
}
}


}
</script>`

	want := strings.Join([]string{
		"<template>",
		`  <div class="a b" onclick={(event) => a > b}>`,
		"    <p>Hello world</p>",
		`    <img src="x.png" />`,
		"    <ul>",
		`      <template for:each={items} for:item="item" key={item.id}>`,
		"        <li>{item.name}</li>",
		"      </template>",
		"    </ul>",
		"    <slot></slot>",
		"  </div>",
		"</template>",
		"<script>",
		"  import { LightningElement } from 'lwc';",
		"  export default class A extends LightningElement {",
		"    count = 0;",
		"    connectedCallback() {",
		"      if (this.count) {",
		"        run(() => {",
		"          go();",
		"        });",
		"      }",
		"    }",
		"",
		"  }",
		"</script>",
		"",
	}, "\n")

	got, err := Pretty{}.Format(src, "html")
	if err != nil {
		t.Fatalf("Format() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyFormatErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		parser string
	}{
		{"mismatched", "<div><span></div>", "html"},
		{"unclosed", "<div><p>x</p>", "html"},
		{"stray close", "</div>", "html"},
		{"unterminated tag", `<div class="x`, "html"},
		{"unterminated comment", "<!-- x", "html"},
		{"tag inside text", "<p>a<b</p>", "html"},
		{"unknown parser", "<div></div>", "svelte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Pretty{}).Format(tt.src, tt.parser); err == nil {
				t.Error("Format() returned nil error")
			}
		})
	}
}

func TestPrettyFormatMarkup(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "stray brace in text",
			src:  "<div><p>open { brace</p><span>x</span></div>",
			want: []string{"<div>", "  <p>open { brace</p>", "  <span>x</span>", "</div>"},
		},
		{
			name: "braced attributes",
			src:  `<template if:true={a > b}><button onClick={(event) => setCount(event.target.value)}>Go</button><div use:styling={{color: c}}  class="x">{x < 1}</div></template>`,
			want: []string{
				"<template if:true={a > b}>",
				"  <button onClick={(event) => setCount(event.target.value)}>Go</button>",
				`  <div use:styling={{color: c}} class="x">{x < 1}</div>`,
				"</template>",
			},
		},
		{
			name: "quoted and bare attributes",
			src:  `<input disabled  value='say "hi"'><slot name="a"/>`,
			want: []string{`<input disabled value="say &quot;hi&quot;" />`, `<slot name="a" />`},
		},
		{
			name: "entities kept in text",
			src:  "<p>a &amp; b</p><!-- note -->",
			want: []string{"<p>a &amp; b</p>", "<!-- note -->"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pretty{}.Format(tt.src, "html")
			if err != nil {
				t.Fatalf("Format() failed: %v", err)
			}
			want := strings.Join(tt.want, "\n") + "\n"
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Format() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrettyFormatIsStable(t *testing.T) {
	src := "<template><div><span>{a < b}</span><br></div></template>"
	once, err := Pretty{}.Format(src, "html")
	if err != nil {
		t.Fatalf("Format() failed: %v", err)
	}
	twice, err := Pretty{}.Format(once, "html")
	if err != nil {
		t.Fatalf("second Format() failed: %v", err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("formatting is not idempotent (-once +twice):\n%s", diff)
	}
	if !strings.Contains(once, "<span>{a < b}</span>") {
		t.Errorf("braced text was split:\n%s", once)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("count = 0")
	if err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}
	if got != "count = 0;" {
		t.Errorf("Normalize() = %q, want %q", got, "count = 0;")
	}

	if got, err := Normalize("  \n "); got != "" || err != nil {
		t.Errorf("Normalize(blank) = %q, %v", got, err)
	}

	bad := "count = = 1"
	got, err = Normalize(bad)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("Normalize(%q) error = %v, want *SyntaxError", bad, err)
	}
	if got != bad {
		t.Errorf("Normalize() on bad input = %q, want input back", got)
	}
}

func TestNormalizeExpression(t *testing.T) {
	got, err := NormalizeExpression("{count: 0}")
	if err != nil {
		t.Fatalf("NormalizeExpression() failed: %v", err)
	}
	if !strings.HasPrefix(got, "{") || !strings.HasSuffix(got, "}") || !strings.Contains(got, "count: 0") {
		t.Errorf("NormalizeExpression() = %q", got)
	}
}

func TestIsVoidElement(t *testing.T) {
	for tag, want := range map[string]bool{"img": true, "br": true, "input": true, "div": false, "Input": false, "template": false} {
		if got := IsVoidElement(tag); got != want {
			t.Errorf("IsVoidElement(%q) = %v, want %v", tag, got, want)
		}
	}
}
