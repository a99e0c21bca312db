package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/lwcgen/internal/cache"
	"github.com/recera/lwcgen/pkg/compiler"
)

const helloJSON = `{
  "@type": "@builder.io/mitosis/component",
  "name": "Hello",
  "children": [{"@type": "@builder.io/mitosis/node", "name": "div", "properties": {"_text": "Hello"}}]
}`

const helloYAML = `
name: Greeting
children:
  - name: p
    children:
      - name: div
        bindings:
          _text: {code: props.message}
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func rawOptions() compiler.Options {
	opts := compiler.DefaultOptions()
	opts.Prettier = false
	return opts
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.json", helloJSON)
	b := writeSource(t, dir, "nested/b.yaml", helloYAML)
	writeSource(t, dir, "notes.txt", "ignored")
	writeSource(t, dir, ".hidden/c.json", helloJSON)

	got, err := Discover([]string{dir, a})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if diff := cmp.Diff([]string{a, b}, got); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Discover([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("Discover() accepted a missing path")
	}
}

func TestCompileWritesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	r := New(Config{Options: rawOptions(), OutDir: out})

	for _, tt := range []struct {
		file, content, output, want string
	}{
		{"hello.json", helloJSON, "hello.lwc", "export default class Hello extends LightningElement"},
		{"greeting.yml", helloYAML, "greeting.lwc", "<p>{message}</p>"},
	} {
		t.Run(tt.file, func(t *testing.T) {
			res := r.Compile(writeSource(t, dir, tt.file, tt.content))
			if res.Err != nil {
				t.Fatalf("Compile() failed: %v", res.Err)
			}
			if res.Output != filepath.Join(out, tt.output) {
				t.Errorf("Output = %q", res.Output)
			}
			data, err := os.ReadFile(res.Output)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != res.Code || !strings.Contains(res.Code, tt.want) {
				t.Errorf("output lacks %q:\n%s", tt.want, data)
			}
		})
	}
}

func TestCompileUsesCache(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.New(cache.Config{Dir: filepath.Join(dir, "cache")})
	if err != nil {
		t.Fatal(err)
	}
	r := New(Config{Options: rawOptions(), OutDir: filepath.Join(dir, "out"), Cache: c})
	src := writeSource(t, dir, "hello.json", helloJSON)

	first := r.Compile(src)
	second := r.Compile(src)
	if first.Err != nil || second.Err != nil {
		t.Fatalf("Compile() failed: %v / %v", first.Err, second.Err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v then %v, want false then true", first.Cached, second.Cached)
	}
	if first.Code != second.Code {
		t.Error("cached output differs")
	}

	typed := rawOptions()
	typed.TypeScript = true
	if res := New(Config{Options: typed, OutDir: filepath.Join(dir, "out"), Cache: c}).Compile(src); res.Cached {
		t.Error("cache ignored a different option set")
	}
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeSource(t, dir, "a.json", helloJSON),
		writeSource(t, dir, "broken.json", "{"),
		writeSource(t, dir, "c.yaml", helloYAML),
		writeSource(t, dir, "bad-loop.json", `{"name": "L", "children": [{"name": "For"}]}`),
	}
	r := New(Config{Options: rawOptions(), OutDir: filepath.Join(dir, "out"), Jobs: 2})

	results, err := r.CompileAll(context.Background(), files)
	if err == nil {
		t.Fatal("CompileAll() reported no error")
	}
	if !errors.Is(err, compiler.ErrMissingChildren) {
		t.Errorf("joined error lacks the structural error: %v", err)
	}
	for i, res := range results {
		if res.Source != files[i] {
			t.Errorf("results[%d].Source = %q, want %q", i, res.Source, files[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("valid files failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil || results[3].Err == nil {
		t.Error("invalid files compiled")
	}
}

func TestCompileAllCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Config{Options: rawOptions(), OutDir: filepath.Join(dir, "out")})
	_, err := r.CompileAll(ctx, []string{writeSource(t, dir, "a.json", helloJSON)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CompileAll() error = %v, want context.Canceled", err)
	}
}

func TestWatchRecompiles(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.json", helloJSON)
	r := New(Config{Options: rawOptions(), OutDir: filepath.Join(dir, "out")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, []string{dir}, func(results []Result) { batches <- results })
	}()

	// give the watcher time to register before touching the file
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(src, []byte(strings.Replace(helloJSON, "Hello\"}", "Bye\"}", 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case results := <-batches:
		if len(results) != 1 || results[0].Err != nil {
			t.Fatalf("unexpected results: %+v", results)
		}
		if !strings.Contains(results[0].Code, "Bye") {
			t.Errorf("recompiled output lacks the change:\n%s", results[0].Code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no recompilation after a write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not stop after cancel")
	}
}
