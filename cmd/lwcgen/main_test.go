package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recera/lwcgen/cmd/lwcgen/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"src/card.json": `{"name": "card", "children": [{"name": "div", "properties": {"class": "card"}}]}`,
		"src/list.yaml": "name: List\nchildren:\n  - name: ul\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.DefaultConfig()
	cfg.OutDir = filepath.Join(dir, "out")
	cfg.Include = []string{src}
	cfg.Cache.Enabled = false
	cfgPath = filepath.Join(dir, "lwcgen.yaml")
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}
	return dir, cfgPath
}

func TestCompileCommand(t *testing.T) {
	dir, cfgPath := writeProject(t)

	stdout, stderr, err := execute(t, "compile", "--config", cfgPath, "--typescript")
	if err != nil {
		t.Fatalf("compile failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "2 compiled, 0 failed") {
		t.Errorf("summary missing:\n%s", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", "card.lwc"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "class Card extends LightningElement") || !strings.Contains(string(data), `lang="ts"`) {
		t.Errorf("unexpected output:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "list.lwc")); err != nil {
		t.Errorf("yaml component not compiled: %v", err)
	}
}

func TestCompileCommandFailure(t *testing.T) {
	dir, cfgPath := writeProject(t)
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name": "bad", "children": [{"name": "Show"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "compile", "--config", cfgPath, bad)
	if err == nil {
		t.Fatal("compile reported success for a broken component")
	}
	if !strings.Contains(stderr, "bad.json") {
		t.Errorf("failure not reported:\n%s", stderr)
	}
}

func TestCompileCommandRejectsBadFlags(t *testing.T) {
	_, cfgPath := writeProject(t)
	if _, _, err := execute(t, "compile", "--config", cfgPath, "--state-type", "signals"); err == nil {
		t.Error("unknown state type accepted")
	}
	if _, _, err := execute(t, "compile", "--config", cfgPath, "--jobs", "0"); err == nil {
		t.Error("zero jobs accepted")
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lwcgen.yaml")

	stdout, _, err := execute(t, "init", "--no-interactive", "--file", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(stdout, "wrote") {
		t.Errorf("no confirmation:\n%s", stdout)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("written config unreadable: %v", err)
	}
	if cfg.OutDir != config.DefaultConfig().OutDir {
		t.Errorf("OutDir = %q", cfg.OutDir)
	}

	if _, _, err := execute(t, "init", "--no-interactive", "--file", path); err == nil {
		t.Error("init overwrote an existing file without --force")
	}
	if _, _, err := execute(t, "init", "--no-interactive", "--force", "--file", path); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}
