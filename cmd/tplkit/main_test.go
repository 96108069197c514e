package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplkit/internal/output"
)

// writeWorkspace lays out a plugin with a theme override and returns the
// config path.
func writeWorkspace(t *testing.T) (root, configPath string) {
	t.Helper()
	root = t.TempDir()
	files := map[string]string{
		"plugins/test/layouts/widget.php":  `plugin {{ the("first") }}`,
		"plugins/test/layouts/card.php":    `plugin card`,
		"themes/active/my-plugin/card.php": `theme card {{ the("first", "-") }}`,
		"plugins/test/tmp/test/note.php":   `note`,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := `base_dir: ` + filepath.Join(root, "plugins", "test") + `
base_url: https://site/test/
storages:
  test: tmp/test
theme:
  plugin_folder: layouts
  theme_folder: my-plugin
  dir: ` + filepath.Join(root, "themes", "active") + `
  url: https://site/themes/active
`
	configPath = filepath.Join(root, "tplkit.yaml")
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root, configPath
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "1.2.3") || !strings.Contains(out, "tplkit") {
		t.Errorf("--version output should contain name and version: %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	_, configPath := writeWorkspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plugin fallback", []string{"render", "templates", "widget", "--var", "first=X"}, "plugin X"},
		{"theme override", []string{"render", "templates", "card"}, "theme card -"},
		{"plain storage", []string{"render", "test", "note"}, "note"},
		{"explicit engine", []string{"render", "templates", "widget", "--var", "first=Y", "--engine", "pongo"}, "plugin Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := execute(t, append([]string{"--config", configPath}, tt.args...)...)
			if err != nil {
				t.Fatalf("render: %v (stderr %q)", err, stderr)
			}
			if out != tt.want {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRenderCommand_OutputFile(t *testing.T) {
	root, configPath := writeWorkspace(t)
	target := filepath.Join(root, "out", "widget.html")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, _, err := execute(t, "--config", configPath, "--json", "render", "templates", "widget", "--var", "first=Z", "--output", target)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "plugin Z" {
		t.Fatalf("unexpected file content %q", data)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if result["path"] != target || result["bytes"] != float64(len("plugin Z")) {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestRenderCommand_Prompt(t *testing.T) {
	_, configPath := writeWorkspace(t)
	var asked []string

	opts := &globalOptions{configPath: configPath}
	cmd := newRenderCmdInternal(opts, func(key, _ string) (string, error) {
		asked = append(asked, key)
		return "asked-" + key, nil
	})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"templates", "widget", "--prompt", "first", "--prompt", "other", "--var", "other=set"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"first"}, asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
	if stdout.String() != "plugin asked-first" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	_, configPath := writeWorkspace(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"missing template", []string{"--config", configPath, "render", "templates", "absent"}, output.ExitUserError},
		{"unknown storage", []string{"--config", configPath, "render", "nope", "widget"}, output.ExitUserError},
		{"bad var", []string{"--config", configPath, "render", "templates", "widget", "--var", "novalue"}, output.ExitUserError},
		{"bad engine", []string{"--config", configPath, "render", "templates", "widget", "--engine", "php"}, output.ExitUserError},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "render", "templates", "widget"}, output.ExitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("expected error")
			}
			var exitErr *output.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected ExitError, got %T %v", err, err)
			}
			if got := output.GetExitCode(err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", got, tt.wantCode)
			}
			if !strings.Contains(stderr, "Error:") {
				t.Fatalf("expected styled error on stderr, got %q", stderr)
			}
		})
	}
}

func TestResolveCommand_JSON(t *testing.T) {
	root, configPath := writeWorkspace(t)

	out, _, err := execute(t, "--config", configPath, "--json", "resolve", "templates", "card")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"storage": "templates",
		"name":    "card",
		"path":    filepath.Join(root, "themes", "active", "my-plugin", "card.php"),
		"exists":  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestStoragesCommand(t *testing.T) {
	root, configPath := writeWorkspace(t)

	out, _, err := execute(t, "--config", configPath, "--json", "storages")
	if err != nil {
		t.Fatalf("storages: %v", err)
	}
	var got struct {
		Storages []storageRow `json:"storages"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []storageRow{
		{Name: "templates", Path: filepath.Join(root, "plugins", "test", "layouts"), URL: "https://site/test/layouts"},
		{Name: "test", Path: filepath.Join(root, "plugins", "test", "tmp", "test"), URL: "https://site/test/tmp/test"},
		{Name: "theme", Path: filepath.Join(root, "themes", "active", "my-plugin"), URL: "https://site/themes/active/my-plugin"},
	}
	if diff := cmp.Diff(want, got.Storages); diff != "" {
		t.Fatalf("storages mismatch (-want +got):\n%s", diff)
	}

	human, _, err := execute(t, "--config", configPath, "--color", "never", "storages")
	if err != nil {
		t.Fatalf("storages: %v", err)
	}
	if !strings.HasPrefix(human, "NAME") || !strings.Contains(human, "my-plugin") {
		t.Fatalf("unexpected table %q", human)
	}
}

func TestParseVars(t *testing.T) {
	got, err := parseVars([]string{"a=1", "b=x=y", "a=2", "empty="})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "2", "b": "x=y", "empty": ""}, got); diff != "" {
		t.Fatalf("vars mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseVars([]string{"=v"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
