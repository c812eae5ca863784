package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/termdesk/internal/config"
	"github.com/1broseidon/termdesk/internal/store"
)

func runFSCommand(t *testing.T, client *store.Client, stdin string, args ...string) (code int, changed bool, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code, changed = fsCommand(context.Background(), client, args[0], args[1:], strings.NewReader(stdin), &out, &errOut)
	return code, changed, out.String(), errOut.String()
}

func TestFSCommandRoundTrip(t *testing.T) {
	client := store.NewClient(store.NewMemBackend())

	if code, changed, _, errOut := runFSCommand(t, client, "", "write", "notes/todo.txt", "milk"); code != 0 || !changed {
		t.Fatalf("write rc=%d changed=%v stderr=%q", code, changed, errOut)
	}
	if code, _, _, _ := runFSCommand(t, client, "from stdin", "write", "memo.txt"); code != 0 {
		t.Fatalf("write from stdin rc=%d", code)
	}
	if code, changed, _, _ := runFSCommand(t, client, "", "mkdir", "archive"); code != 0 || !changed {
		t.Fatalf("mkdir rc=%d changed=%v", code, changed)
	}

	code, changed, out, _ := runFSCommand(t, client, "", "ls")
	if code != 0 || changed {
		t.Fatalf("ls rc=%d changed=%v", code, changed)
	}
	if out != "archive/\nnotes/\nmemo.txt\n" {
		t.Fatalf("ls output = %q", out)
	}

	if _, _, out, _ := runFSCommand(t, client, "", "cat", "memo.txt"); out != "from stdin\n" {
		t.Fatalf("cat output = %q", out)
	}

	if code, _, _, _ := runFSCommand(t, client, "", "mv", "notes/todo.txt", "archive/todo.txt"); code != 0 {
		t.Fatalf("mv rc=%d", code)
	}
	if _, _, out, _ := runFSCommand(t, client, "", "ls", "archive"); out != "todo.txt\n" {
		t.Fatalf("archive listing = %q", out)
	}

	if code, changed, _, _ := runFSCommand(t, client, "", "rm", "notes"); code != 0 || !changed {
		t.Fatalf("rm rc=%d changed=%v", code, changed)
	}
	if client.Exists(context.Background(), "", "notes") {
		t.Fatalf("notes should be deleted")
	}
}

func TestFSCommandErrors(t *testing.T) {
	client := store.NewClient(store.NewMemBackend())
	ctx := context.Background()
	client.Write(ctx, "a.txt", "a")
	client.Write(ctx, "b.txt", "b")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown command", []string{"touch", "x"}, 2},
		{"cat without path", []string{"cat"}, 2},
		{"mv with one arg", []string{"mv", "a.txt"}, 2},
		{"cat missing file", []string{"cat", "nope.txt"}, 1},
		{"mv onto existing", []string{"mv", "a.txt", "b.txt"}, 1},
		{"escape sandbox", []string{"cat", "../../etc/passwd"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, changed, _, errOut := runFSCommand(t, client, "", tt.args...)
			if code != tt.want || changed {
				t.Fatalf("rc=%d changed=%v, want rc=%d unchanged", code, changed, tt.want)
			}
			if errOut == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
	if res := client.Read(ctx, "b.txt"); res.Value != "b" {
		t.Fatalf("b.txt was overwritten")
	}
}

func TestRunFSUsesConfiguredSandbox(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	sandbox := t.TempDir()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("sandbox_root: "+sandbox+"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if rc := runFS([]string{"write", "--path", cfgPath, "hello.txt", "hi"}); rc != 0 {
		t.Fatalf("runFS write rc=%d, want 0", rc)
	}
	data, err := os.ReadFile(filepath.Join(sandbox, "hello.txt"))
	if err != nil {
		t.Fatalf("read sandbox file: %v", err)
	}
	if string(data) != "hi" {
		t.Fatalf("content = %q", data)
	}
	if rc := runFS(nil); rc != 2 {
		t.Fatalf("runFS without args rc=%d, want 2", rc)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARNING ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := slogLevel(tt.in); got != tt.want {
			t.Fatalf("slogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceBuiltin, Name: "icons"}, "builtin:icons"},
		{config.Source{Kind: config.SourceFile, File: "/etc/termdesk.yaml"}, "file:/etc/termdesk.yaml"},
		{config.Source{Kind: config.SourceFile, File: "c.yaml", Line: 3, Column: 5}, "file:c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if rc := runConfig([]string{"validate", "--path", cfgPath}); rc != 1 {
		t.Fatalf("invalid config rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"validate", "--path", filepath.Join(t.TempDir(), "missing.yaml")}); rc != 0 {
		t.Fatalf("missing config should fall back to defaults, rc=%d", rc)
	}
	if rc := runConfig([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}
