package runtimepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	if got, err := Dir(); err != nil || got != td {
		t.Fatalf("Dir() = %q, %v; want %q", got, err, td)
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	uid := strconv.Itoa(os.Getuid())
	run := filepath.Join("/run/user", uid)
	tmp := filepath.Join(os.TempDir(), "termdesk-runtime-"+uid)
	if got != run && got != tmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, run, tmp)
	}
}

func TestSocketPath(t *testing.T) {
	tests := []struct {
		name     string
		override string
		want     func(dir string) string
	}{
		{"runtime dir", "", func(dir string) string { return filepath.Join(dir, SocketName) }},
		{"override", "/tmp/other.sock", func(string) string { return "/tmp/other.sock" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("XDG_RUNTIME_DIR", dir)
			t.Setenv("TERMDESK_SOCKET", tt.override)

			got, err := SocketPath()
			if err != nil {
				t.Fatalf("SocketPath() error: %v", err)
			}
			if got != tt.want(dir) {
				t.Fatalf("SocketPath() = %q, want %q", got, tt.want(dir))
			}
		})
	}
}
