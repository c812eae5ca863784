package actionlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormat_SortsDetails(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	got := Format(ts, ActionRename, map[string]any{
		"to":    "b.txt",
		"from":  "a.txt",
		"count": 2,
		"err":   errors.New("boom"),
	})
	want := `2024-03-01 09:30:00 [RENAME] count=2 err="boom" from="a.txt" to="b.txt"` + "\n"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "actions.log")
	l, err := New(Config{Enabled: true, Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Log(ActionMove, map[string]any{"id": "app_notes"})
	l.Log(ActionOpen, map[string]any{"app": "notes"})
	l.Log(ActionStoreError, map[string]any{"op": "write"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "[MOVE]") {
		t.Fatalf("debug action should be filtered:\n%s", out)
	}
	if !strings.Contains(out, `[OPEN] app="notes"`) || !strings.Contains(out, "[STORE-ERROR]") {
		t.Fatalf("missing entries:\n%s", out)
	}
}

func TestLogger_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	if err := os.WriteFile(path, make([]byte, 1024*1024), 0600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := New(Config{Enabled: true, Level: LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Log(ActionCreate, map[string]any{"path": "x.txt"})

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(path), "actions-*.log"))
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected one rotated file, got %v (%v)", backups, err)
	}
	if info, err := os.Stat(backups[0]); err != nil || info.Size() != 1024*1024 {
		t.Fatalf("rotated file should hold the old contents: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "[CREATE]") || len(data) > 200 {
		t.Fatalf("unexpected fresh log contents %q", data)
	}
}

func TestLogger_NilAndDisabledAreNoops(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Log(ActionOpen, nil)
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Log(ActionOpen, nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled logger should not create a file, stat err = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
