package layout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/windows"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()
	file, err := OpenFile(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	db, err := OpenSQLite(filepath.Join(dir, "layout.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]KV{
		"memory": NewMemory(),
		"json":   file,
		"sqlite": db,
	}
}

func TestKVLastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(ctx, KeyTheme); err != nil || ok {
				t.Fatalf("empty store Get = ok:%v err:%v", ok, err)
			}
			if err := kv.Set(ctx, KeyTheme, "dark"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set(ctx, KeyTheme, "light"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := kv.Get(ctx, KeyTheme)
			if err != nil || !ok || v != "light" {
				t.Fatalf("Get = %q,%v,%v want light", v, ok, err)
			}
		})
	}
}

func TestSnapshotRoundTripThroughBackends(t *testing.T) {
	ctx := context.Background()
	snap := Snapshot{
		Icons: []icons.Record{
			{ID: "app_notes", Kind: icons.KindApp, Label: "Notes", X: 20, Y: 20},
			{ID: "file_todo.txt", Kind: icons.KindFile, Label: "todo", RawName: "todo.txt", X: 1160, Y: 20},
		},
		Windows: []windows.Summary{
			{ID: "notesWindow", IsOpen: true, X: 100, Y: 50, Width: 600, Height: 400},
		},
		Theme:          "dark",
		Wallpaper:      CustomWallpaper,
		WallpaperColor: "#112233",
	}
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := Save(ctx, kv, snap); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(ctx, kv)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Theme != "dark" || got.Wallpaper != CustomWallpaper || got.WallpaperColor != "#112233" {
				t.Fatalf("appearance = %q %q %q", got.Theme, got.Wallpaper, got.WallpaperColor)
			}
			if len(got.Icons) != 2 || got.Icons[1] != snap.Icons[1] {
				t.Fatalf("icons = %+v", got.Icons)
			}
			if len(got.Windows) != 1 || got.Windows[0] != snap.Windows[0] {
				t.Fatalf("windows = %+v", got.Windows)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load(context.Background(), NewMemory())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Theme != DefaultTheme || got.Wallpaper != DefaultWallpaper || got.WallpaperColor != DefaultWallpaperColor {
		t.Fatalf("defaults = %+v", got)
	}
	if got.Icons != nil || got.Windows != nil {
		t.Fatalf("expected no icons or windows, got %+v", got)
	}
}

func TestLoadWithDefaultsOnlyFillsAbsentKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.Set(ctx, KeyTheme, "light")

	got, err := LoadWithDefaults(ctx, kv, Snapshot{Theme: "dark", Wallpaper: CustomWallpaper, WallpaperColor: "#000000"})
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if got.Theme != "light" || got.Wallpaper != CustomWallpaper || got.WallpaperColor != "#000000" {
		t.Fatalf("appearance = %+v", got)
	}
}

func TestLoadDropsMalformedValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.Set(ctx, KeyIconPositions, "{not json")
	kv.Set(ctx, KeyWindowStates, `[{"id":"aboutWindow","isOpen":true}]`)
	kv.Set(ctx, KeyWallpaper, "wallpaper-3")

	got, err := Load(ctx, kv)
	if err == nil {
		t.Fatalf("expected an error describing the malformed value")
	}
	if got.Icons != nil {
		t.Fatalf("malformed icons should be dropped, got %+v", got.Icons)
	}
	if len(got.Windows) != 1 || got.Windows[0].ID != "aboutWindow" {
		t.Fatalf("windows = %+v", got.Windows)
	}
	if got.Wallpaper != "wallpaper-3" {
		t.Fatalf("wallpaper = %q", got.Wallpaper)
	}
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "layout.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := f.Set(ctx, KeyWallpaper, "wallpaper-2"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".layout-*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}

	again, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, _ := again.Get(ctx, KeyWallpaper)
	if !ok || v != "wallpaper-2" {
		t.Fatalf("reopened value = %q,%v", v, ok)
	}
}

func TestFileCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(path, []byte("[[["), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, ok, _ := f.Get(context.Background(), KeyTheme); ok {
		t.Fatalf("corrupt file should load as empty")
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "json", "SQLite", "memory"} {
		kv, err := Open(name, filepath.Join(dir, "state-"+name))
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		kv.Close()
	}
	if _, err := Open("redis", ""); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestRestorable(t *testing.T) {
	s := Snapshot{Windows: []windows.Summary{
		{ID: "notesWindow", IsOpen: true},
		{ID: "calculatorWindow", IsOpen: true, IsMinimized: true},
		{ID: "aboutWindow", IsOpen: false},
		{ID: "explorerWindow", IsOpen: true, IsMaximized: true},
	}}
	got := s.Restorable()
	if len(got) != 2 || got[0].ID != "notesWindow" || got[1].ID != "explorerWindow" {
		t.Fatalf("restorable = %+v", got)
	}
}

func TestNextWallpaper(t *testing.T) {
	tests := map[string]string{
		"wallpaper-1":   "wallpaper-2",
		"wallpaper-4":   "wallpaper-1",
		CustomWallpaper: "wallpaper-1",
		"":              "wallpaper-1",
	}
	for in, want := range tests {
		if got := NextWallpaper(in); got != want {
			t.Fatalf("NextWallpaper(%q) = %q, want %q", in, got, want)
		}
	}
}
