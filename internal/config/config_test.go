package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/icons"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.State.Backend != BackendJSON {
		t.Fatalf("expected json backend by default, got %q", cfg.State.Backend)
	}
	if _, ok := cfg.Windows.Apps["explorer"]; !ok {
		t.Fatalf("expected builtin explorer window size")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Icons.GridSize != 20 || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got grid %d files %v", res.Config.Icons.GridSize, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Theme != "light" {
		t.Fatalf("expected theme light, got %q", res.Config.Theme)
	}
}

func TestLoadFromPath_NestedKeys(t *testing.T) {
	data := strings.Join([]string{
		"theme: dark",
		"state:",
		"  backend: SQLite",
		"  path: /tmp/desk.db",
		"icons:",
		"  grid_size: 40",
		"  snap_to_grid: false",
		"  overlap_policy: revert",
		"  note_extensions: [\".txt\", \".md\"]",
		"windows:",
		"  apps:",
		"    notes:",
		"      width: 700",
		"    explorer:",
		"      height: 600",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Theme != "dark" || cfg.State.Backend != BackendSQLite || cfg.StatePath() != "/tmp/desk.db" {
		t.Fatalf("unexpected top-level values: %+v", cfg)
	}
	if cfg.Icons.GridSize != 40 || cfg.Icons.SnapToGrid || cfg.Icons.OverlapPolicy != "revert" {
		t.Fatalf("unexpected icons: %+v", cfg.Icons)
	}
	if got := cfg.Windows.Apps["notes"]; got != (AppWindow{Width: 700, Height: 400}) {
		t.Fatalf("notes should start from the default size, got %+v", got)
	}
	if got := cfg.Windows.Apps["explorer"]; got != (AppWindow{Width: 900, Height: 600}) {
		t.Fatalf("explorer should keep its builtin width, got %+v", got)
	}

	opts := cfg.IconOptions()
	if opts.Policy != icons.PolicyRevert || len(opts.NoteExtensions) != 2 {
		t.Fatalf("IconOptions = %+v", opts)
	}
	wopts := cfg.WindowOptions()
	if wopts.AppSizes["notes"] != (geometry.Size{Width: 700, Height: 400}) {
		t.Fatalf("WindowOptions app sizes = %+v", wopts.AppSizes)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "icons:\n  grid: 10\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "grid") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "icons:\n  grid_size: 10\n  width: 60\n")
	writeConfig(t, configD, "20-override.yaml", "icons:\n  grid_size: 30\n")
	writeConfig(t, configD, "notes.txt", "not yaml: [")

	path := writeConfig(t, dir, "config.yaml", "include:\n  - config.d\nwallpaper: wallpaper-3\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Icons.GridSize != 30 || res.Config.Icons.Width != 60 {
		t.Fatalf("expected merged icons, got %+v", res.Config.Icons)
	}
	if res.Config.Wallpaper != "wallpaper-3" {
		t.Fatalf("expected wallpaper-3, got %q", res.Config.Wallpaper)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "theme: light\nwallpaper_color: purple\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "wallpaper_color" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error location: %+v", verr)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"backend", func(c *Config) { c.State.Backend = "redis" }, "state.backend"},
		{"theme", func(c *Config) { c.Theme = "blue" }, "theme"},
		{"grid", func(c *Config) { c.Icons.GridSize = 0 }, "icons.grid_size"},
		{"policy", func(c *Config) { c.Icons.OverlapPolicy = "stack" }, "icons.overlap_policy"},
		{"extension", func(c *Config) { c.Icons.NoteExtensions = []string{"txt"} }, "icons.note_extensions"},
		{"default below min", func(c *Config) { c.Windows.DefaultWidth = 100 }, "windows.default_width"},
		{"app below min", func(c *Config) { c.Windows.Apps["tiny"] = AppWindow{Width: 10, Height: 10} }, "windows.apps.tiny"},
		{"toast floor", func(c *Config) { c.Overlay.ToastDurationMS = 500 }, "overlay.toast_duration_ms"},
		{"cells", func(c *Config) { c.Display.CellWidth = 0 }, "display"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %s", err, tt.path)
			}
		})
	}
}

func TestExplain_Sources(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "icons:\n  grid_size: 40\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "icons.grid_size")
	if err != nil || val != 40 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("explain icons.grid_size = %v %+v %v", val, src, err)
	}

	val, src, err = Explain(res, "windows.apps.calculator.height")
	if err != nil || val != 560 || src.Kind != SourceBuiltin || src.Name != "calculator" {
		t.Fatalf("explain calculator height = %v %+v %v", val, src, err)
	}

	val, src, err = Explain(res, "overlay.toast_duration_ms")
	if err != nil || val != 3000 || src.Kind != SourceDefault {
		t.Fatalf("explain toast duration = %v %+v %v", val, src, err)
	}

	if _, _, err := Explain(res, "icons.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "windows.apps.paint"); err == nil {
		t.Fatalf("expected unknown app error")
	}
}

func TestSaveTo_OmitsBuiltinAppSizesAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Theme = "dark"
	cfg.Windows.Apps["notes"] = AppWindow{Width: 640, Height: 480}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "explorer") {
		t.Fatalf("builtin app sizes should not be written:\n%s", data)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Theme != "dark" || res.Config.Windows.Apps["notes"].Width != 640 {
		t.Fatalf("reloaded config lost values: %+v", res.Config)
	}
	if res.Config.Windows.Apps["explorer"].Width != 900 {
		t.Fatalf("builtin sizes should come back on load")
	}
}

func TestGetLoggingConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := DefaultConfig().GetLoggingConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 3 || cfg.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.File, filepath.Join("termdesk", "actions.log")) {
		t.Fatalf("unexpected log file %q", cfg.File)
	}
}
