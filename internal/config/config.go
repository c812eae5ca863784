package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/windows"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// StateConfig selects where the desktop layout is persisted.
type StateConfig struct {
	// Backend is "json" (default) or "sqlite".
	Backend string `yaml:"backend"`
	// Path defaults to layout.json or layout.db under the data directory.
	Path string `yaml:"path,omitempty"`
}

// IconsConfig controls desktop icon placement.
type IconsConfig struct {
	GridSize       int      `yaml:"grid_size"`
	SnapToGrid     bool     `yaml:"snap_to_grid"`
	OverlapPolicy  string   `yaml:"overlap_policy"`
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
	DragThreshold  int      `yaml:"drag_threshold"`
	NoteExtensions []string `yaml:"note_extensions"`
}

// AppWindow is the initial size of one application's window.
type AppWindow struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WindowsConfig controls window placement. Sizes are logical pixels.
type WindowsConfig struct {
	MinWidth      int                  `yaml:"min_width"`
	MinHeight     int                  `yaml:"min_height"`
	DefaultWidth  int                  `yaml:"default_width"`
	DefaultHeight int                  `yaml:"default_height"`
	CascadeX      int                  `yaml:"cascade_x"`
	CascadeY      int                  `yaml:"cascade_y"`
	CascadeStep   int                  `yaml:"cascade_step"`
	Apps          map[string]AppWindow `yaml:"apps,omitempty"`
}

type OverlayConfig struct {
	ToastDurationMS     int `yaml:"toast_duration_ms"`
	ToastMinDurationMS  int `yaml:"toast_min_duration_ms"`
	SubmenuCloseDelayMS int `yaml:"submenu_close_delay_ms"`
}

// DisplayConfig maps terminal cells to logical pixels.
type DisplayConfig struct {
	CellWidth     int `yaml:"cell_width"`
	CellHeight    int `yaml:"cell_height"`
	DoubleClickMS int `yaml:"double_click_ms"`
}

// LoggingConfig configures the desktop action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/termdesk/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	SandboxRoot    string        `yaml:"sandbox_root,omitempty"`
	State          StateConfig   `yaml:"state"`
	Theme          string        `yaml:"theme"`
	Wallpaper      string        `yaml:"wallpaper"`
	WallpaperColor string        `yaml:"wallpaper_color"`
	LogLevel       string        `yaml:"log_level"`
	Icons          IconsConfig   `yaml:"icons"`
	Windows        WindowsConfig `yaml:"windows"`
	Overlay        OverlayConfig `yaml:"overlay"`
	Display        DisplayConfig `yaml:"display"`
	Logging        LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		State:          StateConfig{Backend: BackendJSON},
		Theme:          "light",
		Wallpaper:      "wallpaper-1",
		WallpaperColor: "#667eea",
		LogLevel:       "info",
		Icons: IconsConfig{
			GridSize:       20,
			SnapToGrid:     true,
			OverlapPolicy:  string(icons.PolicyAutoArrange),
			Width:          80,
			Height:         90,
			DragThreshold:  5,
			NoteExtensions: []string{".txt"},
		},
		Windows: WindowsConfig{
			MinWidth:      300,
			MinHeight:     200,
			DefaultWidth:  600,
			DefaultHeight: 400,
			CascadeX:      100,
			CascadeY:      50,
			CascadeStep:   30,
			Apps:          BuiltinAppWindows(),
		},
		Overlay: OverlayConfig{
			ToastDurationMS:     3000,
			ToastMinDurationMS:  1000,
			SubmenuCloseDelayMS: 150,
		},
		Display: DisplayConfig{
			CellWidth:     10,
			CellHeight:    20,
			DoubleClickMS: 400,
		},
	}
}

// DataDir is where the sandbox, layout and logs live by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "termdesk")
}

// SandboxPath returns the folder backing the file store.
func (c *Config) SandboxPath() string {
	if c.SandboxRoot != "" {
		return expandHome(c.SandboxRoot)
	}
	return filepath.Join(DataDir(), "files")
}

// StatePath returns the layout store location for the configured backend.
func (c *Config) StatePath() string {
	if c.State.Path != "" {
		return expandHome(c.State.Path)
	}
	if c.State.Backend == BackendSQLite {
		return filepath.Join(DataDir(), "layout.db")
	}
	return filepath.Join(DataDir(), "layout.json")
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		cfg.File = filepath.Join(DataDir(), "actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// IconOptions converts the icons section for the icon layer.
func (c *Config) IconOptions() icons.Options {
	return icons.Options{
		Grid:           c.Icons.GridSize,
		SnapToGrid:     c.Icons.SnapToGrid,
		IconSize:       geometry.Size{Width: c.Icons.Width, Height: c.Icons.Height},
		Policy:         icons.Policy(c.Icons.OverlapPolicy),
		DragThreshold:  c.Icons.DragThreshold,
		NoteExtensions: append([]string(nil), c.Icons.NoteExtensions...),
	}
}

// WindowOptions converts the windows section for the window layer.
func (c *Config) WindowOptions() windows.Options {
	opts := windows.DefaultOptions()
	opts.MinSize = geometry.Size{Width: c.Windows.MinWidth, Height: c.Windows.MinHeight}
	opts.DefaultSize = geometry.Size{Width: c.Windows.DefaultWidth, Height: c.Windows.DefaultHeight}
	opts.CascadeOrigin = geometry.Point{X: c.Windows.CascadeX, Y: c.Windows.CascadeY}
	opts.CascadeStep = c.Windows.CascadeStep
	opts.AppSizes = make(map[string]geometry.Size, len(c.Windows.Apps))
	for name, w := range c.Windows.Apps {
		opts.AppSizes[name] = geometry.Size{Width: w.Width, Height: w.Height}
	}
	return opts
}

func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Overlay.ToastDurationMS) * time.Millisecond
}

func (c *Config) ToastMinDuration() time.Duration {
	return time.Duration(c.Overlay.ToastMinDurationMS) * time.Millisecond
}

func (c *Config) SubmenuCloseDelay() time.Duration {
	return time.Duration(c.Overlay.SubmenuCloseDelayMS) * time.Millisecond
}

func (c *Config) DoubleClick() time.Duration {
	return time.Duration(c.Display.DoubleClickMS) * time.Millisecond
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Windows.Apps = appWindowsForSave(c.Windows.Apps)

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func appWindowsForSave(apps map[string]AppWindow) map[string]AppWindow {
	builtin := BuiltinAppWindows()
	out := make(map[string]AppWindow)
	for name, w := range apps {
		if base, ok := builtin[name]; ok && base == w {
			continue
		}
		out[name] = w
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.State.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return &ValidationError{Path: "state.backend", Err: fmt.Errorf("backend must be one of: json, sqlite")}
	}
	switch c.Theme {
	case "light", "dark":
	default:
		return &ValidationError{Path: "theme", Err: fmt.Errorf("theme must be one of: light, dark")}
	}
	if strings.TrimSpace(c.Wallpaper) == "" {
		return &ValidationError{Path: "wallpaper", Err: fmt.Errorf("wallpaper is required")}
	}
	if !isHexColor(c.WallpaperColor) {
		return &ValidationError{Path: "wallpaper_color", Err: fmt.Errorf("wallpaper_color must look like #rrggbb")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	if c.Icons.GridSize <= 0 {
		return &ValidationError{Path: "icons.grid_size", Err: fmt.Errorf("grid_size must be > 0")}
	}
	switch icons.Policy(c.Icons.OverlapPolicy) {
	case icons.PolicyAutoArrange, icons.PolicyRevert:
	default:
		return &ValidationError{Path: "icons.overlap_policy", Err: fmt.Errorf("overlap_policy must be one of: auto-arrange, revert")}
	}
	if c.Icons.Width <= 0 || c.Icons.Height <= 0 {
		return &ValidationError{Path: "icons", Err: fmt.Errorf("icon width and height must be > 0")}
	}
	if c.Icons.DragThreshold < 0 {
		return &ValidationError{Path: "icons.drag_threshold", Err: fmt.Errorf("drag_threshold must be >= 0")}
	}
	for _, ext := range c.Icons.NoteExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return &ValidationError{Path: "icons.note_extensions", Err: fmt.Errorf("extension %q must start with a dot", ext)}
		}
	}

	if c.Windows.MinWidth <= 0 || c.Windows.MinHeight <= 0 {
		return &ValidationError{Path: "windows.min_width", Err: fmt.Errorf("minimum window size must be > 0")}
	}
	if c.Windows.DefaultWidth < c.Windows.MinWidth || c.Windows.DefaultHeight < c.Windows.MinHeight {
		return &ValidationError{Path: "windows.default_width", Err: fmt.Errorf("default window size must not be below the minimum")}
	}
	if c.Windows.CascadeStep < 0 {
		return &ValidationError{Path: "windows.cascade_step", Err: fmt.Errorf("cascade_step must be >= 0")}
	}
	for name, w := range c.Windows.Apps {
		if w.Width < c.Windows.MinWidth || w.Height < c.Windows.MinHeight {
			return &ValidationError{Path: "windows.apps." + name, Err: fmt.Errorf("window size %dx%d is below the minimum", w.Width, w.Height)}
		}
	}

	if c.Overlay.ToastMinDurationMS <= 0 {
		return &ValidationError{Path: "overlay.toast_min_duration_ms", Err: fmt.Errorf("toast_min_duration_ms must be > 0")}
	}
	if c.Overlay.ToastDurationMS < c.Overlay.ToastMinDurationMS {
		return &ValidationError{Path: "overlay.toast_duration_ms", Err: fmt.Errorf("toast_duration_ms must be >= toast_min_duration_ms")}
	}
	if c.Overlay.SubmenuCloseDelayMS < 0 {
		return &ValidationError{Path: "overlay.submenu_close_delay_ms", Err: fmt.Errorf("submenu_close_delay_ms must be >= 0")}
	}

	if c.Display.CellWidth <= 0 || c.Display.CellHeight <= 0 {
		return &ValidationError{Path: "display", Err: fmt.Errorf("cell_width and cell_height must be > 0")}
	}
	if c.Display.DoubleClickMS <= 0 {
		return &ValidationError{Path: "display.double_click_ms", Err: fmt.Errorf("double_click_ms must be > 0")}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("max_size_mb and max_files must be >= 0")}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
