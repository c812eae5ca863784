package config

import (
	"fmt"
	"sort"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw values over the defaults. The returned
// map names, for each configured app window, whether its size came from a
// builtin entry.
func BuildEffectiveConfig(raw RawConfig) (*Config, map[string]string, error) {
	cfg := DefaultConfig()

	if raw.SandboxRoot != nil {
		cfg.SandboxRoot = strings.TrimSpace(*raw.SandboxRoot)
	}
	if raw.State != nil {
		if raw.State.Backend != nil {
			cfg.State.Backend = strings.ToLower(strings.TrimSpace(*raw.State.Backend))
		}
		if raw.State.Path != nil {
			cfg.State.Path = strings.TrimSpace(*raw.State.Path)
		}
	}
	if raw.Theme != nil {
		cfg.Theme = *raw.Theme
	}
	if raw.Wallpaper != nil {
		cfg.Wallpaper = *raw.Wallpaper
	}
	if raw.WallpaperColor != nil {
		cfg.WallpaperColor = *raw.WallpaperColor
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if raw.Icons != nil {
		cfg.Icons.GridSize = derefInt(raw.Icons.GridSize, cfg.Icons.GridSize)
		cfg.Icons.Width = derefInt(raw.Icons.Width, cfg.Icons.Width)
		cfg.Icons.Height = derefInt(raw.Icons.Height, cfg.Icons.Height)
		cfg.Icons.DragThreshold = derefInt(raw.Icons.DragThreshold, cfg.Icons.DragThreshold)
		if raw.Icons.SnapToGrid != nil {
			cfg.Icons.SnapToGrid = *raw.Icons.SnapToGrid
		}
		if raw.Icons.OverlapPolicy != nil {
			cfg.Icons.OverlapPolicy = *raw.Icons.OverlapPolicy
		}
		if raw.Icons.NoteExtensions != nil {
			cfg.Icons.NoteExtensions = append([]string(nil), raw.Icons.NoteExtensions...)
		}
	}

	if raw.Windows != nil {
		w := &cfg.Windows
		w.MinWidth = derefInt(raw.Windows.MinWidth, w.MinWidth)
		w.MinHeight = derefInt(raw.Windows.MinHeight, w.MinHeight)
		w.DefaultWidth = derefInt(raw.Windows.DefaultWidth, w.DefaultWidth)
		w.DefaultHeight = derefInt(raw.Windows.DefaultHeight, w.DefaultHeight)
		w.CascadeX = derefInt(raw.Windows.CascadeX, w.CascadeX)
		w.CascadeY = derefInt(raw.Windows.CascadeY, w.CascadeY)
		w.CascadeStep = derefInt(raw.Windows.CascadeStep, w.CascadeStep)
	}
	appBases := applyAppWindows(cfg, raw)

	if raw.Overlay != nil {
		o := &cfg.Overlay
		o.ToastDurationMS = derefInt(raw.Overlay.ToastDurationMS, o.ToastDurationMS)
		o.ToastMinDurationMS = derefInt(raw.Overlay.ToastMinDurationMS, o.ToastMinDurationMS)
		o.SubmenuCloseDelayMS = derefInt(raw.Overlay.SubmenuCloseDelayMS, o.SubmenuCloseDelayMS)
	}

	if raw.Display != nil {
		d := &cfg.Display
		d.CellWidth = derefInt(raw.Display.CellWidth, d.CellWidth)
		d.CellHeight = derefInt(raw.Display.CellHeight, d.CellHeight)
		d.DoubleClickMS = derefInt(raw.Display.DoubleClickMS, d.DoubleClickMS)
	}

	if raw.Logging != nil {
		if raw.Logging.Enabled != nil {
			cfg.Logging.Enabled = *raw.Logging.Enabled
		}
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}

	return cfg, appBases, nil
}

// applyAppWindows starts from the builtin sizes and patches them with the
// user's entries. New apps start from the default window size.
func applyAppWindows(cfg *Config, raw RawConfig) map[string]string {
	builtin := BuiltinAppWindows()
	bases := make(map[string]string, len(builtin))
	for name := range cfg.Windows.Apps {
		bases[name] = name
	}
	if raw.Windows == nil {
		return bases
	}
	for _, name := range sortedKeys(raw.Windows.Apps) {
		patch := raw.Windows.Apps[name]
		base, ok := builtin[name]
		if !ok {
			base = AppWindow{Width: cfg.Windows.DefaultWidth, Height: cfg.Windows.DefaultHeight}
			bases[name] = ""
		}
		cfg.Windows.Apps[name] = AppWindow{
			Width:  derefInt(patch.Width, base.Width),
			Height: derefInt(patch.Height, base.Height),
		}
	}
	return bases
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
