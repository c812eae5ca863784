package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	sandbox_root
//	state.backend
//	theme
//	wallpaper_color
//	icons.grid_size
//	icons.note_extensions
//	windows.min_width
//	windows.apps.<name>.width
//	overlay.toast_duration_ms
//	display.cell_width
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	if name := appNameFromPath(path); name != "" {
		if base := res.AppBases[name]; base != "" {
			return value, Source{Kind: SourceBuiltin, Name: base}, nil
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func appNameFromPath(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 3 || parts[0] != "windows" || parts[1] != "apps" {
		return ""
	}
	return parts[2]
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	unknown := fmt.Errorf("unknown path: %s", path)

	leaf := func(fields map[string]any) (any, error) {
		if len(parts) != 2 {
			return nil, unknown
		}
		v, ok := fields[parts[1]]
		if !ok {
			return nil, unknown
		}
		return v, nil
	}

	switch parts[0] {
	case "sandbox_root":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.SandboxPath(), nil
	case "theme":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.Theme, nil
	case "wallpaper":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.Wallpaper, nil
	case "wallpaper_color":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.WallpaperColor, nil
	case "log_level":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.LogLevel, nil
	case "state":
		if len(parts) == 1 {
			return cfg.State, nil
		}
		return leaf(map[string]any{
			"backend": cfg.State.Backend,
			"path":    cfg.StatePath(),
		})
	case "icons":
		if len(parts) == 1 {
			return cfg.Icons, nil
		}
		return leaf(map[string]any{
			"grid_size":       cfg.Icons.GridSize,
			"snap_to_grid":    cfg.Icons.SnapToGrid,
			"overlap_policy":  cfg.Icons.OverlapPolicy,
			"width":           cfg.Icons.Width,
			"height":          cfg.Icons.Height,
			"drag_threshold":  cfg.Icons.DragThreshold,
			"note_extensions": cfg.Icons.NoteExtensions,
		})
	case "windows":
		if len(parts) == 1 {
			return cfg.Windows, nil
		}
		if parts[1] == "apps" {
			return lookupAppWindow(cfg, parts, unknown)
		}
		return leaf(map[string]any{
			"min_width":      cfg.Windows.MinWidth,
			"min_height":     cfg.Windows.MinHeight,
			"default_width":  cfg.Windows.DefaultWidth,
			"default_height": cfg.Windows.DefaultHeight,
			"cascade_x":      cfg.Windows.CascadeX,
			"cascade_y":      cfg.Windows.CascadeY,
			"cascade_step":   cfg.Windows.CascadeStep,
		})
	case "overlay":
		if len(parts) == 1 {
			return cfg.Overlay, nil
		}
		return leaf(map[string]any{
			"toast_duration_ms":      cfg.Overlay.ToastDurationMS,
			"toast_min_duration_ms":  cfg.Overlay.ToastMinDurationMS,
			"submenu_close_delay_ms": cfg.Overlay.SubmenuCloseDelayMS,
		})
	case "display":
		if len(parts) == 1 {
			return cfg.Display, nil
		}
		return leaf(map[string]any{
			"cell_width":      cfg.Display.CellWidth,
			"cell_height":     cfg.Display.CellHeight,
			"double_click_ms": cfg.Display.DoubleClickMS,
		})
	case "logging":
		logging := cfg.GetLoggingConfig()
		if len(parts) == 1 {
			return logging, nil
		}
		return leaf(map[string]any{
			"enabled":     logging.Enabled,
			"level":       logging.Level,
			"file":        logging.File,
			"max_size_mb": logging.MaxSizeMB,
			"max_files":   logging.MaxFiles,
		})
	default:
		return nil, unknown
	}
}

func lookupAppWindow(cfg *Config, parts []string, unknown error) (any, error) {
	if len(parts) == 2 {
		return cfg.Windows.Apps, nil
	}
	w, ok := cfg.Windows.Apps[parts[2]]
	if !ok {
		return nil, fmt.Errorf("unknown windows.apps entry %q", parts[2])
	}
	if len(parts) == 3 {
		return w, nil
	}
	if len(parts) != 4 {
		return nil, unknown
	}
	switch parts[3] {
	case "width":
		return w.Width, nil
	case "height":
		return w.Height, nil
	}
	return nil, unknown
}
