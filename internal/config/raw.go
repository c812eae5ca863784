package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawStateConfig struct {
	Backend *string `yaml:"backend"`
	Path    *string `yaml:"path"`
}

type RawIconsConfig struct {
	GridSize       *int     `yaml:"grid_size"`
	SnapToGrid     *bool    `yaml:"snap_to_grid"`
	OverlapPolicy  *string  `yaml:"overlap_policy"`
	Width          *int     `yaml:"width"`
	Height         *int     `yaml:"height"`
	DragThreshold  *int     `yaml:"drag_threshold"`
	NoteExtensions []string `yaml:"note_extensions"`
}

type RawAppWindow struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawWindowsConfig struct {
	MinWidth      *int                    `yaml:"min_width"`
	MinHeight     *int                    `yaml:"min_height"`
	DefaultWidth  *int                    `yaml:"default_width"`
	DefaultHeight *int                    `yaml:"default_height"`
	CascadeX      *int                    `yaml:"cascade_x"`
	CascadeY      *int                    `yaml:"cascade_y"`
	CascadeStep   *int                    `yaml:"cascade_step"`
	Apps          map[string]RawAppWindow `yaml:"apps"`
}

type RawOverlayConfig struct {
	ToastDurationMS     *int `yaml:"toast_duration_ms"`
	ToastMinDurationMS  *int `yaml:"toast_min_duration_ms"`
	SubmenuCloseDelayMS *int `yaml:"submenu_close_delay_ms"`
}

type RawDisplayConfig struct {
	CellWidth     *int `yaml:"cell_width"`
	CellHeight    *int `yaml:"cell_height"`
	DoubleClickMS *int `yaml:"double_click_ms"`
}

type RawLoggingConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include        IncludeList       `yaml:"include"`
	SandboxRoot    *string           `yaml:"sandbox_root"`
	State          *RawStateConfig   `yaml:"state"`
	Theme          *string           `yaml:"theme"`
	Wallpaper      *string           `yaml:"wallpaper"`
	WallpaperColor *string           `yaml:"wallpaper_color"`
	LogLevel       *string           `yaml:"log_level"`
	Icons          *RawIconsConfig   `yaml:"icons"`
	Windows        *RawWindowsConfig `yaml:"windows"`
	Overlay        *RawOverlayConfig `yaml:"overlay"`
	Display        *RawDisplayConfig `yaml:"display"`
	Logging        *RawLoggingConfig `yaml:"logging"`
}

// setIf replaces *dst with src when src is set.
func setIf[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	setIf(&out.SandboxRoot, overlay.SandboxRoot)
	setIf(&out.Theme, overlay.Theme)
	setIf(&out.Wallpaper, overlay.Wallpaper)
	setIf(&out.WallpaperColor, overlay.WallpaperColor)
	setIf(&out.LogLevel, overlay.LogLevel)

	if overlay.State != nil {
		merged := RawStateConfig{}
		if out.State != nil {
			merged = *out.State
		}
		setIf(&merged.Backend, overlay.State.Backend)
		setIf(&merged.Path, overlay.State.Path)
		out.State = &merged
	}

	if overlay.Icons != nil {
		merged := RawIconsConfig{}
		if out.Icons != nil {
			merged = *out.Icons
		}
		setIf(&merged.GridSize, overlay.Icons.GridSize)
		setIf(&merged.SnapToGrid, overlay.Icons.SnapToGrid)
		setIf(&merged.OverlapPolicy, overlay.Icons.OverlapPolicy)
		setIf(&merged.Width, overlay.Icons.Width)
		setIf(&merged.Height, overlay.Icons.Height)
		setIf(&merged.DragThreshold, overlay.Icons.DragThreshold)
		if overlay.Icons.NoteExtensions != nil {
			merged.NoteExtensions = overlay.Icons.NoteExtensions
		}
		out.Icons = &merged
	}

	if overlay.Windows != nil {
		merged := RawWindowsConfig{}
		if out.Windows != nil {
			merged = *out.Windows
		}
		setIf(&merged.MinWidth, overlay.Windows.MinWidth)
		setIf(&merged.MinHeight, overlay.Windows.MinHeight)
		setIf(&merged.DefaultWidth, overlay.Windows.DefaultWidth)
		setIf(&merged.DefaultHeight, overlay.Windows.DefaultHeight)
		setIf(&merged.CascadeX, overlay.Windows.CascadeX)
		setIf(&merged.CascadeY, overlay.Windows.CascadeY)
		setIf(&merged.CascadeStep, overlay.Windows.CascadeStep)
		if overlay.Windows.Apps != nil {
			apps := make(map[string]RawAppWindow, len(merged.Apps)+len(overlay.Windows.Apps))
			for name, w := range merged.Apps {
				apps[name] = w
			}
			for name, w := range overlay.Windows.Apps {
				apps[name] = mergeRawAppWindow(apps[name], w)
			}
			merged.Apps = apps
		}
		out.Windows = &merged
	}

	if overlay.Overlay != nil {
		merged := RawOverlayConfig{}
		if out.Overlay != nil {
			merged = *out.Overlay
		}
		setIf(&merged.ToastDurationMS, overlay.Overlay.ToastDurationMS)
		setIf(&merged.ToastMinDurationMS, overlay.Overlay.ToastMinDurationMS)
		setIf(&merged.SubmenuCloseDelayMS, overlay.Overlay.SubmenuCloseDelayMS)
		out.Overlay = &merged
	}

	if overlay.Display != nil {
		merged := RawDisplayConfig{}
		if out.Display != nil {
			merged = *out.Display
		}
		setIf(&merged.CellWidth, overlay.Display.CellWidth)
		setIf(&merged.CellHeight, overlay.Display.CellHeight)
		setIf(&merged.DoubleClickMS, overlay.Display.DoubleClickMS)
		out.Display = &merged
	}

	if overlay.Logging != nil {
		merged := RawLoggingConfig{}
		if out.Logging != nil {
			merged = *out.Logging
		}
		setIf(&merged.Enabled, overlay.Logging.Enabled)
		setIf(&merged.Level, overlay.Logging.Level)
		setIf(&merged.File, overlay.Logging.File)
		setIf(&merged.MaxSizeMB, overlay.Logging.MaxSizeMB)
		setIf(&merged.MaxFiles, overlay.Logging.MaxFiles)
		out.Logging = &merged
	}

	return out
}

func mergeRawAppWindow(base RawAppWindow, overlay RawAppWindow) RawAppWindow {
	out := base
	setIf(&out.Width, overlay.Width)
	setIf(&out.Height, overlay.Height)
	return out
}
